package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
)

// fakeProductRepo 記憶體版商品庫，扣減/回補與正式實作同樣是原子操作
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[string]*model.Product)}
	for _, p := range products {
		repo.products[p.ProductID] = p
	}
	return repo
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ProductID] = product
	return nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrProductNotFound, productID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: slug %s", db.ErrProductNotFound, slug)
}

func (f *fakeProductRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	products := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, *p)
	}
	return products, nil
}

func (f *fakeProductRepo) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var products []model.Product
	for _, p := range f.products {
		if p.Stock > 0 && p.IsActive {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (f *fakeProductRepo) GetProductStock(ctx context.Context, productID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", db.ErrProductNotFound, productID)
	}
	return int(p.Stock), nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ProductID] = product
	return nil
}

func (f *fakeProductRepo) HardDeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) DeductProductStock(ctx context.Context, productID string, quantity uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", db.ErrProductNotFound, productID)
	}
	if p.Stock < quantity {
		return int(p.Stock), fmt.Errorf("%w: product %s requested %d available %d",
			db.ErrProductStockNotEnough, productID, quantity, p.Stock)
	}
	p.Stock -= quantity
	return int(p.Stock), nil
}

func (f *fakeProductRepo) AddProductStock(ctx context.Context, productID string, quantity uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", db.ErrProductNotFound, productID)
	}
	p.Stock += quantity
	return int(p.Stock), nil
}

func (f *fakeProductRepo) stock(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.products[productID].Stock)
}

// fakeOrderRepo 記憶體版訂單庫，CAS 與 set-once 語意與正式實作一致
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order
	// createErr 設定後 CreateOrder 直接失敗，測試建單失敗補償用
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.Order)}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *order
	f.orders[order.OrderID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrOrderNotFound, id)
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []model.Order
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orders := make([]model.Order, 0, len(f.orders))
	for _, o := range f.orders {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (f *fakeOrderRepo) UpdateOrderStatusIf(ctx context.Context, id string, from, to model.OrderStatus, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", db.ErrOrderNotFound, id)
	}
	if order.OrderStatus != from {
		return false, nil
	}
	order.OrderStatus = to
	switch to {
	case model.OrderStatusDelivered:
		order.DeliveredAt = &now
	case model.OrderStatusCancelled:
		order.CancelledAt = &now
	}
	return true, nil
}

func (f *fakeOrderRepo) UpdateOrderNotes(ctx context.Context, id string, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return fmt.Errorf("%w: %s", db.ErrOrderNotFound, id)
	}
	order.Notes = notes
	return nil
}

func (f *fakeOrderRepo) MarkSyncedToSheet(ctx context.Context, id string, syncedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", db.ErrOrderNotFound, id)
	}
	if order.SyncedToSheet {
		return false, nil
	}
	order.SyncedToSheet = true
	order.SyncedAt = &syncedAt
	return true, nil
}

func (f *fakeOrderRepo) ListUnsyncedOrders(ctx context.Context, limit int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []model.Order
	for _, o := range f.orders {
		if !o.SyncedToSheet {
			orders = append(orders, *o)
		}
		if len(orders) == limit {
			break
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) CountUnsyncedOrders(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, o := range f.orders {
		if !o.SyncedToSheet {
			count++
		}
	}
	return count, nil
}

func (f *fakeOrderRepo) HardDeleteOrder(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	return nil
}

// fakeCartRepo 記憶體版購物車，merge-add 語意與 redis lua 腳本一致
type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[int]map[string]model.CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[int]map[string]model.CartItem)}
}

func (f *fakeCartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := &model.Cart{UserID: userID, Items: []model.CartItem{}}
	for _, item := range f.carts[userID] {
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

func (f *fakeCartRepo) AddItem(ctx context.Context, userID int, item model.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.carts[userID] == nil {
		f.carts[userID] = make(map[string]model.CartItem)
	}
	if existing, ok := f.carts[userID][item.LineID()]; ok {
		existing.Quantity += item.Quantity
		f.carts[userID][item.LineID()] = existing
		return nil
	}
	f.carts[userID][item.LineID()] = item
	return nil
}

func (f *fakeCartRepo) SetQuantity(ctx context.Context, userID int, lineID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.carts[userID][lineID]
	if !ok {
		return fmt.Errorf("%w: %s", redis_repo.ErrCartItemNotFound, lineID)
	}
	item.Quantity = quantity
	f.carts[userID][lineID] = item
	return nil
}

func (f *fakeCartRepo) Remove(ctx context.Context, userID int, lineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts[userID], lineID)
	return nil
}

func (f *fakeCartRepo) Clear(ctx context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	return nil
}

// fakeNotifier 記錄被通知的訂單
type fakeNotifier struct {
	mu     sync.Mutex
	orders []string
}

func (f *fakeNotifier) NotifyAsync(order *model.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order.OrderID)
}

func (f *fakeNotifier) notified() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.orders...)
}

// fakePublisher 記錄發佈的事件，可設定強制失敗
type fakePublisher struct {
	mu         sync.Mutex
	created    []string
	changed    []string
	publishErr error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.created = append(f.created, order.OrderID)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.changed = append(f.changed, fmt.Sprintf("%s:%s->%s", orderID, from, to))
	return nil
}

var (
	_ db.IProductRepository      = (*fakeProductRepo)(nil)
	_ db.IOrderRepository        = (*fakeOrderRepo)(nil)
	_ redis_repo.ICartRepository = (*fakeCartRepo)(nil)
	_ IOrderNotifier             = (*fakeNotifier)(nil)
	_ IOrderEventPublisher       = (*fakePublisher)(nil)
)
