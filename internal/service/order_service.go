package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// IOrderNotifier 外部報表同步介面
// 完全 best-effort，失敗不可以影響下單結果
type IOrderNotifier interface {
	NotifyAsync(order *model.Order)
}

// IOrderEventPublisher 訂單領域事件發佈介面，同樣 best-effort
type IOrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *model.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) error
}

// OrderLineRequest 一條下單需求，訪客直接下單時使用
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// PlaceOrderRequest 下單請求
// UserID 與 GuestInfo 互斥: 登入用戶的商品一律取自購物車，訪客直接帶 Items
type PlaceOrderRequest struct {
	UserID          *int
	GuestInfo       *model.GuestInfo
	Items           []OrderLineRequest
	ShippingAddress model.ShippingAddress
	PaymentMethod   model.PaymentMethod
	Pricing         PricingParams
	Notes           string
}

type IOrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*model.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	UpdateOrderNotes(ctx context.Context, orderID string, notes string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
}

type OrderService struct {
	orderRepo   db.IOrderRepository
	productRepo db.IProductRepository
	inventory   IInventoryService
	cartService ICartService
	notifier    IOrderNotifier
	events      IOrderEventPublisher
	logger      zerolog.Logger
}

func NewOrderService(
	orderRepo db.IOrderRepository,
	productRepo db.IProductRepository,
	inventory IInventoryService,
	cartService ICartService,
	notifier IOrderNotifier,
	events IOrderEventPublisher,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		inventory:   inventory,
		cartService: cartService,
		notifier:    notifier,
		events:      events,
		logger:      logger,
	}
}

// PlaceOrder 下單
/*
	流程:
	1. 驗證請求與每條商品 (存在/上架/尺寸/顏色)
	2. 對即時庫存做樂觀預檢 (權威檢查仍是第3步的原子扣減)
	3. 原子性預留整張訂單的庫存，失敗整單回絕
	4. 計算計價快照
	5. 以快照寫入訂單 (status=pending)，寫入失敗立刻回補已扣庫存
	6. 登入用戶清空購物車，失敗只記log不影響訂單
	7. 異步觸發外部報表同步與領域事件，失敗一律吞掉
*/
func (o *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*model.Order, error) {
	if err := validatePlaceOrder(&req); err != nil {
		return nil, err
	}

	lines, err := o.resolveLines(ctx, req)
	if err != nil {
		return nil, err
	}

	items, demands, err := o.buildSnapshots(ctx, lines)
	if err != nil {
		return nil, err
	}

	// 原子性庫存預留 all-or-nothing
	if err := o.inventory.Reserve(ctx, demands); err != nil {
		return nil, err
	}

	pricing := CalculatePricing(orderPriceLines(items), req.Pricing)

	order := &model.Order{
		OrderID:         uuid.New().String(),
		UserID:          req.UserID,
		IsGuestOrder:    req.UserID == nil,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		OrderStatus:     model.OrderStatusPending,
		PricingSnapshot: pricing,
		Notes:           req.Notes,
		OrderDate:       time.Now().UTC(),
	}
	if req.GuestInfo != nil {
		order.GuestInfo = *req.GuestInfo
	}

	if err := o.orderRepo.CreateOrder(ctx, order); err != nil {
		// 庫存已扣但訂單沒寫成 必須補回，否則庫存憑空消失
		if releaseErr := o.inventory.Release(context.WithoutCancel(ctx), demands); releaseErr != nil {
			o.logger.Error().Err(releaseErr).Str("order_id", order.OrderID).
				Msg("failed to release reserved stock after order persist failure")
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	// 購物車清空是 best-effort，失敗不回滾訂單
	if req.UserID != nil {
		if err := o.cartService.Clear(ctx, *req.UserID); err != nil {
			o.logger.Warn().Err(err).Int("user_id", *req.UserID).
				Str("order_id", order.OrderID).
				Msg("failed to clear cart after order creation")
		}
	}

	if o.notifier != nil {
		o.notifier.NotifyAsync(order)
	}
	o.publishCreated(ctx, order)

	return order, nil
}

// SetOrderStatus 轉移訂單狀態
/*
	pending → processing → shipped → delivered，終態前皆可取消
	轉移使用 compare-and-set，併發下同一筆轉移只會成功一次
	取消成功的那一次負責補回每條商品快照的庫存 (恰好一次)
*/
func (o *OrderService) SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}

	order, err := o.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(order.OrderStatus, status) {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: status}
	}

	updated, err := o.orderRepo.UpdateOrderStatusIf(ctx, orderID, order.OrderStatus, status, time.Now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	if !updated {
		// 併發下被別人先轉走了，重新讀一次回報實際狀態
		current, readErr := o.GetOrder(ctx, orderID)
		if readErr != nil {
			return nil, readErr
		}
		return nil, &InvalidTransitionError{From: current.OrderStatus, To: status}
	}

	// CAS 成功的那一次才會走到這裡，補償性回補不會執行第二次
	if status == model.OrderStatusCancelled {
		if err := o.inventory.Release(context.WithoutCancel(ctx), demandsFromItems(order.OrderItems)); err != nil {
			return nil, fmt.Errorf("order %s cancelled but restock failed: %w", orderID, err)
		}
	}

	o.publishStatusChanged(ctx, orderID, order.OrderStatus, status)

	return o.GetOrder(ctx, orderID)
}

// UpdateOrderNotes 更新訂單備註，快照與狀態欄位不受影響
func (o *OrderService) UpdateOrderNotes(ctx context.Context, orderID string, notes string) (*model.Order, error) {
	if err := o.orderRepo.UpdateOrderNotes(ctx, orderID, notes); err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	return o.GetOrder(ctx, orderID)
}

func (o *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := o.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}

func (o *OrderService) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	return o.orderRepo.GetOrdersByUserID(ctx, userID)
}

func (o *OrderService) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return o.orderRepo.GetAllOrders(ctx)
}

// orderLine 內部用的下單需求，購物車來源會帶加入當下的價格快照
type orderLine struct {
	OrderLineRequest
	// priceAtAdd 非 nil 時優先於商品即時價格
	priceAtAdd *decimal.Decimal
}

// resolveLines 取得這張訂單的商品需求
// 登入用戶一律取自購物車 (sanitize 過的)，訪客直接用請求內容
func (o *OrderService) resolveLines(ctx context.Context, req PlaceOrderRequest) ([]orderLine, error) {
	if req.UserID == nil {
		lines := make([]orderLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, orderLine{OrderLineRequest: item})
		}
		return lines, nil
	}

	cart, err := o.cartService.GetCart(ctx, *req.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]orderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		price := item.Price
		lines = append(lines, orderLine{
			OrderLineRequest: OrderLineRequest{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Size:      item.Size,
				Color:     item.Color,
			},
			priceAtAdd: &price,
		})
	}
	return lines, nil
}

// buildSnapshots 驗證每條商品並產生訂單快照與庫存需求
// 任何一條不合法就整張回絕，錯誤指明是哪個商品、為什麼
// 這裡的庫存檢查是樂觀預檢，權威檢查在原子扣減
func (o *OrderService) buildSnapshots(ctx context.Context, lines []orderLine) ([]model.OrderItem, []StockDemand, error) {
	items := make([]model.OrderItem, 0, len(lines))
	demands := make([]StockDemand, 0, len(lines))

	for i, line := range lines {
		product, err := o.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, db.ErrProductNotFound) {
				return nil, nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
			}
			return nil, nil, err
		}
		if !product.IsActive {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductInactive, line.ProductID)
		}
		if !product.HasSize(line.Size) {
			return nil, nil, fmt.Errorf("%w: product %s size %s", ErrInvalidSize, line.ProductID, line.Size)
		}
		if !product.HasColor(line.Color) {
			return nil, nil, fmt.Errorf("%w: product %s color %s", ErrInvalidColor, line.ProductID, line.Color)
		}
		if int(product.Stock) < line.Quantity {
			return nil, nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: int(product.Stock),
			}
		}

		price := product.Price
		if line.priceAtAdd != nil {
			price = *line.priceAtAdd
		}
		items = append(items, model.OrderItem{
			LineNo:    i + 1,
			ProductID: product.ProductID,
			Name:      product.Name,
			Image:     product.MainImage(),
			Size:      line.Size,
			Color:     line.Color,
			Price:     price,
			Quantity:  line.Quantity,
		})
		demands = append(demands, StockDemand{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	return items, demands, nil
}

func (o *OrderService) publishCreated(ctx context.Context, order *model.Order) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishOrderCreated(ctx, order); err != nil {
		o.logger.Warn().Err(err).Str("order_id", order.OrderID).
			Msg("failed to publish order created event")
	}
}

func (o *OrderService) publishStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishOrderStatusChanged(ctx, orderID, from, to); err != nil {
		o.logger.Warn().Err(err).Str("order_id", orderID).
			Msg("failed to publish order status event")
	}
}

func validatePlaceOrder(req *PlaceOrderRequest) error {
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentMethodCash
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: invalid payment method %q", ErrValidation, req.PaymentMethod)
	}
	if req.Pricing.DiscountPercent.IsNegative() {
		return fmt.Errorf("%w: discount percent cannot be negative", ErrValidation)
	}
	if req.Pricing.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: delivery fee cannot be negative", ErrValidation)
	}

	if req.UserID == nil {
		// 訪客訂單必須帶最低限度的聯絡資訊
		if req.GuestInfo == nil || req.GuestInfo.Email == "" {
			return fmt.Errorf("%w: guest order requires email", ErrValidation)
		}
		if req.GuestInfo.Phone == "" {
			return fmt.Errorf("%w: guest order requires phone", ErrValidation)
		}
		if len(req.Items) == 0 {
			return fmt.Errorf("%w: guest order requires at least one item", ErrValidation)
		}
	} else if req.GuestInfo != nil {
		return fmt.Errorf("%w: authenticated order cannot carry guest info", ErrValidation)
	}

	for _, item := range req.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity for product %s must be at least 1", ErrValidation, item.ProductID)
		}
	}
	return nil
}

func orderPriceLines(items []model.OrderItem) []PriceLine {
	lines := make([]PriceLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, PriceLine{UnitPrice: item.Price, Quantity: item.Quantity})
	}
	return lines
}

func demandsFromItems(items []model.OrderItem) []StockDemand {
	demands := make([]StockDemand, 0, len(items))
	for _, item := range items {
		demands = append(demands, StockDemand{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return demands
}

var _ IOrderService = (*OrderService)(nil)
