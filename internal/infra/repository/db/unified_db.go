package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	InitMigrate() error

	// Product 相關操作
	IProductRepository

	// Order 相關操作
	IOrderRepository
}

// IProductRepository Product 相關操作介面
// 庫存只透過 DeductProductStock / AddProductStock 兩個原子操作異動
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsInStock(ctx context.Context) ([]model.Product, error)
	GetProductStock(ctx context.Context, productID string) (int, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	HardDeleteProduct(ctx context.Context, id string) error
	DeductProductStock(ctx context.Context, productID string, quantity uint) (int, error)
	AddProductStock(ctx context.Context, productID string, quantity uint) (int, error)
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatusIf(ctx context.Context, id string, from, to model.OrderStatus, now time.Time) (bool, error)
	UpdateOrderNotes(ctx context.Context, id string, notes string) error
	MarkSyncedToSheet(ctx context.Context, id string, syncedAt time.Time) (bool, error)
	ListUnsyncedOrders(ctx context.Context, limit int) ([]model.Order, error)
	CountUnsyncedOrders(ctx context.Context) (int64, error)
	HardDeleteOrder(ctx context.Context, id string) error
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*OrderRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:          db,
		dbDao:       dbDao,
		ProductRepo: NewProductRepo(dbDao),
		OrderRepo:   NewOrderRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

var (
	_ IProductRepository = (*ProductRepo)(nil)
	_ IOrderRepository   = (*OrderRepo)(nil)
	_ UnifiedDB          = (*UnifiedDBImpl)(nil)
)
