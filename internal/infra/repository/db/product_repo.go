package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slug %s", ErrProductNotFound, slug)
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Find(&products).Error
	return products, err
}

// Read - 查詢有庫存的上架商品
func (s *ProductRepo) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("stock > 0 AND is_active = true").Find(&products).Error
	return products, err
}

// Update - 更新商品
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// Delete - 硬刪除商品
func (s *ProductRepo) HardDeleteProduct(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, "product_id = ?", id).Error
}

// DeductProductStock 原子性條件扣減庫存
// 單一條件更新: 只有 stock >= quantity 時才扣，沒有讀寫窗口
// 庫存永遠不會被扣成負數
/*
	返回值:
		- 扣減成功: 扣減後的庫存數量
		- ErrProductStockNotEnough: 當下剩餘庫存數量
		- ErrProductNotFound: 商品不存在
*/
func (s *ProductRepo) DeductProductStock(ctx context.Context, productID string, quantity uint) (int, error) {
	// RETURNING 讓剩餘庫存跟著 UPDATE 同一個來回帶回來
	// 扣減生效之後不再有任何查詢，錯誤只會發生在扣減之前
	var product model.Product
	res := s.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("product_id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		// 區分商品不存在與庫存不足
		var current model.Product
		if err := s.db.WithContext(ctx).First(&current, "product_id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
			}
			return 0, err
		}
		return int(current.Stock), fmt.Errorf("%w: product %s requested %d available %d",
			ErrProductStockNotEnough, productID, quantity, current.Stock)
	}

	return int(product.Stock), nil
}

// AddProductStock 原子性增加庫存，取消訂單補回庫存時使用
// 與扣減同樣以 RETURNING 帶回結果，回補生效後不會再報錯
func (s *ProductRepo) AddProductStock(ctx context.Context, productID string, quantity uint) (int, error) {
	var product model.Product
	res := s.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	return int(product.Stock), nil
}

func (s *ProductRepo) GetProductStock(ctx context.Context, productID string) (int, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Select("stock").First(&product, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return 0, err
	}
	return int(product.Stock), nil
}
