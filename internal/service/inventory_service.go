package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog"
)

// StockDemand 一個商品的庫存需求
type StockDemand struct {
	ProductID string
	Quantity  int
}

// IInventoryService 庫存預留介面
// Reserve 整張訂單 all-or-nothing，Release 為補償性回補
type IInventoryService interface {
	Reserve(ctx context.Context, demands []StockDemand) error
	Release(ctx context.Context, demands []StockDemand) error
}

type InventoryService struct {
	productRepo db.IProductRepository
	logger      zerolog.Logger
}

func NewInventoryService(productRepo db.IProductRepository, logger zerolog.Logger) *InventoryService {
	return &InventoryService{productRepo: productRepo, logger: logger}
}

// Reserve 預留整張訂單的庫存
// 逐一對每個商品做原子性條件扣減，任何一個商品失敗時
// 以 LIFO 順序回補已扣減的商品，調用方永遠不會看到部分預留
/*
	扣減依 productID 排序執行，避免儲存層 row lock 下的跨訂單死鎖
	錯誤:
		- InsufficientStockError: 某商品庫存不足 (帶請求量與剩餘量)
		- ErrProductNotFound: 某商品不存在
*/
func (s *InventoryService) Reserve(ctx context.Context, demands []StockDemand) error {
	sorted := consolidateDemands(demands)

	applied := make([]StockDemand, 0, len(sorted))
	for _, d := range sorted {
		available, err := s.productRepo.DeductProductStock(ctx, d.ProductID, uint(d.Quantity))
		if err != nil {
			s.rollback(ctx, applied)
			switch {
			case errors.Is(err, db.ErrProductStockNotEnough):
				return &InsufficientStockError{
					ProductID: d.ProductID,
					Requested: d.Quantity,
					Available: available,
				}
			case errors.Is(err, db.ErrProductNotFound):
				return fmt.Errorf("%w: %s", ErrProductNotFound, d.ProductID)
			default:
				return fmt.Errorf("deduct stock for product %s: %w", d.ProductID, err)
			}
		}
		applied = append(applied, d)
	}
	return nil
}

// Release 回補庫存，取消訂單與建單失敗補償時使用
// 增量沒有上限限制，不同訂單的併發回補不會互相衝突
func (s *InventoryService) Release(ctx context.Context, demands []StockDemand) error {
	var errs []error
	for _, d := range consolidateDemands(demands) {
		if _, err := s.productRepo.AddProductStock(ctx, d.ProductID, uint(d.Quantity)); err != nil {
			// 補償失敗必須大聲記錄，靜默遺失補償不可接受
			s.logger.Error().Err(err).
				Str("product_id", d.ProductID).
				Int("quantity", d.Quantity).
				Msg("compensating restock failed, manual reconciliation required")
			errs = append(errs, fmt.Errorf("restock product %s: %w", d.ProductID, err))
		}
	}
	return errors.Join(errs...)
}

// rollback 回補本次已成功扣減的商品，LIFO 順序
// 調用方的 context 可能已取消，補償不能跟著被中斷
func (s *InventoryService) rollback(ctx context.Context, applied []StockDemand) {
	ctx = context.WithoutCancel(ctx)
	for i := len(applied) - 1; i >= 0; i-- {
		d := applied[i]
		if _, err := s.productRepo.AddProductStock(ctx, d.ProductID, uint(d.Quantity)); err != nil {
			s.logger.Error().Err(err).
				Str("product_id", d.ProductID).
				Int("quantity", d.Quantity).
				Msg("reservation rollback failed, manual reconciliation required")
		}
	}
}

// consolidateDemands 合併同商品的需求並依 productID 排序 (穩定的鎖順序)
func consolidateDemands(demands []StockDemand) []StockDemand {
	merged := make(map[string]int, len(demands))
	for _, d := range demands {
		merged[d.ProductID] += d.Quantity
	}

	result := make([]StockDemand, 0, len(merged))
	for productID, quantity := range merged {
		result = append(result, StockDemand{ProductID: productID, Quantity: quantity})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})
	return result
}

var _ IInventoryService = (*InventoryService)(nil)
