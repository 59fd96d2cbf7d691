package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog"
)

// ICartService 購物車操作介面
type ICartService interface {
	GetCart(ctx context.Context, userID int) (*model.Cart, error)
	AddItem(ctx context.Context, userID int, productID string, quantity int, size, color string) (*model.Cart, error)
	UpdateItem(ctx context.Context, userID int, lineID string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID int, lineID string) (*model.Cart, error)
	Clear(ctx context.Context, userID int) error
}

type CartService struct {
	cartRepo    redis_repo.ICartRepository
	productRepo db.IProductRepository
	// 購物車金額試算用的預設計價參數
	pricing PricingParams
	logger  zerolog.Logger
}

func NewCartService(cartRepo redis_repo.ICartRepository, productRepo db.IProductRepository, pricing PricingParams, logger zerolog.Logger) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, pricing: pricing, logger: logger}
}

// GetCart 取購物車並做 read-repair
// 商品已被刪除或下架的條目會直接清掉，避免把過期條目曝露給調用方
// 每次讀取都重算四個衍生金額
func (s *CartService) GetCart(ctx context.Context, userID int) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	valid := make([]model.CartItem, 0, len(cart.Items))
	removed := 0
	for _, item := range cart.Items {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, db.ErrProductNotFound) {
				removed++
				if rmErr := s.cartRepo.Remove(ctx, userID, item.LineID()); rmErr != nil {
					return nil, rmErr
				}
				continue
			}
			return nil, err
		}
		if !product.IsActive {
			removed++
			if rmErr := s.cartRepo.Remove(ctx, userID, item.LineID()); rmErr != nil {
				return nil, rmErr
			}
			continue
		}
		valid = append(valid, item)
	}

	if removed > 0 {
		s.logger.Info().Int("user_id", userID).Int("removed", removed).
			Msg("cleaned invalid items from cart")
	}

	cart.Items = valid
	cart.ItemsRemoved = removed
	cart.PricingSnapshot = CalculatePricing(cartPriceLines(cart.Items), s.pricing)
	return cart, nil
}

// AddItem 加入購物車
// 同一 (product,size,color) 已存在時累加數量，否則新增一條
/*
	錯誤:
		- ErrValidation: 數量小於1
		- ErrProductNotFound / ErrProductInactive
		- InsufficientStockError: 請求量超過當下庫存
		- ErrInvalidSize / ErrInvalidColor
*/
func (s *CartService) AddItem(ctx context.Context, userID int, productID string, quantity int, size, color string) (*model.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrProductInactive, productID)
	}
	if int(product.Stock) < quantity {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: int(product.Stock),
		}
	}
	if !product.HasSize(size) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	if !product.HasColor(color) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidColor, color)
	}

	item := model.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
		// 價格快照: 記下加入當下的價格
		Price: product.Price,
	}
	if err := s.cartRepo.AddItem(ctx, userID, item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateItem 修改購物車條目數量
// 數量對著當下的即時庫存重新檢查，不是購物車快照
func (s *CartService) UpdateItem(ctx context.Context, userID int, lineID string, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var target *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].LineID() == lineID {
			target = &cart.Items[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrCartItemNotFound, lineID)
	}

	stock, err := s.productRepo.GetProductStock(ctx, target.ProductID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, target.ProductID)
		}
		return nil, err
	}
	if stock < quantity {
		return nil, &InsufficientStockError{
			ProductID: target.ProductID,
			Requested: quantity,
			Available: stock,
		}
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, lineID, quantity); err != nil {
		if errors.Is(err, redis_repo.ErrCartItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCartItemNotFound, lineID)
		}
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem 刪除購物車條目 (冪等)
func (s *CartService) RemoveItem(ctx context.Context, userID int, lineID string) (*model.Cart, error) {
	if err := s.cartRepo.Remove(ctx, userID, lineID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear 清空購物車 (冪等)
func (s *CartService) Clear(ctx context.Context, userID int) error {
	return s.cartRepo.Clear(ctx, userID)
}

func cartPriceLines(items []model.CartItem) []PriceLine {
	lines := make([]PriceLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, PriceLine{UnitPrice: item.Price, Quantity: item.Quantity})
	}
	return lines
}

var _ ICartService = (*CartService)(nil)
