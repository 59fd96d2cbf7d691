package service

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	// ErrValidation 請求格式錯誤，在任何副作用發生前拒絕
	ErrValidation = errors.New("validation error")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive 商品已下架
	ErrProductInactive = errors.New("product is not active")
	// ErrInvalidSize 尺寸不在商品允許範圍
	ErrInvalidSize = errors.New("invalid size")
	// ErrInvalidColor 顏色不在商品允許範圍
	ErrInvalidColor = errors.New("invalid color")
	// ErrCartEmpty 購物車是空的
	ErrCartEmpty = errors.New("cart is empty")
	// ErrCartItemNotFound 購物車內沒有這個條目
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
)

// InsufficientStockError 庫存不足
// 帶上請求量與當下剩餘量，讓調用方可以調整請求而不是盲目重試
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError 訂單狀態轉移不合法
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}
