package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

// PlaceOrderDTO 登入用戶下單請求，商品一律取自購物車
type PlaceOrderDTO struct {
	ShippingAddress model.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	Notes           string                `json:"notes"`
}

// PlaceGuestOrderDTO 訪客下單請求，商品直接帶在請求內
type PlaceGuestOrderDTO struct {
	Email           string                     `json:"email"`
	Phone           string                     `json:"phone"`
	Items           []service.OrderLineRequest `json:"items"`
	ShippingAddress model.ShippingAddress      `json:"shipping_address"`
	PaymentMethod   string                     `json:"payment_method"`
	Notes           string                     `json:"notes"`
}

// UpdateOrderStatusDTO 訂單狀態轉移請求
type UpdateOrderStatusDTO struct {
	Status string `json:"status"`
}

// UpdateOrderNotesDTO 訂單備註更新請求
type UpdateOrderNotesDTO struct {
	Notes string `json:"notes"`
}
