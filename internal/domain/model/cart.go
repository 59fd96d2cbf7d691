package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cart 購物車只存在 redis，不落地 DB
// 衍生的四個金額欄位於每次讀取時重算
type Cart struct {
	UserID          int        `json:"user_id"`
	Items           []CartItem `json:"items"`
	PricingSnapshot `json:"totals"`
	// ItemsRemoved sanitize 時清掉的無效條目數
	ItemsRemoved int `json:"items_removed,omitempty"`
}

// CartItem 購物車內的一條商品需求
// 同一 (product, size, color) 組合在購物車內最多只有一條
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	// Price 加入購物車當下的價格快照
	Price decimal.Decimal `json:"price"`
}

// LineID 購物車條目的識別鍵，由變體組合決定
func (i CartItem) LineID() string {
	return CartLineID(i.ProductID, i.Size, i.Color)
}

func CartLineID(productID, size, color string) string {
	return fmt.Sprintf("%s|%s|%s", productID, size, color)
}
