package dto

// AddCartItemDTO 加入購物車請求
type AddCartItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// UpdateCartItemDTO 修改購物車條目數量
type UpdateCartItemDTO struct {
	Quantity int `json:"quantity"`
}
