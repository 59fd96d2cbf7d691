package service

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

// PricingParams 折扣百分比與固定運費
type PricingParams struct {
	DiscountPercent decimal.Decimal
	DeliveryFee     decimal.Decimal
}

// PriceLine 單價乘數量的計價輸入
type PriceLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

var oneHundred = decimal.NewFromInt(100)

// CalculatePricing 計算訂單金額，純計算不做任何IO
/*
	subtotal = Σ(unitPrice × quantity)
	discount = subtotal × discountPercent / 100
	total    = subtotal − discount + deliveryFee

	total 於入帳時四捨五入到小數兩位
*/
func CalculatePricing(lines []PriceLine, params PricingParams) model.PricingSnapshot {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discount := subtotal.Mul(params.DiscountPercent).Div(oneHundred)
	total := subtotal.Sub(discount).Add(params.DeliveryFee)

	return model.PricingSnapshot{
		Subtotal:    subtotal.Round(2),
		Discount:    discount.Round(2),
		DeliveryFee: params.DeliveryFee.Round(2),
		Total:       total.Round(2),
	}
}
