package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func defaultPricingParams() PricingParams {
	return PricingParams{
		DiscountPercent: decimal.NewFromInt(20),
		DeliveryFee:     decimal.NewFromInt(15),
	}
}

func TestCalculatePricing(t *testing.T) {
	// 12.50 × 2 = 25, 八折折掉 5, 運費 15
	lines := []PriceLine{
		{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
	}

	got := CalculatePricing(lines, defaultPricingParams())

	assert.True(t, decimal.NewFromInt(25).Equal(got.Subtotal), "subtotal = %s", got.Subtotal)
	assert.True(t, decimal.NewFromInt(5).Equal(got.Discount), "discount = %s", got.Discount)
	assert.True(t, decimal.NewFromInt(15).Equal(got.DeliveryFee), "fee = %s", got.DeliveryFee)
	assert.True(t, decimal.NewFromInt(35).Equal(got.Total), "total = %s", got.Total)
}

func TestCalculatePricingMultipleLines(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1},
		{UnitPrice: decimal.RequireFromString("5.00"), Quantity: 3},
	}

	got := CalculatePricing(lines, defaultPricingParams())

	assert.True(t, decimal.NewFromInt(25).Equal(got.Subtotal))
	assert.True(t, decimal.NewFromInt(35).Equal(got.Total))
}

func TestCalculatePricingEmpty(t *testing.T) {
	got := CalculatePricing(nil, defaultPricingParams())

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Discount.IsZero())
	// 空清單只剩運費
	assert.True(t, decimal.NewFromInt(15).Equal(got.Total))
}

func TestCalculatePricingZeroParams(t *testing.T) {
	lines := []PriceLine{
		{UnitPrice: decimal.RequireFromString("9.99"), Quantity: 2},
	}

	got := CalculatePricing(lines, PricingParams{})

	assert.True(t, got.Discount.IsZero())
	assert.True(t, got.Subtotal.Equal(got.Total))
}

func TestCalculatePricingRounding(t *testing.T) {
	// 19.99 × 3 = 59.97, 10% = 5.997 → 6.00, total 58.973 → 58.97
	lines := []PriceLine{
		{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3},
	}
	params := PricingParams{
		DiscountPercent: decimal.NewFromInt(10),
		DeliveryFee:     decimal.NewFromInt(5),
	}

	got := CalculatePricing(lines, params)

	assert.Equal(t, "59.97", got.Subtotal.StringFixed(2))
	assert.Equal(t, "6.00", got.Discount.StringFixed(2))
	assert.Equal(t, "58.97", got.Total.StringFixed(2))
}
