package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, true},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"pending skips to shipped", OrderStatusPending, OrderStatusShipped, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, true},
		// 不能回退
		{"shipped back to processing", OrderStatusShipped, OrderStatusProcessing, false},
		{"delivered back to pending", OrderStatusDelivered, OrderStatusPending, false},
		// 終態後不再轉移
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, false},
		{"cancelled to processing", OrderStatusCancelled, OrderStatusProcessing, false},
		{"cancelled to cancelled", OrderStatusCancelled, OrderStatusCancelled, false},
		// 同狀態不是轉移
		{"pending to pending", OrderStatusPending, OrderStatusPending, false},
		// 未知狀態
		{"unknown from", OrderStatus("unknown"), OrderStatusProcessing, false},
		{"unknown to", OrderStatusPending, OrderStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusProcessing.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}
