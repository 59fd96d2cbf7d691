package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/segmentio/kafka-go"
)

type OrderEventType string

const (
	OrderCreatedEvent       OrderEventType = "order_created"
	OrderStatusChangedEvent OrderEventType = "order_status_changed"
	OrderCancelledEvent     OrderEventType = "order_cancelled"
)

// OrderCreatedPayload 訂單建立事件內容
type OrderCreatedPayload struct {
	OrderID      string            `json:"order_id"`
	UserID       *int              `json:"user_id,omitempty"`
	IsGuestOrder bool              `json:"is_guest_order"`
	Items        []model.OrderItem `json:"items"`
	Total        string            `json:"total"`
	OrderDate    time.Time         `json:"order_date"`
}

// OrderStatusChangedPayload 訂單狀態轉移事件內容
type OrderStatusChangedPayload struct {
	OrderID   string            `json:"order_id"`
	From      model.OrderStatus `json:"from"`
	To        model.OrderStatus `json:"to"`
	ChangedAt time.Time         `json:"changed_at"`
}

// OrderEventProducer 發佈訂單領域事件到kafka
// key 用 orderID 保證同一張訂單的事件進同一個partition (有序)
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, order *model.Order) error {
	payload := OrderCreatedPayload{
		OrderID:      order.OrderID,
		UserID:       order.UserID,
		IsGuestOrder: order.IsGuestOrder,
		Items:        order.OrderItems,
		Total:        order.Total.StringFixed(2),
		OrderDate:    order.OrderDate,
	}
	return p.publish(ctx, OrderCreatedEvent, order.OrderID, payload)
}

func (p *OrderEventProducer) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	payload := OrderStatusChangedPayload{
		OrderID:   orderID,
		From:      from,
		To:        to,
		ChangedAt: time.Now().UTC(),
	}
	// 取消有下游補償語意，給獨立的事件類型
	eventType := OrderStatusChangedEvent
	if to == model.OrderStatusCancelled {
		eventType = OrderCancelledEvent
	}
	return p.publish(ctx, eventType, orderID, payload)
}

func (p *OrderEventProducer) publish(ctx context.Context, eventType OrderEventType, orderID string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: value,
		Headers: []kafka.Header{
			{
				Key:   "event_type",
				Value: []byte(eventType),
			},
		},
	})
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
