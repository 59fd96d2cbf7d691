package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // 待處理
	OrderStatusProcessing OrderStatus = "processing" // 處理中
	OrderStatusShipped    OrderStatus = "shipped"    // 已出貨
	OrderStatusDelivered  OrderStatus = "delivered"  // 已送達 (終態)
	OrderStatusCancelled  OrderStatus = "cancelled"  // 已取消 (終態)
)

// 狀態只能往前推進，不能回退
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal delivered 與 cancelled 之後不再有任何轉移
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition 檢查訂單狀態轉移是否合法
// pending → processing → shipped → delivered，終態前皆可取消
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return orderStatusRank[to] > orderStatusRank[from]
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPaypal:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type ShippingAddress struct {
	FirstName     string `gorm:"type:varchar(50)" json:"first_name"`
	LastName      string `gorm:"type:varchar(50)" json:"last_name"`
	Email         string `gorm:"type:varchar(100)" json:"email"`
	Phone         string `gorm:"type:varchar(50)" json:"phone"`
	StreetAddress string `gorm:"type:varchar(255)" json:"street_address"`
	TownCity      string `gorm:"type:varchar(100)" json:"town_city"`
	State         string `gorm:"type:varchar(100)" json:"state"`
	ZipCode       string `gorm:"type:varchar(20)" json:"zip_code"`
	Country       string `gorm:"type:varchar(100)" json:"country"`
}

// GuestInfo 訪客訂單的聯絡資訊，email 與 phone 皆為必填
type GuestInfo struct {
	Email string `gorm:"type:varchar(100)" json:"email"`
	Phone string `gorm:"type:varchar(50)" json:"phone"`
}

// PricingSnapshot 下單當下的計價快照，建單後不可變
type PricingSnapshot struct {
	Subtotal    decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"discount"`
	DeliveryFee decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"delivery_fee"`
	Total       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total"`
}

type Order struct {
	OrderID string `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	// UserID 為 nil 表示訪客訂單，與 GuestInfo 互斥
	UserID          *int            `gorm:"index" json:"user_id,omitempty"`
	IsGuestOrder    bool            `gorm:"not null;default:false" json:"is_guest_order"`
	GuestInfo       GuestInfo       `gorm:"embedded;embeddedPrefix:guest_" json:"guest_info,omitempty"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"not null;type:varchar(20);default:cash" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"not null;type:varchar(20);default:pending" json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"not null;type:varchar(20);default:pending" json:"order_status"`
	PricingSnapshot `gorm:"embedded"`
	Notes           string     `gorm:"type:text" json:"notes"`
	SyncedToSheet   bool       `gorm:"not null;default:false" json:"synced_to_sheet"`
	SyncedAt        *time.Time `json:"synced_at,omitempty"`
	OrderDate       time.Time  `gorm:"not null" json:"order_date"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	BaseModel
}

// OrderItem 下單當下的商品快照
// 保留名稱/圖片/價格，商品之後被修改或刪除也不影響歷史訂單
type OrderItem struct {
	OrderID   string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	LineNo    int             `gorm:"primaryKey" json:"line_no"`
	ProductID string          `gorm:"not null;type:varchar(255);index" json:"product_id"`
	Name      string          `gorm:"not null;type:varchar(100)" json:"name"`
	Image     string          `gorm:"type:varchar(255)" json:"image"`
	Size      string          `gorm:"not null;type:varchar(10)" json:"size"`
	Color     string          `gorm:"not null;type:varchar(50)" json:"color"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	BaseModel
}
