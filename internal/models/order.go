package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: nil,
	OrderCancelled: nil,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether an order in status s may move to next.
// Re-applying the current status is allowed and is a no-op for callers.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// Order.ShippingAddressID is stored as given; it is not a foreign key.
type Order struct {
	ID                uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	OrderNumber       string          `gorm:"uniqueIndex;size:50;not null"      json:"order_number"`
	UserID            uint            `gorm:"index;not null"                    json:"user_id"`
	Status            OrderStatus     `gorm:"size:20;not null;index"            json:"status"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null"       json:"total_amount"`
	ShippingAddressID *uint           `gorm:"index"                             json:"shipping_address_id"`
	Items             []OrderItem     `gorm:"constraint:OnDelete:CASCADE"       json:"items"`
	Payments          []Payment       `gorm:"constraint:OnDelete:CASCADE"       json:"payments"`
	CreatedAt         time.Time       `gorm:"index"                             json:"created_at"`
	UpdatedAt         time.Time       `                                         json:"updated_at"`
}

// Payment returns the order's payment record, or nil when it was not loaded.
func (o *Order) Payment() *Payment {
	if len(o.Payments) == 0 {
		return nil
	}
	return &o.Payments[0]
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID     uint            `gorm:"index;not null"              json:"order_id"`
	ProductID   uint            `gorm:"not null"                    json:"product_id"`
	ProductName string          `gorm:"size:200;not null"           json:"product_name"`
	Quantity    int             `gorm:"not null"                    json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Size        string          `gorm:"size:10"                     json:"size"`
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

// Supported reports whether checkout can settle this method. UPI is a known
// method but has no settlement path.
func (m PaymentMethod) Supported() bool {
	return m == PaymentCOD || m == PaymentCard
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID       uint            `gorm:"index;not null"              json:"order_id"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null"            json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null"            json:"payment_status"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CardLast4     string          `gorm:"size:4"                      json:"card_last4,omitempty"`
	TransactionID string          `gorm:"size:100"                    json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `                                   json:"created_at"`
	UpdatedAt     time.Time       `                                   json:"updated_at"`
}
