package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultSize = "M"

type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"     json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null"         json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE"  json:"items"`
	CreatedAt time.Time  `                                    json:"created_at"`
	UpdatedAt time.Time  `                                    json:"updated_at"`
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

// CartItem keeps a snapshot of the product at the moment it was added.
// (cart_id, product_id, size) is unique so repeated adds merge into one line.
type CartItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"                        json:"id"`
	CartID       uint            `gorm:"uniqueIndex:idx_cart_product_size;not null"      json:"cart_id"`
	ProductID    uint            `gorm:"uniqueIndex:idx_cart_product_size;not null"      json:"product_id"`
	Size         string          `gorm:"uniqueIndex:idx_cart_product_size;size:10;not null" json:"size"`
	ProductName  string          `gorm:"size:200;not null"                               json:"product_name"`
	ProductImage string          `gorm:"size:300"                                        json:"product_image"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"                     json:"price"`
	Quantity     int             `gorm:"not null;default:1"                              json:"quantity"`
	CreatedAt    time.Time       `                                                       json:"created_at"`
}

func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
