package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"size:200;not null"           json:"name"`
	Category    string          `gorm:"size:50;not null;index"      json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image       string          `gorm:"size:300"                    json:"image"`
	Description string          `gorm:"type:text"                   json:"description"`
	Culture     string          `gorm:"size:50"                     json:"culture"`
	Story       string          `gorm:"type:text"                   json:"story"`
	IsActive    bool            `gorm:"not null;default:true"       json:"is_active"`
	CreatedAt   time.Time       `                                   json:"created_at"`
}

// All returns every model that must exist in the schema, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Admin{},
		&AdminInvitation{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Product{},
		&Subscriber{},
	}
}
