package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot of a cart item taken at checkout.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"index;not null" json:"order_id"`
	Order        Order           `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	JuiceID      uint            `gorm:"not null" json:"juice_id"`
	Juice        Juice           `gorm:"foreignKey:JuiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"juice"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PricePerItem decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_per_item"`
	CreatedAt    time.Time       `json:"created_at"`
}
