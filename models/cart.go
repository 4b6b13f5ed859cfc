package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single mutable cart a user owns. It is created lazily on the
// first add-to-cart and cleared (never deleted) after a successful checkout.
type Cart struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
	AppliedCouponID *uint      `gorm:"index" json:"applied_coupon_id,omitempty"`
	AppliedCoupon   *Coupon    `gorm:"foreignKey:AppliedCouponID" json:"applied_coupon,omitempty"`
	Items           []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FoodSubtotal sums price_at_added * quantity over the loaded items.
func (c *Cart) FoodSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Subtotal())
	}
	return subtotal
}

type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CartID       uint            `gorm:"index;not null" json:"cart_id"`
	JuiceID      uint            `gorm:"not null" json:"juice_id"`
	Juice        Juice           `gorm:"foreignKey:JuiceID" json:"juice"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PriceAtAdded decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_added"`
	AddedAt      time.Time       `json:"added_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (ci *CartItem) Subtotal() decimal.Decimal {
	return ci.PriceAtAdded.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
