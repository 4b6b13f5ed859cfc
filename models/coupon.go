package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CouponTypeFlat    = "flat"
	CouponTypePercent = "percent"
)

type Coupon struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Code         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	DiscountType string          `gorm:"type:varchar(10);not null;default:'flat'" json:"discount_type"`
	Value        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	MinSubtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"min_subtotal"`
	MaxDiscount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"max_discount"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsUsable reports whether the coupon can still be applied at the given time.
func (cp *Coupon) IsUsable(now time.Time) bool {
	if !cp.IsActive {
		return false
	}
	if cp.ExpiresAt != nil && now.After(*cp.ExpiresAt) {
		return false
	}
	return true
}

// CalculateDiscount returns the discount amount for the given food subtotal,
// rounded to 2 decimal places. The result never exceeds the subtotal.
func (cp *Coupon) CalculateDiscount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(cp.MinSubtotal) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch cp.DiscountType {
	case CouponTypePercent:
		discount = subtotal.Mul(cp.Value).Div(decimal.NewFromInt(100)).Round(2)
	default:
		discount = cp.Value
	}

	if cp.MaxDiscount.IsPositive() && discount.GreaterThan(cp.MaxDiscount) {
		discount = cp.MaxDiscount
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount
}
