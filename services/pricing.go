package services

import (
	"github.com/shopspring/decimal"
)

// Business constants for the charge pipeline. These are fixed policy, not
// configuration.
var (
	foodGSTRate       = decimal.NewFromFloat(0.05)
	deliveryGSTRate   = decimal.NewFromFloat(0.18)
	deliveryBaseFee   = decimal.NewFromFloat(20.00)
	freeDeliveryLimit = decimal.NewFromFloat(99.00)
	platformFee       = decimal.NewFromFloat(10.00)
)

// Discounter is the one capability consumed from a coupon.
type Discounter interface {
	CalculateDiscount(subtotal decimal.Decimal) decimal.Decimal
}

// PricingBreakdown holds every charge line derived from a food subtotal.
// OriginalDeliveryFee is set only while free delivery is active, so the
// client can show the customer what they saved.
type PricingBreakdown struct {
	FoodSubtotal        decimal.Decimal  `json:"food_subtotal"`
	CouponDiscount      decimal.Decimal  `json:"coupon_discount"`
	DiscountedSubtotal  decimal.Decimal  `json:"discounted_subtotal"`
	FoodGST             decimal.Decimal  `json:"food_gst"`
	DeliveryFeeBase     decimal.Decimal  `json:"delivery_fee_base"`
	DeliveryGST         decimal.Decimal  `json:"delivery_gst"`
	TotalGST            decimal.Decimal  `json:"total_gst"`
	PlatformFee         decimal.Decimal  `json:"platform_fee"`
	GrandTotal          decimal.Decimal  `json:"grand_total"`
	FreeDelivery        bool             `json:"free_delivery"`
	OriginalDeliveryFee *decimal.Decimal `json:"original_delivery_fee,omitempty"`
}

// ComputePricing derives the full charge breakdown from a food subtotal and
// an optional coupon. It is pure: the cart preview and the checkout
// finalisation both call it, so the number the customer saw is the number
// the order is charged.
//
// The free-delivery threshold is checked against the PRE-discount subtotal
// while GST applies to the discounted one. That asymmetry is intentional
// business policy.
func ComputePricing(foodSubtotal decimal.Decimal, coupon Discounter) PricingBreakdown {
	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.CalculateDiscount(foodSubtotal)
		// A misbehaving coupon must never block or inflate a checkout.
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		if discount.GreaterThan(foodSubtotal) {
			discount = foodSubtotal
		}
	}

	discountedSubtotal := foodSubtotal.Sub(discount)
	foodGST := discountedSubtotal.Mul(foodGSTRate).Round(2)

	freeDelivery := foodSubtotal.GreaterThanOrEqual(freeDeliveryLimit)
	deliveryBase := deliveryBaseFee
	if freeDelivery {
		deliveryBase = decimal.Zero
	}
	deliveryGST := deliveryBase.Mul(deliveryGSTRate).Round(2)

	breakdown := PricingBreakdown{
		FoodSubtotal:       foodSubtotal,
		CouponDiscount:     discount,
		DiscountedSubtotal: discountedSubtotal,
		FoodGST:            foodGST,
		DeliveryFeeBase:    deliveryBase,
		DeliveryGST:        deliveryGST,
		TotalGST:           foodGST.Add(deliveryGST),
		PlatformFee:        platformFee,
		GrandTotal: discountedSubtotal.
			Add(foodGST).
			Add(deliveryBase).
			Add(deliveryGST).
			Add(platformFee),
		FreeDelivery: freeDelivery,
	}
	if freeDelivery {
		original := deliveryBaseFee
		breakdown.OriginalDeliveryFee = &original
	}
	return breakdown
}
