package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/peelojuice/backend/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func flatCoupon(value string) *models.Coupon {
	return &models.Coupon{
		Code:         "FLAT",
		DiscountType: models.CouponTypeFlat,
		Value:        dec(value),
	}
}

func TestComputePricingNoCoupon(t *testing.T) {
	tests := []struct {
		name        string
		subtotal    string
		foodGST     string
		deliveryFee string
		deliveryGST string
		grandTotal  string
		free        bool
	}{
		{"above free delivery threshold", "150.00", "7.50", "0.00", "0.00", "167.50", true},
		{"below free delivery threshold", "80.00", "4.00", "20.00", "3.60", "117.60", false},
		{"exactly at threshold", "99.00", "4.95", "0.00", "0.00", "113.95", true},
		{"just below threshold", "98.99", "4.95", "20.00", "3.60", "137.54", false},
		{"zero subtotal", "0.00", "0.00", "20.00", "3.60", "33.60", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputePricing(dec(tt.subtotal), nil)

			assert.True(t, b.CouponDiscount.IsZero())
			assert.True(t, b.FoodGST.Equal(dec(tt.foodGST)), "food gst: got %s", b.FoodGST)
			assert.True(t, b.DeliveryFeeBase.Equal(dec(tt.deliveryFee)), "delivery fee: got %s", b.DeliveryFeeBase)
			assert.True(t, b.DeliveryGST.Equal(dec(tt.deliveryGST)), "delivery gst: got %s", b.DeliveryGST)
			assert.True(t, b.PlatformFee.Equal(dec("10.00")))
			assert.True(t, b.GrandTotal.Equal(dec(tt.grandTotal)), "grand total: got %s", b.GrandTotal)
			assert.Equal(t, tt.free, b.FreeDelivery)
			assert.True(t, b.TotalGST.Equal(b.FoodGST.Add(b.DeliveryGST)))

			if tt.free {
				if assert.NotNil(t, b.OriginalDeliveryFee) {
					assert.True(t, b.OriginalDeliveryFee.Equal(dec("20.00")))
				}
			} else {
				assert.Nil(t, b.OriginalDeliveryFee)
			}
		})
	}
}

func TestComputePricingWithCoupon(t *testing.T) {
	// Discount lowers the taxed subtotal, but the free-delivery check stays
	// on the pre-discount value.
	b := ComputePricing(dec("150.00"), flatCoupon("20.00"))

	assert.True(t, b.CouponDiscount.Equal(dec("20.00")))
	assert.True(t, b.DiscountedSubtotal.Equal(dec("130.00")))
	assert.True(t, b.FoodGST.Equal(dec("6.50")))
	assert.True(t, b.DeliveryFeeBase.IsZero())
	assert.True(t, b.GrandTotal.Equal(dec("146.50")))
	assert.True(t, b.FreeDelivery)
}

func TestComputePricingCouponKeepsPreDiscountThreshold(t *testing.T) {
	// 110 - 30 = 80 after discount, but delivery is still free because the
	// pre-discount subtotal clears the threshold.
	b := ComputePricing(dec("110.00"), flatCoupon("30.00"))

	assert.True(t, b.DeliveryFeeBase.IsZero())
	assert.True(t, b.DeliveryGST.IsZero())
	assert.True(t, b.FreeDelivery)
}

func TestComputePricingPercentCouponRounding(t *testing.T) {
	coupon := &models.Coupon{
		Code:         "PCT15",
		DiscountType: models.CouponTypePercent,
		Value:        dec("15.00"),
	}
	// 15% of 33.30 = 4.995 -> 5.00 half-up.
	b := ComputePricing(dec("33.30"), coupon)

	assert.True(t, b.CouponDiscount.Equal(dec("5.00")), "got %s", b.CouponDiscount)
	assert.True(t, b.DiscountedSubtotal.Equal(dec("28.30")))
	// GST on 28.30 = 1.415 -> 1.42 half-up.
	assert.True(t, b.FoodGST.Equal(dec("1.42")), "got %s", b.FoodGST)
}

func TestComputePricingDiscountClampedToSubtotal(t *testing.T) {
	b := ComputePricing(dec("50.00"), flatCoupon("80.00"))

	assert.True(t, b.CouponDiscount.Equal(dec("50.00")))
	assert.True(t, b.DiscountedSubtotal.IsZero())
	// Fees still apply to a fully discounted cart.
	assert.True(t, b.GrandTotal.Equal(dec("33.60")))
}

type negativeDiscounter struct{}

func (negativeDiscounter) CalculateDiscount(decimal.Decimal) decimal.Decimal {
	return dec("-5.00")
}

func TestComputePricingNegativeDiscountTreatedAsZero(t *testing.T) {
	b := ComputePricing(dec("80.00"), negativeDiscounter{})

	assert.True(t, b.CouponDiscount.IsZero())
	assert.True(t, b.GrandTotal.Equal(dec("117.60")))
}

func TestComputePricingIsPure(t *testing.T) {
	first := ComputePricing(dec("123.45"), flatCoupon("10.00"))
	second := ComputePricing(dec("123.45"), flatCoupon("10.00"))

	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.FoodGST.Equal(second.FoodGST))
	assert.True(t, first.TotalGST.Equal(second.TotalGST))
}
