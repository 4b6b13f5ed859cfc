package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/models"
	"github.com/peelojuice/backend/utils"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method, choose 'cod' or 'online'")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrNoActiveBranch       = errors.New("no active branch available")
)

// CheckoutService converts a user's cart into an order exactly once, inside
// a single database transaction.
type CheckoutService struct {
	db     *gorm.DB
	mailer *MailerService
}

func NewCheckoutService(db *gorm.DB, mailer *MailerService) *CheckoutService {
	return &CheckoutService{db: db, mailer: mailer}
}

// Checkout validates the cart, snapshots its items into an immutable order,
// fixes the totals with the same pricing pass the cart preview uses, and
// creates the pending payment. For COD the cart is cleared immediately; for
// online it stays untouched until payment verification succeeds, so an
// abandoned payment never loses the cart.
func (s *CheckoutService) Checkout(userID uint, paymentMethod string) (*models.Order, error) {
	if paymentMethod != models.PaymentMethodCOD && paymentMethod != models.PaymentMethodOnline {
		return nil, ErrInvalidPaymentMethod
	}

	var (
		order models.Order
		user  models.User
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Preload("Items").Preload("AppliedCoupon").
			Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartNotFound
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		foodSubtotal := cart.FoodSubtotal()

		// An unusable coupon means zero discount, never a blocked checkout.
		var coupon Discounter
		if cart.AppliedCoupon != nil && cart.AppliedCoupon.IsUsable(time.Now()) {
			coupon = cart.AppliedCoupon
		}
		breakdown := ComputePricing(foodSubtotal, coupon)

		var branch models.Branch
		if err := tx.Where("is_active = ?", true).Order("id").First(&branch).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveBranch
			}
			return err
		}

		order = models.Order{
			OrderNumber:     newOrderNumber(),
			UserID:          userID,
			BranchID:        branch.ID,
			Status:          models.OrderStatusPending,
			FoodSubtotal:    foodSubtotal,
			DeliveryFeeBase: breakdown.DeliveryFeeBase,
			PlatformFee:     breakdown.PlatformFee,
			Discount:        breakdown.CouponDiscount,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range cart.Items {
			orderItem := models.OrderItem{
				OrderID:      order.ID,
				JuiceID:      item.JuiceID,
				Quantity:     item.Quantity,
				PricePerItem: item.PriceAtAdded,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}

		// Finalise the grand total from the same breakdown the preview
		// showed; preview and charge must agree to the paisa.
		order.TotalAmount = breakdown.GrandTotal
		if err := tx.Model(&order).Update("total_amount", order.TotalAmount).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID: order.ID,
			Method:  paymentMethod,
			Amount:  order.TotalAmount,
			Status:  models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if paymentMethod == models.PaymentMethodCOD {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			// The cart struct still holds the preloaded items; a keyed
			// update keeps gorm from re-saving them as associations.
			if err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
				Update("applied_coupon_id", nil).Error; err != nil {
				return err
			}
		}

		if err := tx.Preload("Items").Preload("Branch").First(&order, order.ID).Error; err != nil {
			return err
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}

	// Confirmation email is dispatched only after commit so a mailer failure
	// can never roll the checkout back.
	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(&order, &user); err != nil {
			utils.ErrorLogger.Printf("order %s: confirmation email failed: %v", order.OrderNumber, err)
		}
	}

	return &order, nil
}

func newOrderNumber() string {
	return "PJ-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}
