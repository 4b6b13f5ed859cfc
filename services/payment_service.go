package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/peelojuice/backend/models"
)

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentForbidden        = errors.New("not authorized for this payment")
	ErrPaymentAlreadyCompleted = errors.New("payment already completed")
	ErrNotCODPayment           = errors.New("only cod payments can be confirmed this way")
	ErrNotOnlinePayment        = errors.New("only online payments can go through the gateway")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderAlreadyPaid        = errors.New("order already paid")
	ErrSignatureMismatch       = errors.New("payment verification failed")
)

// GatewayOrder is the remote order the payment gateway creates before the
// customer is sent off to pay. Amount is in minor units (paise).
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentGateway is the slice of the gateway API the payment flows consume.
type PaymentGateway interface {
	CreateOrder(amount decimal.Decimal, receipt string) (*GatewayOrder, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

// WebhookEvent mirrors the gateway's webhook payload shape.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
				ID      string `json:"id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentService drives the payment state machine. Every transition is a
// check-then-set inside one transaction with the payment row locked, so
// concurrent confirmation attempts serialize on the row instead of racing.
type PaymentService struct {
	db      *gorm.DB
	gateway PaymentGateway
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway) *PaymentService {
	return &PaymentService{db: db, gateway: gateway}
}

// ConfirmCODPayment is the staff-only transition pending -> completed for
// cash-on-delivery payments. Re-confirming a completed payment is rejected.
func (s *PaymentService) ConfirmCODPayment(paymentID, staffID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if payment.Method != models.PaymentMethodCOD {
			return ErrNotCODPayment
		}
		if payment.Status == models.PaymentStatusCompleted {
			return ErrPaymentAlreadyCompleted
		}

		now := time.Now()
		payment.Status = models.PaymentStatusCompleted
		payment.PaidAt = &now
		payment.VerifiedBy = &staffID
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// VerifyOnlinePayment handles the signature-carrying checkout callback. On a
// valid signature the payment completes, the order moves to confirmed and
// the user's cart is cleared. On an invalid signature the payment is marked
// failed and everything else is left untouched, so the customer can retry
// the payment without re-running checkout.
func (s *PaymentService) VerifyOnlinePayment(gatewayOrderID, gatewayPaymentID, signature string, userID uint) (*models.Payment, error) {
	var (
		payment   models.Payment
		verifyErr error
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Order").
			Where("razorpay_order_id = ?", gatewayOrderID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if payment.Order.UserID != userID {
			return ErrPaymentForbidden
		}
		// A cod payment completes only through staff confirmation.
		if payment.Method != models.PaymentMethodOnline {
			return ErrNotOnlinePayment
		}
		if payment.Status == models.PaymentStatusCompleted {
			return ErrPaymentAlreadyCompleted
		}

		if !s.gateway.VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature) {
			// The failed status must survive the transaction; the mismatch
			// itself is a business outcome, not a rollback trigger.
			verifyErr = ErrSignatureMismatch
			payment.Status = models.PaymentStatusFailed
			return tx.Save(&payment).Error
		}

		return s.completeOnlinePayment(tx, &payment, gatewayPaymentID)
	})
	if err != nil {
		return nil, err
	}
	if verifyErr != nil {
		return &payment, verifyErr
	}
	return &payment, nil
}

// HandleWebhook processes a signature-verified gateway event. Only
// payment.captured is acted on; redeliveries for already-completed payments
// and unknown gateway order ids are acked so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(event WebhookEvent) error {
	if event.Event != "payment.captured" {
		return nil
	}
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Order").
			Where("razorpay_order_id = ?", entity.OrderID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if payment.Method != models.PaymentMethodOnline {
			return nil
		}
		if payment.Status == models.PaymentStatusCompleted {
			return nil
		}
		return s.completeOnlinePayment(tx, &payment, entity.ID)
	})
}

// CreateGatewayOrder creates (or refreshes) the remote gateway order for an
// online payment. The payment row is get-or-created keyed by the order, which
// is the duplicate-submission guard.
func (s *PaymentService) CreateGatewayOrder(orderID, userID uint) (*GatewayOrder, *models.Payment, error) {
	var order models.Order
	if err := s.db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, err
	}

	var existing models.Payment
	if err := s.db.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		if existing.Status == models.PaymentStatusCompleted {
			return nil, nil, ErrOrderAlreadyPaid
		}
		if existing.Method != models.PaymentMethodOnline {
			return nil, nil, ErrNotOnlinePayment
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	gatewayOrder, err := s.gateway.CreateOrder(order.TotalAmount, order.OrderNumber)
	if err != nil {
		return nil, nil, err
	}

	payment := models.Payment{OrderID: order.ID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Payment{OrderID: order.ID}).
			Attrs(models.Payment{
				Method: models.PaymentMethodOnline,
				Amount: order.TotalAmount,
				Status: models.PaymentStatusPending,
			}).
			FirstOrCreate(&payment).Error; err != nil {
			return err
		}
		payment.RazorpayOrderID = gatewayOrder.ID
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return gatewayOrder, &payment, nil
}

// GetPaymentByOrderID returns the payment attached to an order.
func (s *PaymentService) GetPaymentByOrderID(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Preload("Order").Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// completeOnlinePayment applies the full success path: payment completed,
// order confirmed, cart cleared with its coupon detached.
func (s *PaymentService) completeOnlinePayment(tx *gorm.DB, payment *models.Payment, gatewayPaymentID string) error {
	now := time.Now()
	payment.Status = models.PaymentStatusCompleted
	payment.TransactionID = gatewayPaymentID
	payment.PaidAt = &now
	if err := tx.Save(payment).Error; err != nil {
		return err
	}

	var order models.Order
	if err := tx.First(&order, payment.OrderID).Error; err != nil {
		return err
	}
	if order.CanTransitionTo(models.OrderStatusConfirmed) {
		if err := tx.Model(&order).Update("status", models.OrderStatusConfirmed).Error; err != nil {
			return err
		}
	}

	// Cart contents were deliberately kept through checkout for online
	// payments; this is the single point where they go away.
	var cart models.Cart
	if err := tx.Where("user_id = ?", order.UserID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Model(&cart).Update("applied_coupon_id", nil).Error
}
