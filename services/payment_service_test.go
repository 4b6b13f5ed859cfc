package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/models"
)

// fakeGateway accepts exactly one signature and always verifies webhooks.
type fakeGateway struct {
	validSignature string
	createdOrders  int
}

func (f *fakeGateway) CreateOrder(amount decimal.Decimal, receipt string) (*GatewayOrder, error) {
	f.createdOrders++
	return &GatewayOrder{
		ID:       "order_remote_1",
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: "INR",
	}, nil
}

func (f *fakeGateway) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return signature == f.validSignature
}

func (f *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return true
}

// checkoutOnlineOrder runs a real online checkout and tags its payment with
// the fake gateway's order id.
func checkoutOnlineOrder(t *testing.T, db *gorm.DB, userID uint) *models.Payment {
	t.Helper()
	svc := NewCheckoutService(db, nil)
	order, err := svc.Checkout(userID, models.PaymentMethodOnline)
	assert.NoError(t, err)

	var payment models.Payment
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.NoError(t, db.Model(&payment).Update("razorpay_order_id", "order_remote_1").Error)
	payment.RazorpayOrderID = "order_remote_1"
	return &payment
}

func TestConfirmCODPayment(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)

	checkout := NewCheckoutService(db, nil)
	order, err := checkout.Checkout(user.ID, models.PaymentMethodCOD)
	assert.NoError(t, err)

	var payment models.Payment
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)

	svc := NewPaymentService(db, &fakeGateway{})
	staffID := uint(42)

	confirmed, err := svc.ConfirmCODPayment(payment.ID, staffID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, confirmed.Status)
	assert.NotNil(t, confirmed.PaidAt)
	if assert.NotNil(t, confirmed.VerifiedBy) {
		assert.Equal(t, staffID, *confirmed.VerifiedBy)
	}

	// Re-confirming a completed payment is rejected, not silently ignored.
	_, err = svc.ConfirmCODPayment(payment.ID, staffID)
	assert.ErrorIs(t, err, ErrPaymentAlreadyCompleted)
}

func TestConfirmCODPaymentRejectsOnlineMethod(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)
	payment := checkoutOnlineOrder(t, db, user.ID)

	svc := NewPaymentService(db, &fakeGateway{})
	_, err := svc.ConfirmCODPayment(payment.ID, 42)
	assert.ErrorIs(t, err, ErrNotCODPayment)
}

func TestConfirmCODPaymentNotFound(t *testing.T) {
	db := setupCheckoutDB(t)
	svc := NewPaymentService(db, &fakeGateway{})
	_, err := svc.ConfirmCODPayment(9999, 42)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestVerifyOnlinePaymentSuccess(t *testing.T) {
	db := setupCheckoutDB(t)
	user, cart := seedCartWithItems(t, db)
	payment := checkoutOnlineOrder(t, db, user.ID)

	svc := NewPaymentService(db, &fakeGateway{validSignature: "good-sig"})

	verified, err := svc.VerifyOnlinePayment("order_remote_1", "pay_123", "good-sig", user.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, verified.Status)
	assert.Equal(t, "pay_123", verified.TransactionID)
	assert.NotNil(t, verified.PaidAt)

	var order models.Order
	assert.NoError(t, db.First(&order, payment.OrderID).Error)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)

	// Only now does the cart empty out.
	var remaining int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestVerifyOnlinePaymentBadSignature(t *testing.T) {
	db := setupCheckoutDB(t)
	user, cart := seedCartWithItems(t, db)
	payment := checkoutOnlineOrder(t, db, user.ID)

	svc := NewPaymentService(db, &fakeGateway{validSignature: "good-sig"})

	_, err := svc.VerifyOnlinePayment("order_remote_1", "pay_123", "forged", user.ID)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	// Failed status is persisted, order and cart untouched so the customer
	// can retry the payment.
	var fresh models.Payment
	assert.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, fresh.Status)
	assert.Nil(t, fresh.PaidAt)

	var order models.Order
	assert.NoError(t, db.First(&order, payment.OrderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	var remaining int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&remaining)
	assert.Equal(t, int64(2), remaining)
}

func TestVerifyOnlinePaymentWrongUser(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)
	checkoutOnlineOrder(t, db, user.ID)

	svc := NewPaymentService(db, &fakeGateway{validSignature: "good-sig"})
	_, err := svc.VerifyOnlinePayment("order_remote_1", "pay_123", "good-sig", user.ID+1)
	assert.ErrorIs(t, err, ErrPaymentForbidden)
}

func TestVerifyOnlinePaymentAlreadyCompleted(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)
	checkoutOnlineOrder(t, db, user.ID)

	svc := NewPaymentService(db, &fakeGateway{validSignature: "good-sig"})
	_, err := svc.VerifyOnlinePayment("order_remote_1", "pay_123", "good-sig", user.ID)
	assert.NoError(t, err)

	_, err = svc.VerifyOnlinePayment("order_remote_1", "pay_456", "good-sig", user.ID)
	assert.ErrorIs(t, err, ErrPaymentAlreadyCompleted)
}

func TestHandleWebhookCompletesPayment(t *testing.T) {
	db := setupCheckoutDB(t)
	user, cart := seedCartWithItems(t, db)
	payment := checkoutOnlineOrder(t, db, user.ID)

	svc := NewPaymentService(db, &fakeGateway{})

	event := WebhookEvent{Event: "payment.captured"}
	event.Payload.Payment.Entity.OrderID = "order_remote_1"
	event.Payload.Payment.Entity.ID = "pay_webhook"

	assert.NoError(t, svc.HandleWebhook(event))

	var fresh models.Payment
	assert.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, fresh.Status)
	assert.Equal(t, "pay_webhook", fresh.TransactionID)

	var remaining int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&remaining)
	assert.Zero(t, remaining)

	// Gateway redelivery of the same event is acked without side effects.
	assert.NoError(t, svc.HandleWebhook(event))
}

func TestHandleWebhookIgnoresUnknownOrderAndOtherEvents(t *testing.T) {
	db := setupCheckoutDB(t)
	svc := NewPaymentService(db, &fakeGateway{})

	unknown := WebhookEvent{Event: "payment.captured"}
	unknown.Payload.Payment.Entity.OrderID = "order_nobody_knows"
	assert.NoError(t, svc.HandleWebhook(unknown))

	other := WebhookEvent{Event: "payment.failed"}
	assert.NoError(t, svc.HandleWebhook(other))
}

func TestOnlinePathRejectsCODPayment(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)

	checkout := NewCheckoutService(db, nil)
	order, err := checkout.Checkout(user.ID, models.PaymentMethodCOD)
	assert.NoError(t, err)

	svc := NewPaymentService(db, &fakeGateway{validSignature: "good-sig"})

	// The gateway never opens a remote order for a cod payment.
	_, _, err = svc.CreateGatewayOrder(order.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotOnlinePayment)

	// Even a cod payment that somehow carries a gateway order id cannot be
	// completed by the callback or the webhook.
	var payment models.Payment
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.NoError(t, db.Model(&payment).Update("razorpay_order_id", "order_remote_1").Error)

	_, err = svc.VerifyOnlinePayment("order_remote_1", "pay_123", "good-sig", user.ID)
	assert.ErrorIs(t, err, ErrNotOnlinePayment)

	event := WebhookEvent{Event: "payment.captured"}
	event.Payload.Payment.Entity.OrderID = "order_remote_1"
	event.Payload.Payment.Entity.ID = "pay_123"
	assert.NoError(t, svc.HandleWebhook(event))

	var fresh models.Payment
	assert.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentMethodCOD, fresh.Method)
	assert.Equal(t, models.PaymentStatusPending, fresh.Status)
}

func TestCreateGatewayOrder(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)

	checkout := NewCheckoutService(db, nil)
	order, err := checkout.Checkout(user.ID, models.PaymentMethodOnline)
	assert.NoError(t, err)

	gateway := &fakeGateway{validSignature: "good-sig"}
	svc := NewPaymentService(db, gateway)

	gatewayOrder, payment, err := svc.CreateGatewayOrder(order.ID, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "order_remote_1", gatewayOrder.ID)
	assert.Equal(t, int64(16750), gatewayOrder.Amount)
	assert.Equal(t, "INR", gatewayOrder.Currency)
	assert.Equal(t, "order_remote_1", payment.RazorpayOrderID)

	// A retry refreshes the same payment row instead of creating another.
	_, second, err := svc.CreateGatewayOrder(order.ID, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, payment.ID, second.ID)

	var count int64
	db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateGatewayOrderRejectsPaidOrder(t *testing.T) {
	db := setupCheckoutDB(t)
	user, _ := seedCartWithItems(t, db)
	payment := checkoutOnlineOrder(t, db, user.ID)

	now := time.Now()
	assert.NoError(t, db.Model(payment).Updates(map[string]interface{}{
		"status":  models.PaymentStatusCompleted,
		"paid_at": &now,
	}).Error)

	svc := NewPaymentService(db, &fakeGateway{})
	_, _, err := svc.CreateGatewayOrder(payment.OrderID, user.ID)
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
}

func TestCreateGatewayOrderUnknownOrder(t *testing.T) {
	db := setupCheckoutDB(t)
	svc := NewPaymentService(db, &fakeGateway{})
	_, _, err := svc.CreateGatewayOrder(777, 1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
