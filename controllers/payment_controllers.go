package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/middlewares"
	"github.com/peelojuice/backend/services"
	"github.com/peelojuice/backend/utils"
)

type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
	Gateway  services.PaymentGateway
	KeyID    string
}

func NewPaymentController(db *gorm.DB, payments *services.PaymentService, gateway services.PaymentGateway, keyID string) *PaymentController {
	return &PaymentController{DB: db, Payments: payments, Gateway: gateway, KeyID: keyID}
}

// GetPaymentByOrder returns the payment for an order, visible to its owner
// and to staff.
func (pc *PaymentController) GetPaymentByOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	payment, err := pc.Payments.GetPaymentByOrderID(uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if payment.Order.UserID != middlewares.CurrentUserID(c) && !middlewares.IsStaff(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("not authorized to view this payment"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// ConfirmCODPayment is staff-only; route-level middleware enforces that.
func (pc *PaymentController) ConfirmCODPayment(c *gin.Context) {
	paymentID, err := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid payment id"))
		return
	}

	payment, err := pc.Payments.ConfirmCODPayment(uint(paymentID), middlewares.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrNotCODPayment), errors.Is(err, services.ErrPaymentAlreadyCompleted):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	utils.RespondJSON(c, http.StatusOK, "COD payment confirmed successfully", gin.H{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}

type CreateGatewayOrderRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// CreateRazorpayOrder registers the remote gateway order and hands the
// client what it needs to open the checkout widget.
func (pc *PaymentController) CreateRazorpayOrder(c *gin.Context) {
	var req CreateGatewayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	gatewayOrder, _, err := pc.Payments.CreateGatewayOrder(req.OrderID, middlewares.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrOrderAlreadyPaid), errors.Is(err, services.ErrNotOnlinePayment):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Gateway order created", gin.H{
		"razorpay_order_id": gatewayOrder.ID,
		"amount":            gatewayOrder.Amount,
		"currency":          gatewayOrder.Currency,
		"key_id":            pc.KeyID,
	})
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyRazorpayPayment handles the signed checkout callback. A signature
// mismatch is a rejected verification, not a server fault.
func (pc *PaymentController) VerifyRazorpayPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.Payments.VerifyOnlinePayment(
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature,
		middlewares.CurrentUserID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSignatureMismatch):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, services.ErrPaymentNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrPaymentForbidden):
			utils.RespondError(c, http.StatusForbidden, err)
		case errors.Is(err, services.ErrPaymentAlreadyCompleted), errors.Is(err, services.ErrNotOnlinePayment):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment verified successfully", gin.H{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}

// RazorpayWebhook is the unauthenticated gateway callback. The HMAC on the
// raw body is the authentication; events are acked with 200 even when the
// gateway order id is unknown, so the gateway does not retry forever.
func (pc *PaymentController) RazorpayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unreadable body"))
		return
	}

	if !pc.Gateway.VerifyWebhookSignature(body, c.GetHeader("X-Razorpay-Signature")) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid signature"))
		return
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("malformed event"))
		return
	}

	if err := pc.Payments.HandleWebhook(event); err != nil {
		utils.ErrorLogger.Printf("webhook for gateway order %s failed: %v",
			event.Payload.Payment.Entity.OrderID, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", nil)
}
