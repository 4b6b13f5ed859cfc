package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/middlewares"
	"github.com/peelojuice/backend/models"
	"github.com/peelojuice/backend/services"
	"github.com/peelojuice/backend/utils"
)

type OrderController struct {
	DB       *gorm.DB
	Checkout *services.CheckoutService
}

func NewOrderController(db *gorm.DB, checkout *services.CheckoutService) *OrderController {
	return &OrderController{DB: db, Checkout: checkout}
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// PlaceOrder runs the atomic checkout. Error mapping: bad method / empty
// cart -> 400, missing cart -> 404, no active branch -> 503, anything else
// rolled back and surfaced as 500.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentMethodCOD
	}

	order, err := oc.Checkout.Checkout(middlewares.CurrentUserID(c), req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPaymentMethod), errors.Is(err, services.ErrCartEmpty):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, services.ErrCartNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrNoActiveBranch):
			utils.RespondError(c, http.StatusServiceUnavailable, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", gin.H{
		"order":          order,
		"payment_method": req.PaymentMethod,
	})
}

// MyOrders lists the caller's orders, newest first. The status query filter
// accepts ongoing, delivered or cancelled.
func (oc *OrderController) MyOrders(c *gin.Context) {
	query := oc.DB.Preload("Items.Juice").Preload("Branch").
		Where("user_id = ?", middlewares.CurrentUserID(c)).
		Order("created_at DESC")

	switch c.Query("status") {
	case "ongoing":
		query = query.Where("status IN ?", []string{
			models.OrderStatusPending,
			models.OrderStatusConfirmed,
			models.OrderStatusPreparing,
			models.OrderStatusOutForDelivery,
		})
	case "delivered":
		query = query.Where("status = ?", models.OrderStatusDelivered)
	case "cancelled":
		query = query.Where("status = ?", models.OrderStatusCancelled)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My orders", gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	err := oc.DB.Preload("Items.Juice").Preload("Branch").
		Where("id = ? AND user_id = ?", c.Param("order_id"), middlewares.CurrentUserID(c)).
		First(&order).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// CancelOrder lets the customer cancel their own order while it has not
// reached a terminal state.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	var order models.Order
	err := oc.DB.Where("id = ? AND user_id = ?", c.Param("order_id"), middlewares.CurrentUserID(c)).
		First(&order).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	if order.Status == models.OrderStatusCancelled {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order is already cancelled"))
		return
	}
	if !order.CanTransitionTo(models.OrderStatusCancelled) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot cancel a delivered order"))
		return
	}

	if err := oc.DB.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled successfully", gin.H{
		"order_id": order.ID,
		"status":   models.OrderStatusCancelled,
	})
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the staff transition along the delivery workflow.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	valid := false
	for _, s := range models.OrderStatuses {
		if s == req.Status {
			valid = true
			break
		}
	}
	if !valid {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status"))
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	if !order.CanTransitionTo(req.Status) {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("invalid status transition from "+order.Status+" to "+req.Status))
		return
	}

	if err := oc.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated successfully", gin.H{
		"order_id": order.ID,
		"status":   req.Status,
	})
}
