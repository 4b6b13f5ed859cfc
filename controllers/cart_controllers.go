package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/middlewares"
	"github.com/peelojuice/backend/models"
	"github.com/peelojuice/backend/services"
	"github.com/peelojuice/backend/utils"
)

type CartController struct {
	DB *gorm.DB
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{DB: db}
}

// getOrCreateCart loads the user's cart with items and coupon, creating it
// lazily on first use.
func (cc *CartController) getOrCreateCart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := cc.DB.Preload("Items.Juice").Preload("AppliedCoupon").
		Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := cc.DB.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart returns the cart with the full pricing preview. The breakdown
// comes from the same calculator checkout uses, so what the customer sees
// here is exactly what they will be charged.
func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.getOrCreateCart(middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var coupon services.Discounter
	if cart.AppliedCoupon != nil && cart.AppliedCoupon.IsUsable(time.Now()) {
		coupon = cart.AppliedCoupon
	}
	breakdown := services.ComputePricing(cart.FoodSubtotal(), coupon)

	utils.RespondJSON(c, http.StatusOK, "Cart", gin.H{
		"cart":    cart,
		"pricing": breakdown,
	})
}

type CartItemRequest struct {
	JuiceID  uint `json:"juice_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// UpsertItem adds a juice to the cart or updates its quantity. The price is
// snapshotted into price_at_added on first add and stays fixed even if the
// catalog price changes later.
func (cc *CartController) UpsertItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var juice models.Juice
	if err := cc.DB.First(&juice, req.JuiceID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("juice does not exist"))
		return
	}
	if !juice.IsAvailable {
		utils.RespondError(c, http.StatusBadRequest, errors.New("juice is not available"))
		return
	}

	cart, err := cc.getOrCreateCart(middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var item models.CartItem
	err = cc.DB.Where("cart_id = ? AND juice_id = ?", cart.ID, juice.ID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{
			CartID:       cart.ID,
			JuiceID:      juice.ID,
			Quantity:     req.Quantity,
			PriceAtAdded: juice.Price,
			AddedAt:      time.Now(),
		}
		if err := cc.DB.Create(&item).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusCreated, "Item added to cart", item)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	item.Quantity = req.Quantity
	if err := cc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item updated", item)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	var cart models.Cart
	if err := cc.DB.Where("user_id = ?", middlewares.CurrentUserID(c)).First(&cart).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("cart not found"))
		return
	}

	result := cc.DB.Where("cart_id = ? AND juice_id = ?", cart.ID, c.Param("juice_id")).
		Delete(&models.CartItem{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("item not in cart"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed from cart", nil)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	var cart models.Cart
	if err := cc.DB.Where("user_id = ?", middlewares.CurrentUserID(c)).First(&cart).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("cart not found"))
		return
	}

	if err := cc.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := cc.DB.Model(&cart).Update("applied_coupon_id", nil).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (cc *CartController) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var coupon models.Coupon
	if err := cc.DB.Where("code = ?", req.Code).First(&coupon).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("coupon not found"))
		return
	}
	if !coupon.IsUsable(time.Now()) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("coupon is expired or inactive"))
		return
	}

	cart, err := cc.getOrCreateCart(middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if cart.FoodSubtotal().LessThan(coupon.MinSubtotal) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cart subtotal below coupon minimum"))
		return
	}

	// Keyed update; cart carries preloaded items that must not be re-saved.
	if err := cc.DB.Model(&models.Cart{}).Where("id = ?", cart.ID).
		Update("applied_coupon_id", coupon.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Coupon applied", coupon)
}

func (cc *CartController) RemoveCoupon(c *gin.Context) {
	var cart models.Cart
	if err := cc.DB.Where("user_id = ?", middlewares.CurrentUserID(c)).First(&cart).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("cart not found"))
		return
	}
	if err := cc.DB.Model(&cart).Update("applied_coupon_id", nil).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Coupon removed", nil)
}
