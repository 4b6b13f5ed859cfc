package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/middlewares"
	"github.com/peelojuice/backend/models"
	"github.com/peelojuice/backend/services"
	"github.com/peelojuice/backend/utils"
)

type UserController struct {
	DB     *gorm.DB
	Mailer *services.MailerService
}

func NewUserController(db *gorm.DB, mailer *services.MailerService) *UserController {
	return &UserController{DB: db, Mailer: mailer}
}

type RegisterRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

// Register creates an unverified account and issues email + phone OTPs.
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	user := models.User{
		FullName:       req.FullName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Password:       string(hash),
		EmailOTP:       utils.GenerateOTP(),
		PhoneOTP:       utils.GenerateOTP(),
		EmailOTPSentAt: &now,
		PhoneOTPSentAt: &now,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("email or phone number already registered"))
		return
	}

	if uc.Mailer != nil {
		if err := uc.Mailer.SendOTPEmail(user.Email, user.EmailOTP); err != nil {
			utils.ErrorLogger.Printf("otp email to %s failed: %v", user.Email, err)
		}
	}

	utils.RespondJSON(c, http.StatusCreated, "User registered successfully. Please check your email for OTP.", gin.H{
		"user_id": user.ID,
	})
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// VerifyEmailOTP marks the account's email verified when the code matches
// and is still within its validity window.
func (uc *UserController) VerifyEmailOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	if user.IsEmailVerified {
		utils.RespondError(c, http.StatusBadRequest, errors.New("email is already verified"))
		return
	}
	if utils.IsOTPExpired(user.EmailOTPSentAt) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("otp expired, please request a new one"))
		return
	}
	if user.EmailOTP != req.OTP {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid otp"))
		return
	}

	updates := map[string]interface{}{
		"is_email_verified": true,
		"email_otp":         "",
	}
	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Email verified successfully", nil)
}

type VerifyPhoneOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	OTP         string `json:"otp" binding:"required,len=6"`
}

func (uc *UserController) VerifyPhoneOTP(c *gin.Context) {
	var req VerifyPhoneOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("phone_number = ?", req.PhoneNumber).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	if user.IsPhoneVerified {
		utils.RespondError(c, http.StatusBadRequest, errors.New("phone is already verified"))
		return
	}
	if utils.IsOTPExpired(user.PhoneOTPSentAt) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("otp expired, please request a new one"))
		return
	}
	if user.PhoneOTP != req.OTP {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid otp"))
		return
	}

	updates := map[string]interface{}{
		"is_phone_verified": true,
		"phone_otp":         "",
	}
	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Phone verified successfully", nil)
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendEmailOTP regenerates the email code, refusing while the previous
// one is still live so the endpoint can't be used to spam a mailbox.
func (uc *UserController) ResendEmailOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	if user.IsEmailVerified {
		utils.RespondError(c, http.StatusBadRequest, errors.New("email is already verified"))
		return
	}
	if !utils.IsOTPExpired(user.EmailOTPSentAt) {
		utils.RespondError(c, http.StatusTooManyRequests, errors.New("otp already sent, please wait before resending"))
		return
	}

	now := time.Now()
	otp := utils.GenerateOTP()
	updates := map[string]interface{}{
		"email_otp":         otp,
		"email_otp_sent_at": &now,
	}
	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if uc.Mailer != nil {
		if err := uc.Mailer.SendOTPEmail(user.Email, otp); err != nil {
			utils.ErrorLogger.Printf("otp email to %s failed: %v", user.Email, err)
		}
	}
	utils.RespondJSON(c, http.StatusOK, "OTP sent to your email", nil)
}

type LoginRequest struct {
	EmailOrPhone string `json:"email_or_phone" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	err := uc.DB.Where("email = ? OR phone_number = ?", req.EmailOrPhone, req.EmailOrPhone).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid email/phone or password"))
		return
	}

	if !user.IsActive {
		utils.RespondError(c, http.StatusForbidden, errors.New("user is not active"))
		return
	}
	if !user.IsEmailVerified {
		utils.RespondError(c, http.StatusForbidden, errors.New("please verify your email before login"))
		return
	}
	if !user.IsPhoneVerified {
		utils.RespondError(c, http.StatusForbidden, errors.New("please verify your phone before login"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"access_token": token,
		"user": gin.H{
			"email":        user.Email,
			"full_name":    user.FullName,
			"phone_number": user.PhoneNumber,
			"is_staff":     user.IsStaff,
		},
	})
}

func (uc *UserController) GetProfile(c *gin.Context) {
	var user models.User
	if err := uc.DB.First(&user, middlewares.CurrentUserID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", user)
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, middlewares.CurrentUserID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if err := uc.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", user)
}
