package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/controllers"
	"github.com/peelojuice/backend/middlewares"
	"github.com/peelojuice/backend/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "https://peelojuice.example"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Razorpay-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	mailer := services.GetMailerService()
	gateway := services.GetRazorpayService()

	userCtrl := controllers.NewUserController(db, mailer)
	catalogCtrl := controllers.NewCatalogController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db, services.NewCheckoutService(db, mailer))
	paymentCtrl := controllers.NewPaymentController(db, services.NewPaymentService(db, gateway), gateway, gateway.KeyID())

	strict := middlewares.NewStrictRateLimiter()

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", strict, userCtrl.Register)
		auth.POST("/login", strict, userCtrl.Login)
		auth.POST("/verify-email-otp", strict, userCtrl.VerifyEmailOTP)
		auth.POST("/verify-phone-otp", strict, userCtrl.VerifyPhoneOTP)
		auth.POST("/resend-email-otp", strict, userCtrl.ResendEmailOTP)
	}

	api := r.Group("/api")
	{
		api.GET("/juices", catalogCtrl.ListJuices)
		api.GET("/juices/:juice_id", catalogCtrl.GetJuice)

		// Gateway webhook authenticates by body signature, not by JWT.
		api.POST("/payments/razorpay/webhook", paymentCtrl.RazorpayWebhook)
	}

	user := r.Group("/api", middlewares.AuthMiddleware())
	{
		user.GET("/profile", userCtrl.GetProfile)
		user.PUT("/profile", userCtrl.UpdateProfile)

		user.GET("/cart", cartCtrl.GetCart)
		user.POST("/cart/items", cartCtrl.UpsertItem)
		user.DELETE("/cart/items/:juice_id", cartCtrl.RemoveItem)
		user.DELETE("/cart", cartCtrl.ClearCart)
		user.POST("/cart/coupon", cartCtrl.ApplyCoupon)
		user.DELETE("/cart/coupon", cartCtrl.RemoveCoupon)

		user.POST("/checkout", orderCtrl.PlaceOrder)
		user.GET("/orders", orderCtrl.MyOrders)
		user.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		user.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)

		user.GET("/payments/order/:order_id", paymentCtrl.GetPaymentByOrder)
		user.POST("/payments/razorpay/order", paymentCtrl.CreateRazorpayOrder)
		user.POST("/payments/razorpay/verify", paymentCtrl.VerifyRazorpayPayment)
	}

	staff := r.Group("/api/staff", middlewares.AuthMiddleware(), middlewares.StaffOnly())
	{
		staff.GET("/branches", catalogCtrl.ListBranches)
		staff.POST("/branches", catalogCtrl.CreateBranch)
		staff.PUT("/branches/:branch_id", catalogCtrl.UpdateBranch)

		staff.POST("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		staff.POST("/payments/:payment_id/confirm-cod", paymentCtrl.ConfirmCODPayment)
	}

	return r
}
