package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"kefystore-backend/config"
	"kefystore-backend/database"
	"kefystore-backend/internal/api"
	"kefystore-backend/internal/middleware"
	"kefystore-backend/internal/models"
	"kefystore-backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatal("Invalid tax rate:", err)
	}
	fallbackFee, err := decimal.NewFromString(cfg.FallbackDeliveryFee)
	if err != nil {
		log.Fatal("Invalid fallback delivery fee:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Run database migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowedOrigin := ""
		if cfg.AllowAllOrigins {
			allowedOrigin = "*"
		} else {
			for _, allowed := range cfg.AllowedOrigins {
				if origin == allowed {
					allowedOrigin = origin
					break
				}
			}
		}

		if allowedOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowedOrigin)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin, X-Signature")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Rate limiting and security headers
	if os.Getenv("DISABLE_RATE_LIMITING") != "true" {
		securityConfig := middleware.DefaultSecurityConfig()
		securityConfig.RateLimitRequests = cfg.RateLimitRequests
		router.Use(middleware.SecurityMiddleware(securityConfig))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "KefyStore API is running",
			"version": "1.0.0",
		})
	})

	// Initialize services
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	userService := services.NewUserService(db)
	otpService := services.NewOTPService(db)
	catalogService := services.NewCatalogService(db)
	cartService := services.NewCartService(db)
	deliveryService := services.NewDeliveryService(db, fallbackFee)
	orderService := services.NewOrderService(db, deliveryService, taxRate, cfg.Currency)
	paymentService := services.NewPaymentService(db, cfg.Providers, orderService)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	smsService := services.NewSMSService(cfg.SMSGatewayURL, cfg.SMSAPIKey, cfg.SMSSender)
	wsService := services.NewWebSocketService(authService)
	notificationService := services.NewNotificationService(db, wsService)
	dispatchService := services.NewDispatchService(db, emailService, smsService)
	popupService := services.NewPopupService(db)
	wishlistService := services.NewWishlistService(db)
	dashboardService := services.NewDashboardService(db)

	// Background workers
	stop := make(chan struct{})
	otpService.StartCleanupLoop(10*time.Minute, stop)
	dispatchService.Start(30*time.Second, stop)

	// Initialize handlers
	authHandlers := api.NewAuthHandlers(userService, authService, otpService, notificationService)
	productHandlers := api.NewProductHandlers(catalogService, userService)
	cartHandlers := api.NewCartHandlers(cartService)
	orderHandlers := api.NewOrderHandlers(orderService, userService, notificationService)
	paymentHandlers := api.NewPaymentHandlers(paymentService, orderService, userService, notificationService)
	notificationHandlers := api.NewNotificationHandlers(notificationService)
	popupHandlers := api.NewPopupHandlers(popupService)
	wishlistHandlers := api.NewWishlistHandlers(wishlistService)
	deliveryHandlers := api.NewDeliveryHandlers(deliveryService)
	dashboardHandlers := api.NewDashboardHandlers(dashboardService, userService)

	vendorTypes := []string{string(models.UserTypeVendor), string(models.UserTypeAdmin)}

	// API routes
	apiGroup := router.Group("/api/v1")
	{
		// Authentication routes with stricter rate limiting
		auth := apiGroup.Group("/auth")
		auth.Use(middleware.AuthRateLimitMiddleware())
		{
			auth.POST("/register", authHandlers.Register)
			auth.POST("/login", authHandlers.Login)
			auth.POST("/verify-otp", authHandlers.VerifyOTP)
			auth.POST("/refresh", authHandlers.RefreshToken)
			auth.POST("/logout", authMiddleware.AuthRequired(), authHandlers.Logout)
			auth.GET("/profile", authMiddleware.AuthRequired(), authHandlers.GetProfile)
			auth.PUT("/profile", authMiddleware.AuthRequired(), authHandlers.UpdateProfile)
			auth.PUT("/two-factor", authMiddleware.AuthRequired(), authHandlers.SetTwoFactor)
		}

		// WebSocket route (handles auth internally)
		apiGroup.GET("/ws", authMiddleware.OptionalAuth(), wsService.HandleWebSocket)

		// Provider webhooks are signed, not authenticated
		apiGroup.POST("/payments/webhook/:provider", paymentHandlers.Webhook)

		// Public catalog browsing
		products := apiGroup.Group("/products")
		{
			products.GET("", productHandlers.ListProducts)
			products.GET("/:slug", productHandlers.GetProduct)
		}
		apiGroup.GET("/reviews/product/:id", productHandlers.ListReviews)

		// Public popups and delivery quotes
		apiGroup.GET("/popups", authMiddleware.OptionalAuth(), popupHandlers.ActivePopups)
		apiGroup.GET("/delivery/quote", deliveryHandlers.QuoteFee)
		apiGroup.GET("/delivery/zones", deliveryHandlers.ListZones)

		// Protected routes
		protected := apiGroup.Group("/")
		protected.Use(authMiddleware.AuthRequired())
		{
			// Cart routes
			cart := protected.Group("/cart")
			{
				cart.GET("", cartHandlers.GetCart)
				cart.POST("/items", cartHandlers.AddItem)
				cart.PUT("/items/:itemId", cartHandlers.UpdateItem)
				cart.DELETE("/items/:itemId", cartHandlers.RemoveItem)
				cart.DELETE("", cartHandlers.ClearCart)
			}

			// Order routes
			orders := protected.Group("/orders")
			{
				orders.POST("", orderHandlers.Checkout)
				orders.GET("", orderHandlers.ListOrders)
				orders.GET("/:id", orderHandlers.GetOrder)
				orders.GET("/:id/history", orderHandlers.GetHistory)
				orders.POST("/:id/cancel", orderHandlers.CancelOrder)
				orders.GET("/:id/transactions", paymentHandlers.ListOrderTransactions)
			}

			// Payment routes
			payments := protected.Group("/payments")
			{
				payments.POST("", paymentHandlers.InitiatePayment)
				payments.GET("/:reference", paymentHandlers.GetTransaction)
			}

			// Review routes
			protected.POST("/reviews/product/:id", productHandlers.CreateReview)

			// Wishlist routes
			wishlist := protected.Group("/wishlist")
			{
				wishlist.GET("", wishlistHandlers.ListWishlist)
				wishlist.POST("/:productId", wishlistHandlers.AddToWishlist)
				wishlist.DELETE("/:productId", wishlistHandlers.RemoveFromWishlist)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandlers.ListNotifications)
				notifications.GET("/unread-count", notificationHandlers.UnreadCount)
				notifications.PUT("/:id/read", notificationHandlers.MarkRead)
				notifications.POST("/read-all", notificationHandlers.MarkAllRead)
				notifications.DELETE("/:id", notificationHandlers.DeleteNotification)
			}

			// Popup acknowledgement
			protected.POST("/popups/:id/ack", popupHandlers.Acknowledge)

			// Vendor routes
			vendor := protected.Group("/vendor")
			vendor.Use(authMiddleware.RequireUserTypes(vendorTypes...))
			{
				vendor.POST("/products", productHandlers.CreateProduct)
				vendor.PUT("/products/:id", productHandlers.UpdateProduct)
				vendor.DELETE("/products/:id", productHandlers.DeleteProduct)
				vendor.POST("/products/:id/variants", productHandlers.AddVariant)
				vendor.DELETE("/variants/:variantId", productHandlers.DeleteVariant)
				vendor.GET("/orders", orderHandlers.ListVendorOrders)
				vendor.PUT("/orders/:id/status", orderHandlers.UpdateStatus)
				vendor.GET("/dashboard", dashboardHandlers.VendorStats)
				vendor.GET("/dashboard/top-products", dashboardHandlers.TopProducts)
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(authMiddleware.RequireUserTypes(string(models.UserTypeAdmin)))
			{
				admin.GET("/dashboard", dashboardHandlers.AdminStats)
				admin.GET("/vendors/pending", dashboardHandlers.ListPendingVendors)
				admin.POST("/vendors/:id/approve", dashboardHandlers.ApproveVendor)
				admin.PUT("/users/:id/status", dashboardHandlers.SetUserStatus)
				admin.POST("/orders/:id/refund", orderHandlers.RefundOrder)
				admin.POST("/popups", popupHandlers.CreatePopup)
				admin.DELETE("/popups/:id", popupHandlers.DeactivatePopup)
				admin.POST("/delivery/zones", deliveryHandlers.CreateZone)
				admin.DELETE("/delivery/zones/:id", deliveryHandlers.DeactivateZone)
			}
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("KefyStore API server starting on port %s", cfg.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server shutdown complete")
}
