package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/config"
	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/handlers"
	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/internal/services"
	"github.com/landlink/survey-backend/pkg/jwt"
	"github.com/landlink/survey-backend/pkg/mailer"
	"github.com/landlink/survey-backend/pkg/sms"
	"github.com/landlink/survey-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting LandLink Survey Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	paymentRepository := database.NewPaymentRepository(db)
	reviewRepository := database.NewReviewRepository(db)
	demoRepository := database.NewDemoRequestRepository(db)

	// Initialize gateways
	var emailGateway mailer.EmailGateway
	if cfg.Email.Mode == "production" {
		emailGateway = mailer.NewSMTPGateway(mailer.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
	} else {
		emailGateway = mailer.NewDevGateway(logger)
	}
	logger.Infof("Email gateway: %s", emailGateway.GetName())

	var smsGateway sms.SMSGateway
	if cfg.SMS.Mode == "production" {
		smsGateway = sms.NewTwilioGateway(sms.TwilioConfig{
			AccountSID:          cfg.SMS.AccountSID,
			AuthToken:           cfg.SMS.AuthToken,
			MessagingServiceSID: cfg.SMS.MessagingServiceSID,
		})
	} else {
		smsGateway = sms.NewDevGateway(logger)
	}
	logger.Infof("SMS gateway: %s", smsGateway.GetName())

	paystackClient := services.NewPaystackClient(services.PaystackConfig{
		SecretKey: cfg.Paystack.SecretKey,
		BaseURL:   cfg.Paystack.BaseURL,
	}, logger)

	mpesaClient := services.NewMpesaClient(services.MpesaConfig{
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		Shortcode:      cfg.Mpesa.Shortcode,
		Passkey:        cfg.Mpesa.Passkey,
		BaseURL:        cfg.Mpesa.BaseURL,
		CallbackURL:    fmt.Sprintf("%s/api/payments/mpesa/callback", cfg.Server.BaseURL),
	}, logger)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	phoneValidator := validator.NewPhoneValidator()

	notificationService := services.NewNotificationService(
		emailGateway, smsGateway, cfg.Server.ClientURL, logger)

	pendingStore := services.NewPendingStore()
	registrationService := services.NewRegistrationService(
		pendingStore,
		userRepository,
		notificationService,
		cfg.Security.BcryptCost,
		time.Duration(cfg.OTP.ExpiryMinutes)*time.Minute,
		logger,
	)

	authService := services.NewAuthService(
		userRepository,
		jwtService,
		notificationService,
		logger,
		cfg.Security.BcryptCost,
		cfg.Security.AdminSecretCode,
		cfg.Security.ResetTokenTTL,
	)

	bookingService := services.NewBookingService(
		bookingRepository, userRepository, notificationService, logger)

	paymentService := services.NewPaymentService(
		paymentRepository, paystackClient, mpesaClient, notificationService, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(registrationService, authService, logger)
	adminHandler := handlers.NewAdminHandler(
		authService, registrationService, bookingService,
		userRepository, bookingRepository, logger)
	profileHandler := handlers.NewProfileHandler(userRepository, authService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, bookingRepository, logger)
	professionalHandler := handlers.NewProfessionalHandler(
		bookingService, bookingRepository, userRepository, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, phoneValidator, logger)
	ussdHandler := handlers.NewUSSDHandler(logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepository, bookingRepository, logger)
	demoHandler := handlers.NewDemoHandler(demoRepository, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	api := router.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// Authentication routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/resend-otp", authHandler.ResendOTP)
			auth.POST("/login", authHandler.Login)
			auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/logout", middleware.AuthMiddleware(jwtService), authHandler.Logout)
		}

		// Public routes
		api.POST("/ussd", ussdHandler.Handle)
		api.POST("/demo-requests", demoHandler.Create)
		api.GET("/reviews/:bookingId", reviewHandler.ListBookingReviews)

		// Payment provider callbacks (public; providers cannot authenticate)
		api.POST("/payments/paystack/webhook", paymentHandler.PaystackWebhook)
		api.POST("/payments/mpesa/callback", paymentHandler.MpesaCallback)

		// Authenticated routes
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(jwtService))
		{
			// Profile (all roles)
			authed.GET("/profile", profileHandler.GetProfile)
			authed.PUT("/profile", profileHandler.UpdateProfile)
			authed.PATCH("/profile/notifications", profileHandler.ToggleNotifications)
			authed.POST("/profile/change-password", profileHandler.ChangePassword)

			// Client bookings and payments
			client := authed.Group("")
			client.Use(middleware.RequireRole(models.RoleClient, models.RoleAdmin))
			{
				client.POST("/bookings", bookingHandler.CreateBooking)
				client.GET("/bookings", bookingHandler.ListMyBookings)
				client.GET("/bookings/:id", bookingHandler.GetBooking)
				client.POST("/payments/card", paymentHandler.InitiateCard)
				client.POST("/payments/mpesa", paymentHandler.InitiateMobile)
				client.GET("/payments", paymentHandler.ListMyPayments)
				client.POST("/reviews", reviewHandler.CreateReview)
			}

			// Professional dashboards and assignments
			professional := authed.Group("/professional")
			professional.Use(middleware.RequireRole(
				models.RoleSurveyor, models.RoleGISExpert, models.RoleAdmin))
			{
				professional.GET("/dashboard", professionalHandler.Dashboard)
				professional.GET("/assignments", professionalHandler.ListAssignments)
				professional.PATCH("/bookings/:id/status", professionalHandler.UpdateBookingStatus)
			}

			// Admin oversight
			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/bookings", adminHandler.ListBookings)
				admin.PATCH("/bookings/:id/assign", adminHandler.AssignBooking)
				admin.GET("/surveyors", adminHandler.ListSurveyors)
				admin.GET("/gis-experts", adminHandler.ListGISExperts)
				admin.GET("/clients", adminHandler.ListClients)
				admin.GET("/admins", adminHandler.ListAdmins)
				admin.GET("/pending-professionals", adminHandler.ListPendingProfessionals)
				admin.POST("/applications/approve", adminHandler.ApproveApplication)
				admin.POST("/applications/reject", adminHandler.RejectApplication)
				admin.PATCH("/professionals/:id/approval", adminHandler.SetApproval)
				admin.DELETE("/users/:id", adminHandler.DeleteUser)
			}
		}

		// Admin signup is public but gated by the secret code
		api.POST("/admin/signup", adminHandler.Signup)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
