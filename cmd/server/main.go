package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"court_filing_app_go/config"
	"court_filing_app_go/db"
	"court_filing_app_go/handlers"
	"court_filing_app_go/logger"
	"court_filing_app_go/middleware"
	"court_filing_app_go/models"
	"court_filing_app_go/services"
	"court_filing_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Evidence files may be 50MB; leave room for the multipart envelope
const bodyLimit = "55M"

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Environment)
	services.DefaultCurrency = cfg.PaymentCurrency

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Log.WithError(err).Fatal("Failed to run migrations")
	}
	if err := services.SeedAdmin(db.DB, cfg); err != nil {
		logger.Log.WithError(err).Error("Failed to seed admin user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services.InitializeStorage(cfg)
	services.Notify = services.NewNotifier(services.NewResendSender(cfg), services.NewRetryQueue(ctx, cfg, db.DB))
	services.PDF = services.NewChromePDFRenderer(cfg.ChromePath)

	if gateway, err := services.NewRazorpayGateway(cfg); err != nil {
		logger.Log.WithError(err).Warn("Payments disabled")
	} else {
		services.Gateway = gateway
	}

	scheduler := jobs.NewScheduler(db.DB, services.Notify, nil)
	if err := scheduler.Start(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to start scheduler")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler

	// Middleware
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.WithConfig(cfg))
	e.Use(middleware.Authenticate(cfg))

	// Static files
	e.Static("/static", "static")
	if local, ok := services.Storage.(*services.LocalStorage); ok {
		e.Static(services.LocalURLPrefix, local.BaseDir())
	}

	registerRoutes(e)

	go func() {
		logger.Log.WithField("port", cfg.ServerPort).Info("Server starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
	<-scheduler.Stop().Done()
	services.Notify.Wait()
}

func registerRoutes(e *echo.Echo) {
	e.GET("/healthz", handlers.HealthHandler)

	// Pages
	e.GET("/", handlers.LandingHandler)
	e.GET("/login", handlers.LandingHandler)
	e.GET("/register", handlers.RegisterPageHandler)
	e.GET("/verify-email", handlers.VerifyEmailPageHandler)
	e.GET("/verify-reminder", handlers.VerifyReminderHandler)
	e.GET("/unauthorized", handlers.UnauthorizedHandler)
	e.GET("/dashboard", handlers.DashboardHandler)
	e.GET("/admin", handlers.AdminPageHandler)

	// Auth
	auth := e.Group("/api/auth")
	{
		auth.POST("/register", handlers.RegisterHandler, middleware.RegistrationRateLimiter.Middleware())
		auth.POST("/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())
		auth.POST("/logout", handlers.LogoutHandler)
		auth.GET("/verify-email", handlers.VerifyEmailHandler)
		auth.POST("/resend-verification", handlers.ResendVerificationHandler, middleware.VerificationRateLimiter.Middleware())
		auth.POST("/admin-request", handlers.AdminRequestHandler, middleware.RegistrationRateLimiter.Middleware())
	}

	e.GET("/api/me", handlers.GetMeHandler)
	e.PATCH("/api/me", handlers.UpdateMeHandler)

	cases := e.Group("/api/cases")
	{
		cases.POST("", handlers.CreateCaseHandler)
		cases.GET("", handlers.GetCasesHandler)
		cases.GET("/:id", handlers.GetCaseHandler)
		cases.PATCH("/:id", handlers.UpdateCaseHandler)
		cases.PUT("/:id", handlers.UpdateCaseHandler)
		cases.DELETE("/:id", handlers.DeleteCaseHandler)
	}

	hearings := e.Group("/api/hearings")
	{
		hearings.POST("", handlers.CreateHearingHandler)
		hearings.GET("", handlers.GetHearingsHandler)
		hearings.GET("/:id", handlers.GetHearingHandler)
		hearings.PATCH("/:id", handlers.UpdateHearingHandler)
		hearings.DELETE("/:id", handlers.DeleteHearingHandler)
	}

	evidence := e.Group("/api/evidence")
	{
		evidence.POST("", handlers.CreateEvidenceHandler)
		evidence.GET("", handlers.GetEvidenceListHandler)
		evidence.GET("/:id", handlers.GetEvidenceHandler)
		evidence.GET("/:id/file", handlers.DownloadEvidenceHandler)
		evidence.PATCH("/:id", handlers.UpdateEvidenceHandler)
		evidence.DELETE("/:id", handlers.DeleteEvidenceHandler)
	}

	payments := e.Group("/api/payments")
	{
		payments.POST("/create-order", handlers.CreateOrderHandler)
		payments.POST("/verify", handlers.VerifyPaymentHandler)
		payments.GET("", handlers.GetPaymentsHandler)
		payments.GET("/:id", handlers.GetPaymentHandler)
		payments.GET("/:id/invoice", handlers.InvoiceHandler)
	}

	// Admin-only; the auth gate rejects other roles before these run
	admin := e.Group("/api/admin")
	{
		admin.GET("/users", handlers.ListUsersHandler)
		admin.GET("/users/:id", handlers.GetUserHandler)
		admin.PATCH("/users/:id", handlers.UpdateUserHandler)
		admin.DELETE("/users/:id", handlers.DeleteUserHandler)
		admin.GET("/stats", handlers.AdminStatsHandler)
		admin.GET("/cases/export", handlers.ExportCasesHandler)
		admin.GET("/security-alerts", handlers.SecurityAlertsHandler)
	}
}
