package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ukbus/internal/config"
	"ukbus/internal/handlers"
	"ukbus/internal/middleware"
	"ukbus/internal/repositories/mongodb"
	"ukbus/internal/services"
	"ukbus/pkg/cache"
	"ukbus/pkg/database"
	"ukbus/pkg/logger"
	"ukbus/pkg/payment"
	"ukbus/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.EnsureIndexes(db.Database); err != nil {
		log.WithError(err).Fatal("failed to ensure MongoDB indexes")
	}

	// Redis is an accelerator, not a dependency; run without it if it is
	// unreachable.
	var cacheService services.CacheService
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
	} else {
		cacheService = redisCache
		defer redisCache.Close()
	}

	// Repositories
	studentRepo := mongodb.NewStudentRepository(db.Database, cacheService)
	driverRepo := mongodb.NewDriverRepository(db.Database)
	adminRepo := mongodb.NewAdminRepository(db.Database)
	transactionRepo := mongodb.NewTransactionRepository(db.Database, cacheService)
	validationRepo := mongodb.NewValidationRepository(db.Database)

	// Payment providers, primary first.
	providers := []payment.Provider{
		payment.NewFedaPayProvider(
			cfg.Payment.FedaPayAPIKey,
			cfg.Payment.FedaPayEnvironment,
			cfg.Payment.WebhookURL,
			cfg.Payment.CallTimeout,
		),
		payment.NewPayGateProvider(cfg.Payment.PayGateAPIKey, cfg.Payment.CallTimeout),
	}

	// Services
	authService := services.NewAuthService(studentRepo, driverRepo, adminRepo, cfg.Security, log)
	studentService := services.NewStudentService(studentRepo, validationRepo)
	driverService := services.NewDriverService(driverRepo, validationRepo)
	adminService := services.NewAdminService(studentRepo, driverRepo, adminRepo, transactionRepo, validationRepo, log)
	ledgerService := services.NewLedgerService(transactionRepo, studentRepo, providers, cfg.Payment, log)
	ticketService := services.NewTicketService(studentRepo, validationRepo, driverRepo, cfg.Payment, log)
	webhookService := services.NewWebhookService(
		ledgerService,
		cfg.Payment.FedaPayWebhookSecret,
		cfg.Payment.WebhookTolerance,
		cacheService,
		log,
	)

	// Handlers
	studentHandler := handlers.NewStudentHandler(authService, studentService, ledgerService, ticketService)
	driverHandler := handlers.NewDriverHandler(authService, driverService)
	adminHandler := handlers.NewAdminHandler(authService, adminService)
	authHandler := handlers.NewAuthHandler(authService)
	validationHandler := handlers.NewValidationHandler(ticketService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, ledgerService, log)
	healthHandler := handlers.NewHealthHandler(db, cfg.App.Version)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())

	allowedOrigin := "*"
	if len(cfg.Security.CORSAllowedOrigins) > 0 {
		allowedOrigin = cfg.Security.CORSAllowedOrigins[0]
	}
	router.Use(middleware.CORSMiddleware(allowedOrigin))

	router.GET("/health", healthHandler.Check)

	api := router.Group("/api/v1")
	routes.SetupAuthRoutes(api, authHandler)
	routes.SetupStudentRoutes(api, studentHandler, cfg.Security.JWTSecret)
	routes.SetupDriverRoutes(api, driverHandler, validationHandler, cfg.Security.JWTSecret)
	routes.SetupAdminRoutes(api, adminHandler, cfg.Security.JWTSecret)
	routes.SetupPaymentRoutes(api, webhookHandler, transactionHandler, cfg.Security.JWTSecret)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("%s listening on port %d", cfg.App.Name, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
