package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/handlers"
	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/notifications"
	"github.com/SAP-F-2025/course-service/internal/payments"
	"github.com/SAP-F-2025/course-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
	"github.com/SAP-F-2025/course-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	m := metrics.New()

	// Event bus: Kafka when brokers are configured, in-process otherwise
	bus, err := events.NewBus(cfg.Kafka, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}
	publisher := events.NewAsyncPublisher(events.NewWatermillPublisher(bus.Publisher, slogLogger), slogLogger, events.AsyncPublisherConfig{
		OnDrop: func(event *events.Event, reason string) {
			m.NotificationDropped(reason)
		},
	})

	// Notification consumer
	renderer, err := notifications.NewRenderer(cfg.FrontendURL)
	if err != nil {
		log.Fatalf("Failed to load notification templates: %v", err)
	}
	consumer := notifications.NewConsumer(notifications.NewMailer(cfg.Mail, slogLogger), renderer, slogLogger, m.NotificationFailed)
	notificationRouter, err := notifications.NewRouter(consumer, bus.Subscriber, bus.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize notification router: %v", err)
	}
	go func() {
		if err := notificationRouter.Run(context.Background()); err != nil {
			logger.Error("Notification router stopped", "error", err)
		}
	}()

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(services.Dependencies{
		DB:        db,
		Repo:      repoManager.GetRepository(),
		Cache:     cache.NewCacheManager(redisClient),
		Logger:    slogLogger,
		Validator: validator,
		Publisher: publisher,
		Oracle:    payments.NewStripeOracle(cfg.Stripe, slogLogger),
		Metrics:   m,
	}, services.ServiceManagerConfig{
		CertificatePrefix: cfg.CertificatePrefix,
		Currency:          cfg.Stripe.Currency,
		FrontendURL:       cfg.FrontendURL,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	casdoorClient := handlers.NewCasdoorClient(cfg.Casdoor)
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, casdoorClient, cfg.RateLimit, m)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg, m)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "kafka", cfg.Kafka.Enabled())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Flush pending events before the consumer stops
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if err := notificationRouter.Close(); err != nil {
		logger.Error("Failed to close notification router", "error", err)
	}
	if err := bus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	// Close database and Redis connections
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
}
