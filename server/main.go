package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventvenue/api/routes"
	"eventvenue/internal/notifications"
	"eventvenue/internal/shared/config"
	"eventvenue/internal/shared/database"
	"eventvenue/pkg/logger"
	"eventvenue/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load environment variables
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		// Check if we're in production/container mode
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:                 cfg.RateLimit.Enabled,
			WindowDuration:          cfg.RateLimit.WindowDuration,
			DefaultRequests:         cfg.RateLimit.DefaultRequests,
			PublicRequests:          cfg.RateLimit.PublicRequests,
			BookingRequests:         cfg.RateLimit.BookingRequests,
			BookingCriticalRequests: cfg.RateLimit.BookingCriticalRequests,
			LedgerRequests:          cfg.RateLimit.LedgerRequests,
			AdminRequests:           cfg.RateLimit.AdminRequests,
			HealthRequests:          cfg.RateLimit.HealthRequests,
			WhitelistedIPs:          cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Notification pipeline: Kafka producer for publishing, consumer group
	// for delivery. Both optional; bookings go through without them.
	var (
		publisher *notifications.Publisher
		producer  notifications.Producer
		consumer  notifications.Consumer
	)
	if cfg.Kafka.Enabled {
		producerConfig := notifications.DefaultProducerConfig()
		producerConfig.Brokers = cfg.Kafka.Brokers
		producerConfig.Topic = cfg.Kafka.Topic

		producer, err = notifications.NewKafkaProducer(producerConfig)
		if err != nil {
			appLogger.Error("Failed to initialize notification producer", slog.Any("error", err))
			appLogger.Info("Continuing without notification publishing")
		} else {
			publisher = notifications.NewPublisher(producer)
			defer producer.Close()
		}

		sender, senderErr := notifications.NewSMTPSender(notifications.NewSMTPConfigFromEnv())
		if senderErr != nil {
			appLogger.Error("Failed to initialize email sender", slog.Any("error", senderErr))
		} else {
			consumerConfig := notifications.DefaultConsumerConfig()
			consumerConfig.Brokers = cfg.Kafka.Brokers
			consumerConfig.Topics = []string{cfg.Kafka.Topic}
			consumerConfig.GroupID = cfg.Kafka.GroupID

			consumer, err = notifications.NewKafkaConsumer(consumerConfig, sender)
			if err != nil {
				appLogger.Error("Failed to initialize notification consumer", slog.Any("error", err))
			} else {
				if err := consumer.Start(context.Background()); err != nil {
					appLogger.Error("Failed to start notification consumer", slog.Any("error", err))
				} else {
					appLogger.Info("Notification consumer started", slog.String("group", cfg.Kafka.GroupID))
					defer func() {
						appLogger.Info("Stopping notification consumer...")
						if err := consumer.Stop(); err != nil {
							appLogger.Error("Error stopping notification consumer", slog.Any("error", err))
						}
					}()
				}
			}
		}
	} else {
		appLogger.Info("Kafka disabled, notifications will not be published")
	}

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, publisher)
	router := setupRouter(appRouter, rateLimiter)

	// Redis Lua scripts for atomic seat holds (loaded up front so the first
	// reservation does not pay the compile cost)
	if db.Redis != nil && appRouter.SeatHolds() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := appRouter.SeatHolds().PreloadScripts(ctx); err != nil {
			appLogger.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
			// Continue without failing - scripts will be loaded on first use
		} else {
			appLogger.Info("Redis Lua scripts preloaded for atomic seat holds")
		}
		cancel()
	}

	// Repair the quantity counters against confirmed bookings before
	// accepting traffic
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := appRouter.InventoryCounter().Reconcile(ctx); err != nil {
			appLogger.Error("Inventory reconciliation failed", slog.Any("error", err))
		} else {
			appLogger.Info("Inventory counters reconciled")
		}
		cancel()
	}

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", (db.Redis != nil)),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("notifications", publisher != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
