// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"eventvenue/internal/bookings"
	"eventvenue/internal/cancellation"
	"eventvenue/internal/events"
	"eventvenue/internal/inventory"
	"eventvenue/internal/ledger"
	"eventvenue/internal/notifications"
	"eventvenue/internal/seats"
	"eventvenue/internal/settings"
	"eventvenue/internal/shared/config"
	"eventvenue/internal/shared/database"
	"eventvenue/internal/shared/middleware"
	"eventvenue/internal/shared/utils/response"
	"eventvenue/internal/venues"
	"eventvenue/pkg/cache"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher *notifications.Publisher

	// Shared services, populated in dependency order during SetupRoutes.
	cacheService    cache.Service
	ledgerService   ledger.Service
	eventRepo       events.Repository
	eventService    events.Service
	venueRepo       venues.Repository
	settingsService settings.Service
	seatService     seats.Service
	seatHolds       *seats.HoldStore
	counter         inventory.Counter
	bookingRepo     bookings.Repository
	bookingService  bookings.Service
}

// NewRouter creates a new router instance. The publisher is optional; pass
// nil to run without the notification pipeline.
func NewRouter(cfg *config.Config, db *database.DB, publisher *notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// InventoryCounter exposes the quantity counter for startup reconciliation.
// Valid only after SetupRoutes has run.
func (r *Router) InventoryCounter() inventory.Counter {
	return r.counter
}

// SeatHolds exposes the Redis hold store for script preloading.
// Valid only after SetupRoutes has run.
func (r *Router) SeatHolds() *seats.HoldStore {
	return r.seatHolds
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.Redis)
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupLedgerRoutes(api)
		r.setupVenueRoutes(api)
		r.setupEventRoutes(api)
		r.setupSettingsRoutes(api)
		r.setupSeatRoutes(api)
		r.setupBookingRoutes(api)
		r.setupCancellationRoutes(api)
		r.setupInventoryRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "eventvenue-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "eventvenue-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupLedgerRoutes configures points ledger routes
func (r *Router) setupLedgerRoutes(rg *gin.RouterGroup) {
	ledgerRepo := ledger.NewRepository(r.db.GetPostgreSQL())
	r.ledgerService = ledger.NewService(ledgerRepo)
	ledgerController := ledger.NewController(r.ledgerService)

	ledger.SetupLedgerRoutes(rg, ledgerController)
}

// setupVenueRoutes configures venue management routes
func (r *Router) setupVenueRoutes(rg *gin.RouterGroup) {
	r.venueRepo = venues.NewRepository(r.db.GetPostgreSQL())
	venueService := venues.NewService(r.venueRepo)
	venueController := venues.NewController(venueService)

	venues.SetupVenueRoutes(rg, venueController)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	r.eventRepo = events.NewRepository(r.db.GetPostgreSQL())
	r.eventService = events.NewService(r.eventRepo, r.cacheService)
	eventController := events.NewController(r.eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupSettingsRoutes configures platform settings routes
func (r *Router) setupSettingsRoutes(rg *gin.RouterGroup) {
	settingsRepo := settings.NewRepository(r.db.GetPostgreSQL())
	r.settingsService = settings.NewService(settingsRepo, r.db.Redis)
	settingsController := settings.NewController(r.settingsService)

	settings.SetupSettingsRoutes(rg, settingsController)
}

// setupSeatRoutes configures seat layout and reservation routes
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	seatRepo := seats.NewRepository(r.db.GetPostgreSQL())
	r.seatHolds = seats.NewHoldStore(r.db.Redis)
	r.seatService = seats.NewService(seatRepo, seats.NewEventStoreAdapter(r.eventRepo), r.seatHolds)
	seatController := seats.NewController(r.seatService, r.seatHolds)

	seats.SetupSeatRoutes(rg, seatController)
}

// setupBookingRoutes configures the booking transaction coordinator routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	r.bookingRepo = bookings.NewRepository(r.db.GetPostgreSQL())
	r.counter = inventory.NewCounter(r.eventRepo, r.bookingRepo)

	var notifier bookings.Notifier
	if r.publisher != nil {
		notifier = r.publisher
	}
	r.bookingService = bookings.NewService(
		r.bookingRepo,
		r.ledgerService,
		r.settingsService,
		r.counter,
		r.seatService,
		r.eventRepo,
		r.venueRepo,
		notifier,
	)
	bookingController := bookings.NewController(r.bookingService)

	bookings.SetupBookingRoutes(rg, bookingController)
}

// setupCancellationRoutes configures cancellation and refund routes
func (r *Router) setupCancellationRoutes(rg *gin.RouterGroup) {
	cancellationRepo := cancellation.NewRepository(r.db.GetPostgreSQL())

	var notifier cancellation.Notifier
	if r.publisher != nil {
		notifier = r.publisher
	}
	cancellationService := cancellation.NewService(
		cancellationRepo,
		r.bookingRepo,
		r.eventRepo,
		r.ledgerService,
		r.counter,
		r.seatService,
		notifier,
	)
	cancellationController := cancellation.NewController(cancellationService)

	cancellation.SetupCancellationRoutes(rg, cancellationController)
}

// setupInventoryRoutes exposes the admin reconciliation endpoint
func (r *Router) setupInventoryRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/inventory")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/reconcile", func(c *gin.Context) {
			if err := r.counter.Reconcile(c.Request.Context()); err != nil {
				response.RespondJSON(c, "error", http.StatusInternalServerError,
					"inventory reconciliation failed", nil, gin.H{"error": err.Error()})
				return
			}
			response.RespondJSON(c, "success", http.StatusOK,
				"inventory reconciled", nil, nil)
		})
	}
}
