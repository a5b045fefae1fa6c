package events

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes configures all event-related routes
func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public browsing
	public := rg.Group("/events")
	{
		public.GET("", controller.ListEvents)    // GET /api/v1/events
		public.GET("/:id", controller.GetEvent)  // GET /api/v1/events/:id
	}

	// Vendor management
	vendor := rg.Group("/events")
	vendor.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendor.POST("", controller.CreateEvent)                    // POST /api/v1/events
		vendor.POST("/:id/cancel", controller.CancelEvent)         // POST /api/v1/events/:id/cancel
		vendor.POST("/:id/reschedule", controller.RescheduleEvent) // POST /api/v1/events/:id/reschedule
	}

	vendors := rg.Group("/vendors")
	vendors.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendors.GET("/events", controller.GetVendorEvents) // GET /api/v1/vendors/events
	}
}
