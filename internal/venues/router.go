package venues

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupVenueRoutes configures all venue-related routes
func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller) {
	public := rg.Group("/venues")
	{
		public.GET("", controller.ListVenues)   // GET /api/v1/venues
		public.GET("/:id", controller.GetVenue) // GET /api/v1/venues/:id
	}

	vendor := rg.Group("/venues")
	vendor.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendor.POST("", controller.CreateVenue) // POST /api/v1/venues
	}
}
