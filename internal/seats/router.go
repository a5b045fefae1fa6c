package seats

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSeatRoutes configures all seat-related routes
func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public layout browsing
	rg.GET("/events/:id/seats/layout", controller.GetLayout) // GET /api/v1/events/:id/seats/layout

	// Buyer operations
	user := rg.Group("")
	user.Use(middleware.JWTAuth())
	{
		user.POST("/events/:id/seats/hold", controller.HoldSeats)  // POST /api/v1/events/:id/seats/hold
		user.DELETE("/seats/holds/:holdId", controller.ReleaseHold) // DELETE /api/v1/seats/holds/:holdId
	}

	// Vendor layout management
	vendor := rg.Group("")
	vendor.Use(middleware.JWTAuth(), middleware.RequireRoles("VENDOR", "ADMIN"))
	{
		vendor.PUT("/events/:id/seats/layout", controller.ConfigureLayout) // PUT /api/v1/events/:id/seats/layout
		vendor.POST("/events/:id/seats/block", controller.BlockSeats)      // POST /api/v1/events/:id/seats/block
	}
}
