package bookings

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)    // POST /api/v1/bookings
		bookings.GET("", controller.GetMyBookings)     // GET /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)    // GET /api/v1/bookings/:id
	}

	vendor := rg.Group("/vendor/bookings")
	vendor.Use(middleware.JWTAuth(), middleware.RequireVendor())
	{
		vendor.GET("", controller.GetVendorBookings) // GET /api/v1/vendor/bookings
	}
}
