package cancellation

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCancellationRoutes configures all cancellation-related routes
func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("/:id/cancel", controller.CancelBooking)       // POST /api/v1/bookings/:id/cancel
		bookings.GET("/:id/refund-preview", controller.PreviewRefund) // GET /api/v1/bookings/:id/refund-preview
	}

	cancellations := rg.Group("/cancellations")
	cancellations.Use(middleware.JWTAuth())
	{
		cancellations.GET("", controller.GetMyCancellations) // GET /api/v1/cancellations
	}
}
