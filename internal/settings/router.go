package settings

import (
	"eventvenue/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSettingsRoutes configures the admin settings routes
func SetupSettingsRoutes(rg *gin.RouterGroup, controller *Controller) {
	admin := rg.Group("/admin/settings")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("", controller.GetSettings)                        // GET /api/v1/admin/settings
		admin.PUT("/conversion-rate", controller.UpdateConversionRate) // PUT /api/v1/admin/settings/conversion-rate
	}
}
