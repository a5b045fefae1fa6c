package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetSettings handles GET /api/v1/admin/settings
func (c *Controller) GetSettings(ctx *gin.Context) {
	settings, err := c.service.Get(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateConversionRate handles PUT /api/v1/admin/settings/conversion-rate
func (c *Controller) UpdateConversionRate(ctx *gin.Context) {
	idValue, exists := ctx.Get("account_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	adminID, err := uuid.Parse(idValue.(string))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	var req UpdateConversionRateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	settings, err := c.service.UpdateConversionRate(ctx.Request.Context(), adminID, req.PointsPerCurrencyUnit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Conversion rate updated", "data": settings})
}
