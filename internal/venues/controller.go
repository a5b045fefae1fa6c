package venues

import (
	"errors"
	"net/http"
	"strconv"

	"eventvenue/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateVenue handles POST /api/v1/venues
func (c *Controller) CreateVenue(ctx *gin.Context) {
	idValue, exists := ctx.Get("account_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	vendorID, err := uuid.Parse(idValue.(string))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	var req CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	venue, err := c.service.CreateVenue(ctx.Request.Context(), vendorID, req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Venue created", "data": venue})
}

// GetVenue handles GET /api/v1/venues/:id
func (c *Controller) GetVenue(ctx *gin.Context) {
	venueID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue ID"})
		return
	}

	venue, err := c.service.GetVenue(ctx.Request.Context(), venueID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": venue})
}

// ListVenues handles GET /api/v1/venues
func (c *Controller) ListVenues(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	venues, err := c.service.ListActiveVenues(ctx.Request.Context(), limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": venues})
}
