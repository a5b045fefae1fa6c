package events

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

// CreateEvent handles POST /api/v1/events
func (c *Controller) CreateEvent(ctx *gin.Context) {
	vendorID, ok := vendorIDFromContext(ctx)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	event, err := c.service.CreateEvent(ctx.Request.Context(), vendorID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Event created", "data": event})
}

// GetEvent handles GET /api/v1/events/:id
func (c *Controller) GetEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	event, err := c.service.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

// ListEvents handles GET /api/v1/events
func (c *Controller) ListEvents(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	events, err := c.service.ListActiveEvents(ctx.Request.Context(), limit, offset)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": events})
}

// GetVendorEvents handles GET /api/v1/vendors/events
func (c *Controller) GetVendorEvents(ctx *gin.Context) {
	vendorID, ok := vendorIDFromContext(ctx)
	if !ok {
		return
	}

	events, err := c.service.GetVendorEvents(ctx.Request.Context(), vendorID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": events})
}

// CancelEvent handles POST /api/v1/events/:id/cancel
func (c *Controller) CancelEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}
	vendorID, ok := vendorIDFromContext(ctx)
	if !ok {
		return
	}

	event, err := c.service.CancelEvent(ctx.Request.Context(), vendorID, eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Event cancelled", "data": event})
}

// RescheduleEvent handles POST /api/v1/events/:id/reschedule
func (c *Controller) RescheduleEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}
	vendorID, ok := vendorIDFromContext(ctx)
	if !ok {
		return
	}

	var req RescheduleEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	event, err := c.service.RescheduleEvent(ctx.Request.Context(), vendorID, eventID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Event rescheduled", "data": event})
}

func vendorIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	idValue, exists := ctx.Get("account_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	idStr, ok := idValue.(string)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid account ID format"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
