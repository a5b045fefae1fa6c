package cancellation

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

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}
	userID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := c.service.CancelBooking(ctx.Request.Context(), bookingID, userID, req.Reason)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "data": result})
}

// PreviewRefund handles GET /api/v1/bookings/:id/refund-preview
func (c *Controller) PreviewRefund(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}
	userID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	result, err := c.service.Preview(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": result})
}

// GetMyCancellations handles GET /api/v1/cancellations
func (c *Controller) GetMyCancellations(ctx *gin.Context) {
	userID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	cancellations, err := c.service.GetUserCancellations(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": cancellations})
}

func accountIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
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
	case errors.Is(err, apperr.ErrInternalInconsistency):
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
