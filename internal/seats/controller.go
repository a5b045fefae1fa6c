package seats

import (
	"errors"
	"net/http"

	"eventvenue/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	holds   *HoldStore
}

func NewController(service Service, holds *HoldStore) *Controller {
	return &Controller{service: service, holds: holds}
}

// ConfigureLayout handles PUT /api/v1/events/:id/seats/layout
func (c *Controller) ConfigureLayout(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req ConfigureLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := c.service.ConfigureLayout(ctx.Request.Context(), eventID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Seat layout configured", "data": result})
}

// GetLayout handles GET /api/v1/events/:id/seats/layout
func (c *Controller) GetLayout(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	layout, err := c.service.Layout(ctx.Request.Context(), eventID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": layout})
}

// HoldSeats handles POST /api/v1/events/:id/seats/hold
func (c *Controller) HoldSeats(ctx *gin.Context) {
	if c.holds == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Seat holds are unavailable"})
		return
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	idValue, exists := ctx.Get("account_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, err := uuid.Parse(idValue.(string))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	var req HoldSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holdID, err := c.holds.Hold(ctx.Request.Context(), userID, eventID, seatIDs, HoldTTL)
	if err != nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": HoldResponse{
		HoldID:     holdID,
		SeatIDs:    req.SeatIDs,
		TTLSeconds: int(HoldTTL.Seconds()),
	}})
}

// ReleaseHold handles DELETE /api/v1/seats/holds/:holdId
func (c *Controller) ReleaseHold(ctx *gin.Context) {
	if c.holds == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Seat holds are unavailable"})
		return
	}

	if err := c.holds.Release(ctx.Request.Context(), ctx.Param("holdId")); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Hold released"})
}

// BlockSeats handles POST /api/v1/events/:id/seats/block
func (c *Controller) BlockSeats(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req BlockSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.service.BlockSeats(ctx.Request.Context(), eventID, seatIDs); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Seats blocked"})
}

func parseSeatIDs(input []string) ([]uuid.UUID, error) {
	seatIDs := make([]uuid.UUID, 0, len(input))
	for _, raw := range input {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.New("invalid seat ID: " + raw)
		}
		seatIDs = append(seatIDs, id)
	}
	return seatIDs, nil
}

func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrSeatUnavailable):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInventoryMismatch), errors.Is(err, apperr.ErrInvalidState):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
