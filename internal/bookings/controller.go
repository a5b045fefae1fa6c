package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"eventvenue/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	target, err := targetFromRequest(req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, target)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Booking confirmed", "data": toBookingResponse(booking)})
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}
	userID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if booking.UserID != userID && booking.VendorID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Booking does not belong to you"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": toBookingResponse(booking)})
}

// GetMyBookings handles GET /api/v1/bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	userID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(ctx, err)
		return
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{"data": out})
}

// GetVendorBookings handles GET /api/v1/vendor/bookings
func (c *Controller) GetVendorBookings(ctx *gin.Context) {
	vendorID, ok := accountIDFromContext(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	bookings, err := c.service.GetVendorBookings(ctx.Request.Context(), vendorID, limit, offset)
	if err != nil {
		respondError(ctx, err)
		return
	}

	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{"data": out})
}

func targetFromRequest(req CreateBookingRequest) (Target, error) {
	target := Target{Type: TargetType(req.TargetType)}

	switch target.Type {
	case TargetVenue:
		venueID, err := uuid.Parse(req.VenueID)
		if err != nil {
			return Target{}, errors.New("venue_id is required and must be a UUID")
		}
		if req.BookingDate == nil {
			return Target{}, errors.New("booking_date is required for venue bookings")
		}
		target.VenueID = venueID
		target.DurationHours = req.DurationHours
		target.BookingDate = *req.BookingDate

	case TargetEvent:
		eventID, err := uuid.Parse(req.EventID)
		if err != nil {
			return Target{}, errors.New("event_id is required and must be a UUID")
		}
		target.EventID = eventID
		target.Quantity = req.Quantity

	case TargetSeats:
		eventID, err := uuid.Parse(req.EventID)
		if err != nil {
			return Target{}, errors.New("event_id is required and must be a UUID")
		}
		target.EventID = eventID
		for _, raw := range req.SeatIDs {
			seatID, err := uuid.Parse(raw)
			if err != nil {
				return Target{}, errors.New("seat_ids must be UUIDs")
			}
			target.SeatIDs = append(target.SeatIDs, seatID)
		}
	}
	return target, nil
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
	case errors.Is(err, apperr.ErrInsufficientBalance):
		ctx.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrSeatUnavailable),
		errors.Is(err, apperr.ErrInsufficientInventory),
		errors.Is(err, apperr.ErrInvalidState):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInternalInconsistency):
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
