package bookings

import "time"

// CreateBookingRequest selects a booking target. Exactly one shape applies
// depending on target_type; the service validates the combination.
type CreateBookingRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=VENUE EVENT SEATS" validate:"required,oneof=VENUE EVENT SEATS"`

	VenueID       string     `json:"venue_id,omitempty"`
	DurationHours int        `json:"duration_hours,omitempty" binding:"omitempty,min=1,max=168" validate:"omitempty,min=1,max=168"`
	BookingDate   *time.Time `json:"booking_date,omitempty"`

	EventID  string `json:"event_id,omitempty"`
	Quantity int    `json:"quantity,omitempty" binding:"omitempty,min=1,max=100" validate:"omitempty,min=1,max=100"`

	SeatIDs []string `json:"seat_ids,omitempty" binding:"omitempty,max=20" validate:"omitempty,max=20"`
}
