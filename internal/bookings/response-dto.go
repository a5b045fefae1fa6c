package bookings

import "time"

// BookingResponse is the confirmation payload with the points breakdown
type BookingResponse struct {
	ID            string     `json:"id"`
	BookingRef    string     `json:"booking_ref"`
	TargetType    TargetType `json:"target_type"`
	VenueID       string     `json:"venue_id,omitempty"`
	EventID       string     `json:"event_id,omitempty"`
	Quantity      int        `json:"quantity,omitempty"`
	DurationHours int        `json:"duration_hours,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	PointsUsed    int64      `json:"points_used"`
	FeePoints     int64      `json:"fee_points"`
	TotalPoints   int64      `json:"total_points"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID.String(),
		BookingRef:    b.BookingRef,
		TargetType:    b.TargetType,
		Quantity:      b.Quantity,
		DurationHours: b.DurationHours,
		TotalAmount:   b.TotalAmount,
		PointsUsed:    b.PointsUsed,
		FeePoints:     b.FeePoints,
		TotalPoints:   b.PointsUsed + b.FeePoints,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
	if b.VenueID != nil {
		resp.VenueID = b.VenueID.String()
	}
	if b.EventID != nil {
		resp.EventID = b.EventID.String()
	}
	return resp
}
