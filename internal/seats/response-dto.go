package seats

// LayoutResponse is the full seat map for display
type LayoutResponse struct {
	Categories []SeatCategory `json:"categories"`
	Seats      []Seat         `json:"seats"`
}

// ConfigureLayoutResult reports the outcome of a layout replacement.
// Warnings list booked seats the new layout no longer covers; they keep
// their prior category and price rather than failing the operation.
type ConfigureLayoutResult struct {
	TotalSeats     int      `json:"total_seats"`
	BookedSeats    int      `json:"booked_seats"`
	AvailableSeats int      `json:"available_seats"`
	Warnings       []string `json:"warnings,omitempty"`
}

// HoldResponse describes an advisory TTL hold
type HoldResponse struct {
	HoldID     string   `json:"hold_id"`
	SeatIDs    []string `json:"seat_ids"`
	TTLSeconds int      `json:"ttl_seconds"`
}
