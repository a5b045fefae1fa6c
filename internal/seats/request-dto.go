package seats

// CategoryInput is one pricing band in a layout configuration request
type CategoryInput struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Price       float64  `json:"price" binding:"min=0"`
	Color       string   `json:"color"`
	Rows        []string `json:"rows" binding:"required,min=1"`
	SeatsPerRow int      `json:"seats_per_row" binding:"required,min=1,max=200"`
	AisleAfter  []int    `json:"aisle_after"`
}

// ConfigureLayoutRequest replaces an event's full seat layout
type ConfigureLayoutRequest struct {
	Categories []CategoryInput `json:"categories" binding:"required,min=1,dive"`
}

// HoldSeatsRequest asks for a short-lived advisory hold on seats
type HoldSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required,min=1"`
}

// BlockSeatsRequest takes seats out of sale administratively
type BlockSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required,min=1"`
}
