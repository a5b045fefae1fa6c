package seats

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatus is the per-seat state machine:
// AVAILABLE -> BOOKED -> AVAILABLE (release), AVAILABLE -> BLOCKED (admin).
// A seat leaves BOOKED only through a release tied to its booking.
type SeatStatus string

const (
	StatusAvailable SeatStatus = "AVAILABLE"
	StatusBooked    SeatStatus = "BOOKED"
	StatusBlocked   SeatStatus = "BLOCKED"
)

// SeatCategory is one pricing band of an event's layout. Categories are
// replaced wholesale when a vendor reconfigures the layout.
type SeatCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	Color       string    `gorm:"size:20;default:'#22c55e'" json:"color"`
	Rows        []string  `gorm:"serializer:json;type:text;not null" json:"rows"`
	SeatsPerRow int       `gorm:"not null;check:seats_per_row > 0" json:"seats_per_row"`
	AisleAfter  []int     `gorm:"serializer:json;type:text" json:"aisle_after,omitempty"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Seat is one bookable unit, unique per (event, row, number). While BOOKED
// it carries the owning booking id; status and back-reference always move
// together.
type Seat struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID    uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_event_row_seat;not null" json:"event_id"`
	CategoryID uuid.UUID  `gorm:"type:uuid;not null" json:"category_id"`
	RowLabel   string     `gorm:"size:5;uniqueIndex:idx_event_row_seat;not null" json:"row_label"`
	SeatNumber int        `gorm:"uniqueIndex:idx_event_row_seat;not null" json:"seat_number"`
	Status     SeatStatus `gorm:"type:varchar(20);default:'AVAILABLE'" json:"status"`
	Price      float64    `gorm:"not null" json:"price"`
	BookingID  *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for SeatCategory
func (SeatCategory) TableName() string {
	return "seat_categories"
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "event_seats"
}

// Key is the stable (row, number) identity a seat keeps across layout
// reconfigurations.
func (s *Seat) Key() string {
	return seatKey(s.RowLabel, s.SeatNumber)
}
