package events

import (
	"time"

	"github.com/google/uuid"
)

// BookingType distinguishes counter-based events from seated ones.
type BookingType string

const (
	BookingTypeQuantity      BookingType = "QUANTITY"
	BookingTypeSeatSelection BookingType = "SEAT_SELECTION"
)

// Event is a vendor's ticketed happening. TicketsAvailable is the quantity
// counter: it must always equal TotalTickets minus the units held by active
// bookings, and is mutated only through the inventory counter.
type Event struct {
	ID               uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID         uuid.UUID   `gorm:"type:uuid;index;not null" json:"vendor_id"`
	Name             string      `gorm:"not null;size:255" json:"name"`
	Description      string      `gorm:"type:text" json:"description"`
	Category         string      `gorm:"size:100" json:"category"`
	EventDate        time.Time   `gorm:"not null" json:"event_date"`
	Location         string      `gorm:"not null;size:255" json:"location"`
	PricePerTicket   float64     `gorm:"not null;check:price_per_ticket >= 0" json:"price_per_ticket"`
	TotalTickets     int         `gorm:"not null;check:total_tickets >= 0" json:"total_tickets"`
	TicketsAvailable int         `gorm:"not null;check:tickets_available >= 0" json:"tickets_available"`
	BookingType      BookingType `gorm:"type:varchar(20);default:'QUANTITY'" json:"booking_type"`
	IsActive         bool        `gorm:"default:true" json:"is_active"`

	// Vendor-side cancellation and reschedule flags; these drive the refund
	// percentage when a user cancels in response.
	IsCancelled       bool       `gorm:"default:false" json:"is_cancelled"`
	WasRescheduled    bool       `gorm:"default:false" json:"was_rescheduled"`
	RescheduleCount   int        `gorm:"default:0" json:"reschedule_count"`
	RescheduleReason  string     `gorm:"type:text" json:"reschedule_reason,omitempty"`
	OriginalEventDate *time.Time `json:"original_event_date,omitempty"`
	LastRescheduledAt *time.Time `json:"last_rescheduled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Event
func (Event) TableName() string {
	return "events"
}

// CreateEventRequest represents the payload for creating an event
type CreateEventRequest struct {
	Name           string    `json:"name" binding:"required,min=3,max=255"`
	Description    string    `json:"description" binding:"max=2000"`
	Category       string    `json:"category" binding:"max=100"`
	EventDate      time.Time `json:"event_date" binding:"required"`
	Location       string    `json:"location" binding:"required,min=3,max=255"`
	PricePerTicket float64   `json:"price_per_ticket" binding:"min=0"`
	TotalTickets   int       `json:"total_tickets" binding:"required,min=1,max=100000"`
}

// RescheduleEventRequest represents a vendor moving an event
type RescheduleEventRequest struct {
	NewDate time.Time `json:"new_date" binding:"required"`
	Reason  string    `json:"reason" binding:"required,min=5,max=500"`
}
