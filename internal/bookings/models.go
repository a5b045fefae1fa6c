package bookings

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// TargetType distinguishes what a booking is for
type TargetType string

const (
	TargetVenue TargetType = "VENUE"
	TargetEvent TargetType = "EVENT"
	TargetSeats TargetType = "SEATS"
)

// PlatformFeePoints is the flat per-booking fee the platform keeps. The fee
// is debited from the buyer but never credited to the vendor.
const PlatformFeePoints int64 = 2

// Booking is the record of a confirmed purchase. PointsUsed is the point
// cost of the booking excluding the platform fee; the fee is stored
// separately so refunds never return it.
type Booking struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingRef string     `gorm:"unique;not null;size:30" json:"booking_ref"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	VendorID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"vendor_id"`
	TargetType TargetType `gorm:"type:varchar(10);not null;check:target_type IN ('VENUE','EVENT','SEATS')" json:"target_type"`

	VenueID *uuid.UUID `gorm:"type:uuid;index" json:"venue_id,omitempty"`
	EventID *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`

	// Quantity is ticket count for EVENT bookings and seat count for SEATS
	// bookings; zero for venue bookings.
	Quantity      int `gorm:"not null;default:0" json:"quantity"`
	DurationHours int `gorm:"not null;default:0" json:"duration_hours"`

	// BookingDate is the day the venue is booked for; the refund policy
	// measures days-until against it for venue bookings.
	BookingDate *time.Time `json:"booking_date,omitempty"`

	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	PointsUsed  int64         `gorm:"not null" json:"points_used"`
	FeePoints   int64         `gorm:"not null" json:"fee_points"`
	Status      BookingStatus `gorm:"type:varchar(20);default:'CONFIRMED';check:status IN ('CONFIRMED','CANCELLED')" json:"status"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`
	RefundAmount       float64    `gorm:"default:0" json:"refund_amount"`
	RefundPercentage   int        `gorm:"default:0" json:"refund_percentage"`
	PointsRefunded     int64      `gorm:"default:0" json:"points_refunded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// IsCancelled checks if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}
