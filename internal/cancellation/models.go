package cancellation

import (
	"time"

	"github.com/google/uuid"
)

// Cancellation is the audit record of a processed cancellation. The
// booking row carries the authoritative refund stamps; this table keeps
// the full breakdown including what the vendor actually repaid.
type Cancellation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	VendorID  uuid.UUID `gorm:"type:uuid;index;not null" json:"vendor_id"`

	Reason string      `gorm:"type:text" json:"reason"`
	Cause  RefundCause `gorm:"type:varchar(30);not null" json:"cause"`

	RefundPercentage int     `gorm:"not null" json:"refund_percentage"`
	RefundAmount     float64 `gorm:"not null" json:"refund_amount"`
	PointsRefunded   int64   `gorm:"not null" json:"points_refunded"`

	// VendorDebited can be less than PointsRefunded when the vendor's
	// balance could not cover the full clawback.
	VendorDebited int64 `gorm:"not null" json:"vendor_debited"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for Cancellation
func (Cancellation) TableName() string {
	return "cancellations"
}

// CancelBookingRequest carries the user's stated reason
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=5,max=500"`
}

// CancellationResult is returned to the caller after a successful cancel
type CancellationResult struct {
	BookingID        uuid.UUID   `json:"booking_id"`
	Cause            RefundCause `json:"cause"`
	RefundPercentage int         `json:"refund_percentage"`
	RefundAmount     float64     `json:"refund_amount"`
	PointsRefunded   int64       `json:"points_refunded"`
	CancelledAt      time.Time   `json:"cancelled_at"`
}
