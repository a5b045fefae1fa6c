package venues

import (
	"time"

	"github.com/google/uuid"
)

// Venue is a vendor-owned space booked by the hour.
type Venue struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID     uuid.UUID `gorm:"type:uuid;index;not null" json:"vendor_id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Address      string    `gorm:"not null;size:500" json:"address"`
	Capacity     int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	PricePerHour float64   `gorm:"not null;check:price_per_hour >= 0" json:"price_per_hour"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the table name for Venue
func (Venue) TableName() string {
	return "venues"
}

// CreateVenueRequest represents the payload for creating a venue
type CreateVenueRequest struct {
	Name         string  `json:"name" binding:"required,min=3,max=255"`
	Description  string  `json:"description" binding:"max=2000"`
	Address      string  `json:"address" binding:"required,min=5,max=500"`
	Capacity     int     `json:"capacity" binding:"required,min=1"`
	PricePerHour float64 `json:"price_per_hour" binding:"min=0"`
}
