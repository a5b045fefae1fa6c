package settings

import (
	"time"

	"github.com/google/uuid"
)

// SystemSettings is the single admin-managed configuration row. The
// conversion rate is how many points one currency unit buys; it is read at
// booking time, so a change never retroactively affects existing bookings.
type SystemSettings struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PointsPerCurrencyUnit int       `gorm:"not null;default:1;check:points_per_currency_unit >= 1" json:"points_per_currency_unit"`
	UpdatedBy             *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName sets the table name for SystemSettings
func (SystemSettings) TableName() string {
	return "system_settings"
}

// UpdateConversionRateRequest represents an admin changing the rate
type UpdateConversionRateRequest struct {
	PointsPerCurrencyUnit int `json:"points_per_currency_unit" binding:"required,min=1"`
}
