package database

import (
	"eventvenue/internal/bookings"
	"eventvenue/internal/cancellation"
	"eventvenue/internal/events"
	"eventvenue/internal/ledger"
	"eventvenue/internal/seats"
	"eventvenue/internal/settings"
	"eventvenue/internal/venues"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ledger.Account{},
		&ledger.Entry{},
		&ledger.CreditRequest{},
		&ledger.WithdrawalRequest{},
		&venues.Venue{},
		&events.Event{},
		&seats.SeatCategory{},
		&seats.Seat{},
		&settings.SystemSettings{},
		&bookings.Booking{},
		&cancellation.Cancellation{},
	)
}
