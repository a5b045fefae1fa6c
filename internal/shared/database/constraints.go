package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// Balances must never go negative even under concurrent ledger writes
	err := db.Exec(`
		ALTER TABLE point_accounts
		ADD CONSTRAINT IF NOT EXISTS chk_point_accounts_balance_non_negative
		CHECK (balance >= 0);
	`).Error
	if err != nil {
		return err
	}

	// Add index for ledger history queries by account
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_points_history_account_created
		ON points_history (account_id, created_at DESC);
	`).Error
	if err != nil {
		return err
	}

	// Add index for inventory reconciliation queries over active bookings
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_event_status
		ON bookings (event_id, status);
	`).Error
	if err != nil {
		return err
	}

	// Add index for vendor booking listings
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_vendor_created
		ON bookings (vendor_id, created_at DESC);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
