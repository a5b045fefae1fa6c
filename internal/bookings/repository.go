package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventvenue/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error)
	GetByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]Booking, error)
	Update(ctx context.Context, booking *Booking) error

	// ActiveUnitsByEvent sums the ticket quantities held by CONFIRMED
	// quantity bookings, per event. The inventory counter reconciles
	// against it at startup.
	ActiveUnitsByEvent(ctx context.Context) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("booking %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) GetByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) Update(ctx context.Context, booking *Booking) error {
	booking.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) ActiveUnitsByEvent(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		EventID uuid.UUID
		Units   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("event_id, SUM(quantity) AS units").
		Where("status = ? AND target_type = ?", StatusConfirmed, TargetEvent).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	units := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		units[r.EventID] = r.Units
	}
	return units, nil
}
