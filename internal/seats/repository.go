package seats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetCategories(ctx context.Context, eventID uuid.UUID) ([]SeatCategory, error)
	GetSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error)
	GetSeatsByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error)
	GetSeatsByBooking(ctx context.Context, bookingID uuid.UUID) ([]Seat, error)
	GetBookedSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error)

	// UpdateSeats persists a batch of status flips in one transaction, so a
	// multi-seat reservation commits all-or-nothing.
	UpdateSeats(ctx context.Context, seats []*Seat) error

	// ReplaceLayout swaps categories and non-booked seats in one
	// transaction, keeping (and updating) the given booked seats.
	ReplaceLayout(ctx context.Context, eventID uuid.UUID, categories []*SeatCategory, newSeats []*Seat, keptBooked []*Seat) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCategories(ctx context.Context, eventID uuid.UUID) ([]SeatCategory, error) {
	var categories []SeatCategory
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC").
		Find(&categories).Error
	return categories, err
}

func (r *repository) GetSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("row_label ASC, seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByBooking(ctx context.Context, bookingID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetBookedSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, StatusBooked).
		Find(&seats).Error
	return seats, err
}

func (r *repository) UpdateSeats(ctx context.Context, seats []*Seat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, seat := range seats {
			seat.UpdatedAt = now
			if err := tx.Save(seat).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ReplaceLayout(ctx context.Context, eventID uuid.UUID, categories []*SeatCategory, newSeats []*Seat, keptBooked []*Seat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Only non-booked seats may be dropped; booked ones are preserved.
		if err := tx.Where("event_id = ? AND status <> ?", eventID, StatusBooked).
			Delete(&Seat{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).
			Delete(&SeatCategory{}).Error; err != nil {
			return err
		}
		for _, category := range categories {
			if err := tx.Create(category).Error; err != nil {
				return err
			}
		}
		for _, seat := range newSeats {
			if err := tx.Create(seat).Error; err != nil {
				return err
			}
		}
		now := time.Now()
		for _, seat := range keptBooked {
			seat.UpdatedAt = now
			if err := tx.Save(seat).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
