package events

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
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetEventsByVendor(ctx context.Context, vendorID uuid.UUID) ([]Event, error)
	ListActiveEvents(ctx context.Context, limit, offset int) ([]Event, error)
	ListAllEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, event *Event) error

	// Counter updates are issued only by the inventory counter, which holds
	// the per-event lock while calling these.
	UpdateTicketsAvailable(ctx context.Context, id uuid.UUID, ticketsAvailable int) error
	UpdateCapacity(ctx context.Context, id uuid.UUID, totalTickets, ticketsAvailable int, bookingType BookingType) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetEventsByVendor(ctx context.Context, vendorID uuid.UUID) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) ListActiveEvents(ctx context.Context, limit, offset int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	var events []Event
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_cancelled = ?", true, false).
		Order("event_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *repository) ListAllEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&events).Error
	return events, err
}

func (r *repository) UpdateEvent(ctx context.Context, event *Event) error {
	event.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *repository) UpdateTicketsAvailable(ctx context.Context, id uuid.UUID, ticketsAvailable int) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tickets_available": ticketsAvailable,
			"updated_at":        time.Now(),
		}).Error
}

func (r *repository) UpdateCapacity(ctx context.Context, id uuid.UUID, totalTickets, ticketsAvailable int, bookingType BookingType) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_tickets":     totalTickets,
			"tickets_available": ticketsAvailable,
			"booking_type":      bookingType,
			"updated_at":        time.Now(),
		}).Error
}
