package cancellation

import (
	"context"
	"errors"
	"fmt"

	"eventvenue/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, cancellation *Cancellation) error
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error)
	GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Cancellation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, cancellation *Cancellation) error {
	return r.db.WithContext(ctx).Create(cancellation).Error
}

func (r *repository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Cancellation, error) {
	var c Cancellation
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cancellation for booking %s: %w", bookingID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Cancellation, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []Cancellation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}
