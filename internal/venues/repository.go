package venues

import (
	"context"
	"errors"
	"fmt"

	"eventvenue/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateVenue(ctx context.Context, venue *Venue) error
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	GetVenuesByVendor(ctx context.Context, vendorID uuid.UUID) ([]Venue, error)
	ListActiveVenues(ctx context.Context, limit, offset int) ([]Venue, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateVenue(ctx context.Context, venue *Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *repository) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&venue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("venue %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repository) GetVenuesByVendor(ctx context.Context, vendorID uuid.UUID) ([]Venue, error) {
	var venues []Venue
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&venues).Error
	return venues, err
}

func (r *repository) ListActiveVenues(ctx context.Context, limit, offset int) ([]Venue, error) {
	if limit <= 0 {
		limit = 20
	}
	var venues []Venue
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&venues).Error
	return venues, err
}
