package venues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service interface defines the contract for venue business logic
type Service interface {
	CreateVenue(ctx context.Context, vendorID uuid.UUID, req CreateVenueRequest) (*Venue, error)
	GetVenue(ctx context.Context, venueID uuid.UUID) (*Venue, error)
	GetVendorVenues(ctx context.Context, vendorID uuid.UUID) ([]Venue, error)
	ListActiveVenues(ctx context.Context, limit, offset int) ([]Venue, error)
}

type service struct {
	repo Repository
}

// NewService creates a new venue service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateVenue(ctx context.Context, vendorID uuid.UUID, req CreateVenueRequest) (*Venue, error) {
	venue := &Venue{
		ID:           uuid.New(),
		VendorID:     vendorID,
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
		IsActive:     true,
	}
	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}
	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, venueID uuid.UUID) (*Venue, error) {
	return s.repo.GetVenueByID(ctx, venueID)
}

func (s *service) GetVendorVenues(ctx context.Context, vendorID uuid.UUID) ([]Venue, error) {
	return s.repo.GetVenuesByVendor(ctx, vendorID)
}

func (s *service) ListActiveVenues(ctx context.Context, limit, offset int) ([]Venue, error) {
	return s.repo.ListActiveVenues(ctx, limit, offset)
}
