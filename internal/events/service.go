package events

import (
	"context"
	"fmt"
	"time"

	"eventvenue/internal/shared/apperr"
	"eventvenue/internal/shared/constants"
	"eventvenue/pkg/cache"
	"eventvenue/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for event business logic
type Service interface {
	CreateEvent(ctx context.Context, vendorID uuid.UUID, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*Event, error)
	GetVendorEvents(ctx context.Context, vendorID uuid.UUID) ([]Event, error)
	ListActiveEvents(ctx context.Context, limit, offset int) ([]Event, error)

	// CancelEvent marks the event vendor-cancelled; user cancellations of
	// bookings on it then refund 100%.
	CancelEvent(ctx context.Context, vendorID, eventID uuid.UUID) (*Event, error)

	// RescheduleEvent moves the event date and flags it rescheduled; user
	// cancellations in response refund 95%.
	RescheduleEvent(ctx context.Context, vendorID, eventID uuid.UUID, req RescheduleEventRequest) (*Event, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

// NewService creates a new event service instance. The cache is optional;
// pass nil to serve every read from the database.
func NewService(repo Repository, cacheSvc cache.Service) Service {
	return &service{repo: repo, cache: cacheSvc, log: logger.GetDefault()}
}

func (s *service) CreateEvent(ctx context.Context, vendorID uuid.UUID, req CreateEventRequest) (*Event, error) {
	event := &Event{
		ID:               uuid.New(),
		VendorID:         vendorID,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		EventDate:        req.EventDate,
		Location:         req.Location,
		PricePerTicket:   req.PricePerTicket,
		TotalTickets:     req.TotalTickets,
		TicketsAvailable: req.TotalTickets,
		BookingType:      BookingTypeQuantity,
		IsActive:         true,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.invalidateListings(ctx)
	s.log.LogEventCreated(ctx, event.ID.String(), vendorID.String())
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, eventID uuid.UUID) (*Event, error) {
	if s.cache == nil {
		return s.repo.GetEventByID(ctx, eventID)
	}

	var event Event
	err := s.cache.GetOrSet(ctx, constants.BuildEventDetailKey(eventID.String()), constants.TTL_EVENT_DETAIL,
		func() (interface{}, error) {
			return s.repo.GetEventByID(ctx, eventID)
		}, &event)
	if err != nil {
		// GetOrSet wraps fetcher failures; fall back to the repository so
		// sentinel errors reach the caller unwrapped.
		return s.repo.GetEventByID(ctx, eventID)
	}
	return &event, nil
}

func (s *service) GetVendorEvents(ctx context.Context, vendorID uuid.UUID) ([]Event, error) {
	return s.repo.GetEventsByVendor(ctx, vendorID)
}

func (s *service) ListActiveEvents(ctx context.Context, limit, offset int) ([]Event, error) {
	if s.cache == nil {
		return s.repo.ListActiveEvents(ctx, limit, offset)
	}

	var events []Event
	key := constants.BuildEventListKey(offset/max(limit, 1), limit)
	err := s.cache.GetOrSet(ctx, key, constants.TTL_EVENT_LIST,
		func() (interface{}, error) {
			return s.repo.ListActiveEvents(ctx, limit, offset)
		}, &events)
	if err != nil {
		return s.repo.ListActiveEvents(ctx, limit, offset)
	}
	return events, nil
}

func (s *service) CancelEvent(ctx context.Context, vendorID, eventID uuid.UUID) (*Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.VendorID != vendorID {
		return nil, fmt.Errorf("event %s does not belong to vendor %s: %w", eventID, vendorID, apperr.ErrInvalidState)
	}
	if event.IsCancelled {
		return nil, fmt.Errorf("event %s is already cancelled: %w", eventID, apperr.ErrInvalidState)
	}

	event.IsCancelled = true
	event.IsActive = false
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	s.invalidateEvent(ctx, eventID)
	return event, nil
}

func (s *service) RescheduleEvent(ctx context.Context, vendorID, eventID uuid.UUID, req RescheduleEventRequest) (*Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.VendorID != vendorID {
		return nil, fmt.Errorf("event %s does not belong to vendor %s: %w", eventID, vendorID, apperr.ErrInvalidState)
	}
	if event.IsCancelled {
		return nil, fmt.Errorf("cannot reschedule a cancelled event: %w", apperr.ErrInvalidState)
	}

	now := time.Now()
	if event.OriginalEventDate == nil {
		original := event.EventDate
		event.OriginalEventDate = &original
	}
	event.EventDate = req.NewDate
	event.WasRescheduled = true
	event.RescheduleCount++
	event.RescheduleReason = req.Reason
	event.LastRescheduledAt = &now

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to reschedule event: %w", err)
	}
	s.invalidateEvent(ctx, eventID)
	return event, nil
}

// invalidateEvent drops the cached detail and listings after a mutation.
// Cache misses after a failed invalidation only cost a database read.
func (s *service) invalidateEvent(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildEventDetailKey(eventID.String())); err != nil {
		s.log.Warn("failed to invalidate event detail cache", "event_id", eventID, "error", err)
	}
	s.invalidateListings(ctx)
}

func (s *service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.CACHE_KEY_EVENTS_LIST+"*"); err != nil {
		s.log.Warn("failed to invalidate event list cache", "error", err)
	}
}
