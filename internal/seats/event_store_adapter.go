package seats

import (
	"context"

	"eventvenue/internal/events"

	"github.com/google/uuid"
)

// eventStoreAdapter bridges the event repository into the narrow EventStore
// interface. Seat layouts always put the event into seat-selection mode.
type eventStoreAdapter struct {
	repo events.Repository
}

// NewEventStoreAdapter wraps an events repository as an EventStore.
func NewEventStoreAdapter(repo events.Repository) EventStore {
	return &eventStoreAdapter{repo: repo}
}

func (a *eventStoreAdapter) UpdateSeatCapacity(ctx context.Context, eventID uuid.UUID, totalSeats, availableSeats int) error {
	return a.repo.UpdateCapacity(ctx, eventID, totalSeats, availableSeats, events.BookingTypeSeatSelection)
}
