package inventory

import (
	"context"
	"fmt"

	"eventvenue/internal/events"
	"eventvenue/internal/shared/apperr"
	"eventvenue/pkg/lockring"
	"eventvenue/pkg/logger"

	"github.com/google/uuid"
)

// EventStore is the slice of the event repository the counter mutates.
type EventStore interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*events.Event, error)
	ListAllEvents(ctx context.Context) ([]events.Event, error)
	UpdateTicketsAvailable(ctx context.Context, id uuid.UUID, ticketsAvailable int) error
}

// UsageSource reports how many units are held by active bookings, per
// event. Reconcile uses it to recompute availability at startup after an
// unclean shutdown may have leaked reservations.
type UsageSource interface {
	ActiveUnitsByEvent(ctx context.Context) (map[uuid.UUID]int, error)
}

// Counter is the quantity inventory counter for counter-based events. All
// mutations of an event's tickets_available go through here, serialized by
// a per-event lock.
type Counter interface {
	// Reserve takes qty units, failing with ErrInsufficientInventory when
	// fewer than qty are available. All-or-nothing.
	Reserve(ctx context.Context, eventID uuid.UUID, qty int) error

	// Release returns qty units. Releasing more than is outstanding means
	// reserve/release calls are no longer paired and the counter state
	// cannot be trusted.
	Release(ctx context.Context, eventID uuid.UUID, qty int) error

	Available(ctx context.Context, eventID uuid.UUID) (int, error)

	// Reconcile recomputes every event's availability from the units held
	// by active bookings. Run once at startup.
	Reconcile(ctx context.Context) error
}

type counter struct {
	store EventStore
	usage UsageSource
	locks *lockring.Ring
}

func NewCounter(store EventStore, usage UsageSource) Counter {
	return &counter{
		store: store,
		usage: usage,
		locks: lockring.New(),
	}
}

func (c *counter) Reserve(ctx context.Context, eventID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}

	key := eventID.String()
	c.locks.Lock(key)
	defer c.locks.Unlock(key)

	event, err := c.store.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.TicketsAvailable < qty {
		return fmt.Errorf("requested %d tickets, %d available: %w",
			qty, event.TicketsAvailable, apperr.ErrInsufficientInventory)
	}

	return c.store.UpdateTicketsAvailable(ctx, eventID, event.TicketsAvailable-qty)
}

func (c *counter) Release(ctx context.Context, eventID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}

	key := eventID.String()
	c.locks.Lock(key)
	defer c.locks.Unlock(key)

	event, err := c.store.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	restored := event.TicketsAvailable + qty
	if restored > event.TotalTickets {
		return fmt.Errorf("releasing %d tickets would exceed capacity %d (available %d): %w",
			qty, event.TotalTickets, event.TicketsAvailable, apperr.ErrInternalInconsistency)
	}

	return c.store.UpdateTicketsAvailable(ctx, eventID, restored)
}

func (c *counter) Available(ctx context.Context, eventID uuid.UUID) (int, error) {
	event, err := c.store.GetEventByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return event.TicketsAvailable, nil
}

func (c *counter) Reconcile(ctx context.Context) error {
	log := logger.GetDefault()

	held, err := c.usage.ActiveUnitsByEvent(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active booking usage: %w", err)
	}
	all, err := c.store.ListAllEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	repaired := 0
	for _, event := range all {
		if event.BookingType != events.BookingTypeQuantity {
			continue
		}

		key := event.ID.String()
		c.locks.Lock(key)

		expected := event.TotalTickets - held[event.ID]
		if expected < 0 {
			c.locks.Unlock(key)
			return fmt.Errorf("event %s has %d units booked against capacity %d: %w",
				event.ID, held[event.ID], event.TotalTickets, apperr.ErrInternalInconsistency)
		}
		if event.TicketsAvailable != expected {
			log.Warn("repairing inventory counter",
				"event_id", event.ID,
				"stored", event.TicketsAvailable,
				"expected", expected)
			if err := c.store.UpdateTicketsAvailable(ctx, event.ID, expected); err != nil {
				c.locks.Unlock(key)
				return fmt.Errorf("failed to repair counter for event %s: %w", event.ID, err)
			}
			repaired++
		}
		c.locks.Unlock(key)
	}

	if repaired > 0 {
		log.Info("inventory reconciliation complete", "repaired", repaired)
	}
	return nil
}
