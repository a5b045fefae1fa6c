package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventvenue/internal/shared/apperr"
	"eventvenue/pkg/cache"

	"github.com/google/uuid"
)

type mockRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*Event
}

func newMockRepository() *mockRepository {
	return &mockRepository{events: make(map[uuid.UUID]*Event)}
}

func (m *mockRepository) CreateEvent(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockRepository) GetEventByID(_ context.Context, id uuid.UUID) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
	}
	cp := *event
	return &cp, nil
}

func (m *mockRepository) GetEventsByVendor(_ context.Context, vendorID uuid.UUID) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.VendorID == vendorID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockRepository) ListActiveEvents(_ context.Context, _, _ int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.IsActive && !e.IsCancelled {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockRepository) ListAllEvents(_ context.Context) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockRepository) UpdateEvent(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return fmt.Errorf("event %s: %w", event.ID, apperr.ErrNotFound)
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockRepository) UpdateTicketsAvailable(_ context.Context, id uuid.UUID, ticketsAvailable int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
	}
	event.TicketsAvailable = ticketsAvailable
	return nil
}

func (m *mockRepository) UpdateCapacity(_ context.Context, id uuid.UUID, totalTickets, ticketsAvailable int, bookingType BookingType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, apperr.ErrNotFound)
	}
	event.TotalTickets = totalTickets
	event.TicketsAvailable = ticketsAvailable
	event.BookingType = bookingType
	return nil
}

// fakeCache is an in-memory cache.Service backed by the same JSON encoding
// the redis-backed implementation uses.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	gets  int
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	data, ok := f.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	f.hits++
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = data
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, key)
	return nil
}

func (f *fakeCache) DeletePattern(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := pattern
	if len(prefix) > 0 && prefix[len(prefix)-1] == '*' {
		prefix = prefix[:len(prefix)-1]
	}
	for k := range f.store {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.store, k)
		}
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[key]
	return ok
}

func (f *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := f.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return fmt.Errorf("fetcher error: %w", err)
	}
	if err := f.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

func seedEvent(t *testing.T, repo *mockRepository, vendorID uuid.UUID) *Event {
	t.Helper()
	event := &Event{
		ID:               uuid.New(),
		VendorID:         vendorID,
		Name:             "Jazz Night",
		EventDate:        time.Now().AddDate(0, 0, 14),
		Location:         "Riverside Hall",
		PricePerTicket:   50,
		TotalTickets:     100,
		TicketsAvailable: 100,
		BookingType:      BookingTypeQuantity,
		IsActive:         true,
	}
	if err := repo.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}

func TestCreateEventDefaultsToQuantityBooking(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	vendorID := uuid.New()
	event, err := svc.CreateEvent(context.Background(), vendorID, CreateEventRequest{
		Name:           "Tech Meetup",
		EventDate:      time.Now().AddDate(0, 0, 7),
		Location:       "Loft Studio",
		PricePerTicket: 10,
		TotalTickets:   40,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if event.BookingType != BookingTypeQuantity {
		t.Errorf("booking type = %s, want %s", event.BookingType, BookingTypeQuantity)
	}
	if event.TicketsAvailable != 40 {
		t.Errorf("tickets available = %d, want 40", event.TicketsAvailable)
	}
	if !event.IsActive {
		t.Error("new event should be active")
	}
}

func TestGetEventServesSecondReadFromCache(t *testing.T) {
	repo := newMockRepository()
	fc := newFakeCache()
	svc := NewService(repo, fc)

	event := seedEvent(t, repo, uuid.New())

	for i := 0; i < 2; i++ {
		got, err := svc.GetEvent(context.Background(), event.ID)
		if err != nil {
			t.Fatalf("GetEvent #%d: %v", i+1, err)
		}
		if got.ID != event.ID || got.Name != event.Name {
			t.Fatalf("GetEvent #%d returned wrong event", i+1)
		}
	}

	if fc.hits != 1 {
		t.Errorf("cache hits = %d, want 1", fc.hits)
	}
}

func TestCancelEventInvalidatesCachedDetail(t *testing.T) {
	repo := newMockRepository()
	fc := newFakeCache()
	svc := NewService(repo, fc)

	vendorID := uuid.New()
	event := seedEvent(t, repo, vendorID)

	if _, err := svc.GetEvent(context.Background(), event.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if _, err := svc.CancelEvent(context.Background(), vendorID, event.ID); err != nil {
		t.Fatalf("CancelEvent: %v", err)
	}

	got, err := svc.GetEvent(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetEvent after cancel: %v", err)
	}
	if !got.IsCancelled {
		t.Error("expected cancelled event after invalidation, got stale cache entry")
	}
}

func TestCancelEventRejectsForeignVendor(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	event := seedEvent(t, repo, uuid.New())

	_, err := svc.CancelEvent(context.Background(), uuid.New(), event.ID)
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCancelEventTwiceFails(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	vendorID := uuid.New()
	event := seedEvent(t, repo, vendorID)

	if _, err := svc.CancelEvent(context.Background(), vendorID, event.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err := svc.CancelEvent(context.Background(), vendorID, event.ID)
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double cancel, got %v", err)
	}
}

func TestRescheduleEventRecordsOriginalDate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	vendorID := uuid.New()
	event := seedEvent(t, repo, vendorID)
	originalDate := event.EventDate
	newDate := originalDate.AddDate(0, 1, 0)

	updated, err := svc.RescheduleEvent(context.Background(), vendorID, event.ID, RescheduleEventRequest{
		NewDate: newDate,
		Reason:  "venue double-booked",
	})
	if err != nil {
		t.Fatalf("RescheduleEvent: %v", err)
	}

	if !updated.WasRescheduled {
		t.Error("WasRescheduled not set")
	}
	if updated.RescheduleCount != 1 {
		t.Errorf("RescheduleCount = %d, want 1", updated.RescheduleCount)
	}
	if updated.OriginalEventDate == nil || !updated.OriginalEventDate.Equal(originalDate) {
		t.Error("original event date not preserved")
	}
	if !updated.EventDate.Equal(newDate) {
		t.Error("event date not moved")
	}

	// A second reschedule keeps the first date as the original.
	again, err := svc.RescheduleEvent(context.Background(), vendorID, event.ID, RescheduleEventRequest{
		NewDate: newDate.AddDate(0, 0, 3),
		Reason:  "headliner availability",
	})
	if err != nil {
		t.Fatalf("second reschedule: %v", err)
	}
	if again.RescheduleCount != 2 {
		t.Errorf("RescheduleCount = %d, want 2", again.RescheduleCount)
	}
	if !again.OriginalEventDate.Equal(originalDate) {
		t.Error("original date overwritten on second reschedule")
	}
}

func TestRescheduleCancelledEventFails(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	vendorID := uuid.New()
	event := seedEvent(t, repo, vendorID)

	if _, err := svc.CancelEvent(context.Background(), vendorID, event.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := svc.RescheduleEvent(context.Background(), vendorID, event.ID, RescheduleEventRequest{
		NewDate: time.Now().AddDate(0, 2, 0),
		Reason:  "trying to revive it",
	})
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
