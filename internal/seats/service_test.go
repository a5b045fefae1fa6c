package seats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"eventvenue/internal/shared/apperr"

	"github.com/google/uuid"
)

// mockSeatRepository is an in-memory Repository for testing
type mockSeatRepository struct {
	mu         sync.Mutex
	categories map[uuid.UUID][]SeatCategory // by event
	seats      map[uuid.UUID]*Seat          // by seat id
}

func newMockSeatRepository() *mockSeatRepository {
	return &mockSeatRepository{
		categories: make(map[uuid.UUID][]SeatCategory),
		seats:      make(map[uuid.UUID]*Seat),
	}
}

func (m *mockSeatRepository) GetCategories(ctx context.Context, eventID uuid.UUID) ([]SeatCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SeatCategory(nil), m.categories[eventID]...), nil
}

func (m *mockSeatRepository) GetSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Seat
	for _, seat := range m.seats {
		if seat.EventID == eventID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (m *mockSeatRepository) GetSeatsByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Seat
	for _, id := range ids {
		if seat, ok := m.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (m *mockSeatRepository) GetSeatsByBooking(ctx context.Context, bookingID uuid.UUID) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Seat
	for _, seat := range m.seats {
		if seat.BookingID != nil && *seat.BookingID == bookingID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (m *mockSeatRepository) GetBookedSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Seat
	for _, seat := range m.seats {
		if seat.EventID == eventID && seat.Status == StatusBooked {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (m *mockSeatRepository) UpdateSeats(ctx context.Context, seats []*Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, seat := range seats {
		copied := *seat
		m.seats[seat.ID] = &copied
	}
	return nil
}

func (m *mockSeatRepository) ReplaceLayout(ctx context.Context, eventID uuid.UUID, categories []*SeatCategory, newSeats []*Seat, keptBooked []*Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, seat := range m.seats {
		if seat.EventID == eventID && seat.Status != StatusBooked {
			delete(m.seats, id)
		}
	}
	cats := make([]SeatCategory, 0, len(categories))
	for _, c := range categories {
		cats = append(cats, *c)
	}
	m.categories[eventID] = cats
	for _, seat := range newSeats {
		copied := *seat
		m.seats[seat.ID] = &copied
	}
	for _, seat := range keptBooked {
		copied := *seat
		m.seats[seat.ID] = &copied
	}
	return nil
}

// mockEventStore records capacity updates
type mockEventStore struct {
	mu        sync.Mutex
	total     int
	available int
}

func (m *mockEventStore) UpdateSeatCapacity(ctx context.Context, eventID uuid.UUID, totalSeats, availableSeats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = totalSeats
	m.available = availableSeats
	return nil
}

func seedLayout(t *testing.T, svc Service, repo *mockSeatRepository, eventID uuid.UUID) []Seat {
	t.Helper()
	_, err := svc.ConfigureLayout(context.Background(), eventID, ConfigureLayoutRequest{
		Categories: []CategoryInput{
			{Name: "VIP", Price: 100, Rows: []string{"A"}, SeatsPerRow: 5},
			{Name: "General", Price: 40, Rows: []string{"B", "C"}, SeatsPerRow: 5},
		},
	})
	if err != nil {
		t.Fatalf("ConfigureLayout: %v", err)
	}
	seats, _ := repo.GetSeats(context.Background(), eventID)
	if len(seats) != 15 {
		t.Fatalf("seeded %d seats, want 15", len(seats))
	}
	return seats
}

func findSeat(t *testing.T, seats []Seat, row string, num int) Seat {
	t.Helper()
	for _, seat := range seats {
		if seat.RowLabel == row && seat.SeatNumber == num {
			return seat
		}
	}
	t.Fatalf("seat %s-%d not found", row, num)
	return Seat{}
}

func TestReserveFlipsAllOrNothing(t *testing.T) {
	repo := newMockSeatRepository()
	store := &mockEventStore{}
	svc := NewService(repo, store, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	a1 := findSeat(t, seats, "A", 1)
	a2 := findSeat(t, seats, "A", 2)
	bookingID := uuid.New()

	reserved, err := svc.Reserve(ctx, eventID, []uuid.UUID{a1.ID, a2.ID}, bookingID)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(reserved) != 2 {
		t.Fatalf("reserved %d seats, want 2", len(reserved))
	}

	// A second reservation overlapping one taken seat must fail and leave
	// the untaken seat untouched.
	a3 := findSeat(t, seats, "A", 3)
	_, err = svc.Reserve(ctx, eventID, []uuid.UUID{a2.ID, a3.ID}, uuid.New())
	if !errors.Is(err, apperr.ErrSeatUnavailable) {
		t.Fatalf("overlapping reserve err = %v, want ErrSeatUnavailable", err)
	}
	after, _ := repo.GetSeatsByIDs(ctx, []uuid.UUID{a3.ID})
	if after[0].Status != StatusAvailable || after[0].BookingID != nil {
		t.Errorf("seat A-3 mutated by failed reservation: %+v", after[0])
	}
}

func TestConcurrentReservationsOfSameSeat(t *testing.T) {
	repo := newMockSeatRepository()
	svc := NewService(repo, &mockEventStore{}, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	target := findSeat(t, seats, "B", 3)

	const attempts = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, unavailable := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, eventID, []uuid.UUID{target.ID}, uuid.New())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperr.ErrSeatUnavailable):
				unavailable++
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if unavailable != attempts-1 {
		t.Errorf("unavailable = %d, want %d", unavailable, attempts-1)
	}
}

func TestReleaseByBookingIsIdempotent(t *testing.T) {
	repo := newMockSeatRepository()
	svc := NewService(repo, &mockEventStore{}, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	b1 := findSeat(t, seats, "B", 1)
	bookingID := uuid.New()

	if _, err := svc.Reserve(ctx, eventID, []uuid.UUID{b1.ID}, bookingID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	released, err := svc.ReleaseByBooking(ctx, bookingID)
	if err != nil {
		t.Fatalf("ReleaseByBooking: %v", err)
	}
	if len(released) != 1 {
		t.Fatalf("released %d seats, want 1", len(released))
	}

	after, _ := repo.GetSeatsByIDs(ctx, []uuid.UUID{b1.ID})
	if after[0].Status != StatusAvailable || after[0].BookingID != nil {
		t.Errorf("seat not restored: %+v", after[0])
	}

	// Second release finds nothing and is a no-op.
	released, err = svc.ReleaseByBooking(ctx, bookingID)
	if err != nil {
		t.Fatalf("second ReleaseByBooking: %v", err)
	}
	if len(released) != 0 {
		t.Errorf("second release returned %d seats, want 0", len(released))
	}
}

func TestReleaseSeatsWrongBookingFails(t *testing.T) {
	repo := newMockSeatRepository()
	svc := NewService(repo, &mockEventStore{}, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	c1 := findSeat(t, seats, "C", 1)
	owner := uuid.New()

	if _, err := svc.Reserve(ctx, eventID, []uuid.UUID{c1.ID}, owner); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	err := svc.ReleaseSeats(ctx, []uuid.UUID{c1.ID}, uuid.New())
	if !errors.Is(err, apperr.ErrInventoryMismatch) {
		t.Fatalf("err = %v, want ErrInventoryMismatch", err)
	}

	after, _ := repo.GetSeatsByIDs(ctx, []uuid.UUID{c1.ID})
	if after[0].Status != StatusBooked {
		t.Errorf("seat released by mismatched booking: %+v", after[0])
	}
}

func TestConfigureLayoutPreservesBookedSeats(t *testing.T) {
	repo := newMockSeatRepository()
	store := &mockEventStore{}
	svc := NewService(repo, store, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	bookingID := uuid.New()

	var toBook []uuid.UUID
	for i := 1; i <= 5; i++ {
		toBook = append(toBook, findSeat(t, seats, "A", i).ID)
	}
	if _, err := svc.Reserve(ctx, eventID, toBook, bookingID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// New layout covers the same rows at a new price.
	result, err := svc.ConfigureLayout(ctx, eventID, ConfigureLayoutRequest{
		Categories: []CategoryInput{
			{Name: "Premium", Price: 150, Rows: []string{"A", "B"}, SeatsPerRow: 5},
		},
	})
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none (all booked seats covered)", result.Warnings)
	}
	if result.TotalSeats != 10 || result.BookedSeats != 5 || result.AvailableSeats != 5 {
		t.Errorf("result = %+v, want 10 total / 5 booked / 5 available", result)
	}

	booked, _ := repo.GetBookedSeats(ctx, eventID)
	if len(booked) != 5 {
		t.Fatalf("booked seats after reconfigure = %d, want 5", len(booked))
	}
	for _, seat := range booked {
		if seat.BookingID == nil || *seat.BookingID != bookingID {
			t.Errorf("seat %s lost its booking reference", seat.Key())
		}
		if seat.Price != 150 {
			t.Errorf("seat %s price = %v, want remapped 150", seat.Key(), seat.Price)
		}
	}
}

func TestConfigureLayoutWarnsOnUncoveredBookedSeat(t *testing.T) {
	repo := newMockSeatRepository()
	svc := NewService(repo, &mockEventStore{}, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	c5 := findSeat(t, seats, "C", 5)
	bookingID := uuid.New()
	if _, err := svc.Reserve(ctx, eventID, []uuid.UUID{c5.ID}, bookingID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// New layout drops row C entirely.
	result, err := svc.ConfigureLayout(ctx, eventID, ConfigureLayoutRequest{
		Categories: []CategoryInput{
			{Name: "Only A", Price: 80, Rows: []string{"A"}, SeatsPerRow: 5},
		},
	})
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", result.Warnings)
	}

	after, _ := repo.GetSeatsByIDs(ctx, []uuid.UUID{c5.ID})
	if len(after) != 1 {
		t.Fatalf("uncovered booked seat was deleted")
	}
	if after[0].Status != StatusBooked || after[0].Price != 40 {
		t.Errorf("uncovered booked seat mutated: %+v", after[0])
	}
}

func TestBlockSeatOnlyFromAvailable(t *testing.T) {
	repo := newMockSeatRepository()
	svc := NewService(repo, &mockEventStore{}, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	a1 := findSeat(t, seats, "A", 1)

	if err := svc.BlockSeats(ctx, eventID, []uuid.UUID{a1.ID}); err != nil {
		t.Fatalf("BlockSeats: %v", err)
	}

	// A blocked seat cannot be reserved.
	_, err := svc.Reserve(ctx, eventID, []uuid.UUID{a1.ID}, uuid.New())
	if !errors.Is(err, apperr.ErrSeatUnavailable) {
		t.Fatalf("reserve blocked seat err = %v, want ErrSeatUnavailable", err)
	}

	// And cannot be blocked twice.
	if err := svc.BlockSeats(ctx, eventID, []uuid.UUID{a1.ID}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("double block err = %v, want ErrInvalidState", err)
	}
}

func TestConcurrentMultiSeatReservationsDoNotDeadlock(t *testing.T) {
	repo := newMockSeatRepository()
	svc := NewService(repo, &mockEventStore{}, nil)
	ctx := context.Background()
	eventID := uuid.New()

	seats := seedLayout(t, svc, repo, eventID)
	b1 := findSeat(t, seats, "B", 1)
	c1 := findSeat(t, seats, "C", 1)

	// Opposite lock orders from the caller's perspective; LockAll sorting
	// must prevent deadlock.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Reserve(ctx, eventID, []uuid.UUID{b1.ID, c1.ID}, uuid.New())
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.Reserve(ctx, eventID, []uuid.UUID{c1.ID, b1.ID}, uuid.New())
		results <- err
	}()
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, apperr.ErrSeatUnavailable) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
}

func TestSeatKeyFormat(t *testing.T) {
	seat := Seat{RowLabel: "A", SeatNumber: 12}
	if got, want := seat.Key(), fmt.Sprintf("%s-%d", "A", 12); got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}
