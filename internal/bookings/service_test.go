package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventvenue/internal/events"
	"eventvenue/internal/ledger"
	"eventvenue/internal/seats"
	"eventvenue/internal/shared/apperr"
	"eventvenue/internal/venues"

	"github.com/google/uuid"
)

type mockRepository struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*Booking
	failCreate bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{bookings: make(map[uuid.UUID]*Booking)}
}

func (m *mockRepository) Create(ctx context.Context, booking *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("simulated database failure")
	}
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockRepository) GetByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.VendorID == vendorID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(ctx context.Context, booking *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockRepository) ActiveUnitsByEvent(ctx context.Context) (map[uuid.UUID]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := make(map[uuid.UUID]int)
	for _, b := range m.bookings {
		if b.Status == StatusConfirmed && b.TargetType == TargetEvent && b.EventID != nil {
			units[*b.EventID] += b.Quantity
		}
	}
	return units, nil
}

// mockLedger tracks balances keyed by owner, mirroring the real service's
// bounds checks.
type mockLedger struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*ledger.Account // by owner id
	byID     map[uuid.UUID]*ledger.Account
	entries  []ledger.Entry
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		accounts: make(map[uuid.UUID]*ledger.Account),
		byID:     make(map[uuid.UUID]*ledger.Account),
	}
}

func (m *mockLedger) addAccount(ownerID uuid.UUID, balance int64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := &ledger.Account{ID: uuid.New(), OwnerID: ownerID, Balance: balance}
	m.accounts[ownerID] = acct
	m.byID[acct.ID] = acct
	return acct.ID
}

func (m *mockLedger) balanceOf(ownerID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[ownerID].Balance
}

func (m *mockLedger) GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[ownerID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *acct
	return &copied, nil
}

func (m *mockLedger) Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.byID[accountID]
	acct.Balance += amount
	entry := ledger.Entry{AccountID: accountID, Delta: amount, Reason: reason, ResultingBalance: acct.Balance}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *mockLedger) Debit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.byID[accountID]
	if acct.Balance < amount {
		return nil, apperr.ErrInsufficientBalance
	}
	acct.Balance -= amount
	entry := ledger.Entry{AccountID: accountID, Delta: -amount, Reason: reason, ResultingBalance: acct.Balance}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *mockLedger) DebitUpTo(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.byID[accountID]
	debit := amount
	if acct.Balance < debit {
		debit = acct.Balance
	}
	if debit > 0 {
		acct.Balance -= debit
		m.entries = append(m.entries, ledger.Entry{AccountID: accountID, Delta: -debit, Reason: reason, ResultingBalance: acct.Balance})
	}
	return debit, nil
}

type mockConversion struct{ rate int }

func (m *mockConversion) ConversionRate(ctx context.Context) (int, error) { return m.rate, nil }

type mockCounter struct {
	mu        sync.Mutex
	available map[uuid.UUID]int
	released  int
}

func (m *mockCounter) Reserve(ctx context.Context, eventID uuid.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.available[eventID] < qty {
		return apperr.ErrInsufficientInventory
	}
	m.available[eventID] -= qty
	return nil
}

func (m *mockCounter) Release(ctx context.Context, eventID uuid.UUID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available[eventID] += qty
	m.released += qty
	return nil
}

type mockSeatInv struct {
	mu       sync.Mutex
	prices   map[uuid.UUID]float64 // by seat id
	eventID  uuid.UUID
	reserved map[uuid.UUID]uuid.UUID // seat -> booking
}

func (m *mockSeatInv) Quote(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, id := range seatIDs {
		price, ok := m.prices[id]
		if !ok {
			return 0, apperr.ErrSeatUnavailable
		}
		total += price
	}
	return total, nil
}

func (m *mockSeatInv) Reserve(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) ([]seats.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seatIDs {
		if _, taken := m.reserved[id]; taken {
			return nil, apperr.ErrSeatUnavailable
		}
	}
	var out []seats.Seat
	for _, id := range seatIDs {
		m.reserved[id] = bookingID
		out = append(out, seats.Seat{ID: id, EventID: eventID, Status: seats.StatusBooked, Price: m.prices[id]})
	}
	return out, nil
}

func (m *mockSeatInv) ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) ([]seats.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []seats.Seat
	for id, owner := range m.reserved {
		if owner == bookingID {
			delete(m.reserved, id)
			out = append(out, seats.Seat{ID: id})
		}
	}
	return out, nil
}

type mockEventStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*events.Event
}

func (m *mockEventStore) GetEventByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

type mockVenueStore struct {
	venues map[uuid.UUID]*venues.Venue
}

func (m *mockVenueStore) GetVenueByID(ctx context.Context, id uuid.UUID) (*venues.Venue, error) {
	v, ok := m.venues[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

type mockNotifier struct {
	mu        sync.Mutex
	confirmed []uuid.UUID
}

func (m *mockNotifier) BookingConfirmed(ctx context.Context, booking *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, booking.ID)
	return nil
}

type fixture struct {
	repo     *mockRepository
	points   *mockLedger
	counter  *mockCounter
	seatInv  *mockSeatInv
	events   *mockEventStore
	venues   *mockVenueStore
	notifier *mockNotifier
	svc      Service

	userID   uuid.UUID
	vendorID uuid.UUID
	eventID  uuid.UUID
}

func newFixture(t *testing.T, userBalance, vendorBalance int64, rate int) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newMockRepository(),
		points:   newMockLedger(),
		counter:  &mockCounter{available: make(map[uuid.UUID]int)},
		seatInv:  &mockSeatInv{prices: make(map[uuid.UUID]float64), reserved: make(map[uuid.UUID]uuid.UUID)},
		events:   &mockEventStore{events: make(map[uuid.UUID]*events.Event)},
		venues:   &mockVenueStore{venues: make(map[uuid.UUID]*venues.Venue)},
		notifier: &mockNotifier{},
		userID:   uuid.New(),
		vendorID: uuid.New(),
		eventID:  uuid.New(),
	}
	f.points.addAccount(f.userID, userBalance)
	f.points.addAccount(f.vendorID, vendorBalance)
	f.svc = NewService(f.repo, f.points, &mockConversion{rate: rate},
		f.counter, f.seatInv, f.events, f.venues, f.notifier)
	return f
}

func (f *fixture) addQuantityEvent(price float64, available int) {
	f.events.events[f.eventID] = &events.Event{
		ID:               f.eventID,
		VendorID:         f.vendorID,
		EventDate:        time.Now().Add(72 * time.Hour),
		PricePerTicket:   price,
		TotalTickets:     available,
		TicketsAvailable: available,
		BookingType:      events.BookingTypeQuantity,
		IsActive:         true,
	}
	f.counter.available[f.eventID] = available
}

func TestCreateBookingQuantityHappyPath(t *testing.T) {
	f := newFixture(t, 500, 0, 1)
	f.addQuantityEvent(100, 50)
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:     TargetEvent,
		EventID:  f.eventID,
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// 2 tickets x 100 at rate 1 = 200 points, plus the 2 point fee.
	if booking.PointsUsed != 200 || booking.FeePoints != 2 {
		t.Errorf("points = %d + %d fee, want 200 + 2", booking.PointsUsed, booking.FeePoints)
	}
	if got := f.points.balanceOf(f.userID); got != 298 {
		t.Errorf("buyer balance = %d, want 298", got)
	}
	if got := f.points.balanceOf(f.vendorID); got != 200 {
		t.Errorf("vendor balance = %d, want 200 (fee stays with platform)", got)
	}
	if avail := f.counter.available[f.eventID]; avail != 48 {
		t.Errorf("inventory = %d, want 48", avail)
	}
	if booking.Status != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", booking.Status)
	}

	stored, err := f.repo.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if stored.BookingRef == "" {
		t.Error("booking has no reference")
	}
	if len(f.notifier.confirmed) != 1 || f.notifier.confirmed[0] != booking.ID {
		t.Errorf("notifier confirmed = %v, want [%s]", f.notifier.confirmed, booking.ID)
	}
}

func TestCreateBookingInsufficientBalance(t *testing.T) {
	f := newFixture(t, 10, 0, 1)
	f.addQuantityEvent(50, 20)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:     TargetEvent,
		EventID:  f.eventID,
		Quantity: 1,
	})
	if !errors.Is(err, apperr.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	if got := f.points.balanceOf(f.userID); got != 10 {
		t.Errorf("buyer balance = %d, want untouched 10", got)
	}
	if avail := f.counter.available[f.eventID]; avail != 20 {
		t.Errorf("inventory = %d, want untouched 20", avail)
	}
	if len(f.repo.bookings) != 0 {
		t.Errorf("booking persisted despite failure")
	}
}

func TestCreateBookingInsufficientInventory(t *testing.T) {
	f := newFixture(t, 10000, 0, 1)
	f.addQuantityEvent(10, 3)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:     TargetEvent,
		EventID:  f.eventID,
		Quantity: 5,
	})
	if !errors.Is(err, apperr.ErrInsufficientInventory) {
		t.Fatalf("err = %v, want ErrInsufficientInventory", err)
	}
	if got := f.points.balanceOf(f.userID); got != 10000 {
		t.Errorf("buyer balance = %d, want untouched 10000", got)
	}
}

func TestCreateBookingSeats(t *testing.T) {
	f := newFixture(t, 1000, 0, 2)
	f.events.events[f.eventID] = &events.Event{
		ID:          f.eventID,
		VendorID:    f.vendorID,
		EventDate:   time.Now().Add(72 * time.Hour),
		BookingType: events.BookingTypeSeatSelection,
		IsActive:    true,
	}
	seatA, seatB := uuid.New(), uuid.New()
	f.seatInv.prices[seatA] = 60
	f.seatInv.prices[seatB] = 40
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:    TargetSeats,
		EventID: f.eventID,
		SeatIDs: []uuid.UUID{seatA, seatB},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// 100 currency at rate 2 = 200 points.
	if booking.TotalAmount != 100 || booking.PointsUsed != 200 {
		t.Errorf("amount %.2f / points %d, want 100 / 200", booking.TotalAmount, booking.PointsUsed)
	}
	if owner := f.seatInv.reserved[seatA]; owner != booking.ID {
		t.Errorf("seat reserved for %s, want %s", owner, booking.ID)
	}
	if got := f.points.balanceOf(f.userID); got != 1000-202 {
		t.Errorf("buyer balance = %d, want 798", got)
	}
}

func TestCreateBookingVenue(t *testing.T) {
	f := newFixture(t, 500, 0, 1)
	venueID := uuid.New()
	f.venues.venues[venueID] = &venues.Venue{
		ID:           venueID,
		VendorID:     f.vendorID,
		PricePerHour: 30,
		IsActive:     true,
	}
	ctx := context.Background()

	booking, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:          TargetVenue,
		VenueID:       venueID,
		DurationHours: 3,
		BookingDate:   time.Now().Add(96 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.TotalAmount != 90 || booking.PointsUsed != 90 {
		t.Errorf("amount %.2f / points %d, want 90 / 90", booking.TotalAmount, booking.PointsUsed)
	}
	if booking.BookingDate == nil {
		t.Error("venue booking has no booking date")
	}
	if got := f.points.balanceOf(f.userID); got != 500-92 {
		t.Errorf("buyer balance = %d, want 408", got)
	}
}

func TestCreateBookingCompensatesOnPersistFailure(t *testing.T) {
	f := newFixture(t, 500, 0, 1)
	f.addQuantityEvent(100, 50)
	f.repo.failCreate = true
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:     TargetEvent,
		EventID:  f.eventID,
		Quantity: 2,
	})
	if err == nil {
		t.Fatal("CreateBooking succeeded despite persist failure")
	}

	if got := f.points.balanceOf(f.userID); got != 500 {
		t.Errorf("buyer balance = %d, want restored 500", got)
	}
	if got := f.points.balanceOf(f.vendorID); got != 0 {
		t.Errorf("vendor balance = %d, want reverted 0", got)
	}
	if avail := f.counter.available[f.eventID]; avail != 50 {
		t.Errorf("inventory = %d, want restored 50", avail)
	}
	if f.counter.released != 2 {
		t.Errorf("released = %d units, want 2", f.counter.released)
	}
}

func TestCreateBookingRejectsClosedEvent(t *testing.T) {
	f := newFixture(t, 500, 0, 1)
	f.addQuantityEvent(10, 10)
	f.events.events[f.eventID].IsCancelled = true
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.userID, Target{
		Type:     TargetEvent,
		EventID:  f.eventID,
		Quantity: 1,
	})
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestPointsForAmountRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount float64
		rate   int
		want   int64
	}{
		{100, 1, 100},
		{100.4, 1, 100},
		{100.5, 1, 101},
		{33.33, 3, 100},
		{1.25, 2, 3},
		{0, 5, 0},
	}
	for _, tc := range cases {
		if got := PointsForAmount(tc.amount, tc.rate); got != tc.want {
			t.Errorf("PointsForAmount(%v, %d) = %d, want %d", tc.amount, tc.rate, got, tc.want)
		}
	}
}
