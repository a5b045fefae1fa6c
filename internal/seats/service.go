package seats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eventvenue/internal/shared/apperr"
	"eventvenue/pkg/lockring"

	"github.com/google/uuid"
)

// EventStore is the slice of the event repository the seat manager needs to
// keep the event's capacity fields in step with the layout.
type EventStore interface {
	UpdateSeatCapacity(ctx context.Context, eventID uuid.UUID, totalSeats, availableSeats int) error
}

// Service interface defines the contract for the seat inventory manager
type Service interface {
	// ConfigureLayout replaces the event's categories and seats wholesale
	// while preserving every BOOKED seat. Booked seats not covered by the
	// new layout keep their prior category and price; each one surfaces an
	// administrative warning instead of failing the operation.
	ConfigureLayout(ctx context.Context, eventID uuid.UUID, req ConfigureLayoutRequest) (*ConfigureLayoutResult, error)

	Layout(ctx context.Context, eventID uuid.UUID) (*LayoutResponse, error)

	// Quote sums the prices of the given seats without reserving them.
	Quote(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID) (float64, error)

	// Reserve atomically flips every requested seat AVAILABLE -> BOOKED, or
	// flips none of them. Concurrent reservations of overlapping seats are
	// serialized by row-scoped locks taken in sorted order.
	Reserve(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) ([]Seat, error)

	// ReleaseByBooking returns all seats of a booking to AVAILABLE and
	// clears their back-references. Idempotent: a second call finds no
	// seats and is a no-op.
	ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) ([]Seat, error)

	// ReleaseSeats releases specific seats, verifying each is owned by the
	// given booking; a mismatch fails the whole call.
	ReleaseSeats(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error

	// BlockSeats takes AVAILABLE seats out of sale.
	BlockSeats(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID) error
}

type service struct {
	repo        Repository
	eventStore  EventStore
	holds       *HoldStore // nil when redis is unavailable
	eventGuards *lockring.RWRing
	rowLocks    *lockring.Ring
}

// NewService creates a new seat service instance. holds may be nil; the
// advisory hold endpoints then report holds as unavailable.
func NewService(repo Repository, eventStore EventStore, holds *HoldStore) Service {
	return &service{
		repo:        repo,
		eventStore:  eventStore,
		holds:       holds,
		eventGuards: lockring.NewRW(),
		rowLocks:    lockring.New(),
	}
}

func seatKey(rowLabel string, seatNumber int) string {
	return fmt.Sprintf("%s-%d", rowLabel, seatNumber)
}

func rowLockKey(eventID uuid.UUID, rowLabel string) string {
	return eventID.String() + "/" + rowLabel
}

func (s *service) ConfigureLayout(ctx context.Context, eventID uuid.UUID, req ConfigureLayoutRequest) (*ConfigureLayoutResult, error) {
	// Layout replacement is rare and not latency-sensitive: take the whole
	// event exclusively so no reservation can interleave with the rebuild.
	guard := eventID.String()
	s.eventGuards.Lock(guard)
	defer s.eventGuards.Unlock(guard)

	bookedSeats, err := s.repo.GetBookedSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked seats: %w", err)
	}
	bookedByKey := make(map[string]*Seat, len(bookedSeats))
	for i := range bookedSeats {
		bookedByKey[bookedSeats[i].Key()] = &bookedSeats[i]
	}

	var (
		categories []*SeatCategory
		newSeats   []*Seat
		keptBooked []*Seat
		totalSeats int
		covered    = make(map[string]bool)
	)

	for i, input := range req.Categories {
		color := input.Color
		if color == "" {
			color = "#22c55e"
		}
		category := &SeatCategory{
			ID:          uuid.New(),
			EventID:     eventID,
			Name:        input.Name,
			Price:       input.Price,
			Color:       color,
			Rows:        input.Rows,
			SeatsPerRow: input.SeatsPerRow,
			AisleAfter:  input.AisleAfter,
			SortOrder:   i,
		}
		categories = append(categories, category)

		for _, row := range input.Rows {
			for num := 1; num <= input.SeatsPerRow; num++ {
				key := seatKey(row, num)
				covered[key] = true
				totalSeats++

				if booked, ok := bookedByKey[key]; ok {
					// Remap the booked seat onto the new category without
					// touching its status or booking reference.
					booked.CategoryID = category.ID
					booked.Price = category.Price
					keptBooked = append(keptBooked, booked)
					continue
				}

				newSeats = append(newSeats, &Seat{
					ID:         uuid.New(),
					EventID:    eventID,
					CategoryID: category.ID,
					RowLabel:   row,
					SeatNumber: num,
					Status:     StatusAvailable,
					Price:      category.Price,
				})
			}
		}
	}

	var warnings []string
	for key := range bookedByKey {
		if !covered[key] {
			warnings = append(warnings, fmt.Sprintf(
				"booked seat %s is not covered by the new layout; keeping its prior category and price", key))
		}
	}
	sort.Strings(warnings)

	if err := s.repo.ReplaceLayout(ctx, eventID, categories, newSeats, keptBooked); err != nil {
		return nil, fmt.Errorf("failed to replace layout: %w", err)
	}

	available := totalSeats - len(bookedSeats)
	if available < 0 {
		available = 0
	}
	if err := s.eventStore.UpdateSeatCapacity(ctx, eventID, totalSeats, available); err != nil {
		return nil, fmt.Errorf("layout replaced but capacity update failed: %w", err)
	}

	return &ConfigureLayoutResult{
		TotalSeats:     totalSeats,
		BookedSeats:    len(bookedSeats),
		AvailableSeats: available,
		Warnings:       warnings,
	}, nil
}

func (s *service) Layout(ctx context.Context, eventID uuid.UUID) (*LayoutResponse, error) {
	categories, err := s.repo.GetCategories(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	seats, err := s.repo.GetSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	return &LayoutResponse{Categories: categories, Seats: seats}, nil
}

func (s *service) Quote(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID) (float64, error) {
	if len(seatIDs) == 0 {
		return 0, fmt.Errorf("no seats requested")
	}
	seats, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return 0, fmt.Errorf("%d of %d requested seats do not exist: %w",
			len(seatIDs)-len(seats), len(seatIDs), apperr.ErrSeatUnavailable)
	}
	var total float64
	for _, seat := range seats {
		if seat.EventID != eventID {
			return 0, fmt.Errorf("seat %s does not belong to event %s: %w", seat.ID, eventID, apperr.ErrSeatUnavailable)
		}
		total += seat.Price
	}
	return total, nil
}

func (s *service) Reserve(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) ([]Seat, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}

	// Shared guard: reservations may run concurrently with each other but
	// never with a layout rebuild.
	guard := eventID.String()
	s.eventGuards.RLock(guard)
	defer s.eventGuards.RUnlock(guard)

	// First pass (unlocked) just discovers which rows to lock.
	preview, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(preview) != len(seatIDs) {
		return nil, fmt.Errorf("%d of %d requested seats do not exist: %w",
			len(seatIDs)-len(preview), len(seatIDs), apperr.ErrSeatUnavailable)
	}

	rowKeys := make([]string, 0, len(preview))
	for _, seat := range preview {
		rowKeys = append(rowKeys, rowLockKey(eventID, seat.RowLabel))
	}
	unlock := s.rowLocks.LockAll(rowKeys)
	defer unlock()

	// Second pass under the row locks is authoritative.
	seats, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, fmt.Errorf("requested seats disappeared during reservation: %w", apperr.ErrSeatUnavailable)
	}

	updates := make([]*Seat, 0, len(seats))
	for i := range seats {
		seat := &seats[i]
		if seat.EventID != eventID {
			return nil, fmt.Errorf("seat %s does not belong to event %s: %w", seat.ID, eventID, apperr.ErrSeatUnavailable)
		}
		if seat.Status != StatusAvailable {
			return nil, fmt.Errorf("seat %s is %s: %w", seat.Key(), seat.Status, apperr.ErrSeatUnavailable)
		}
		seat.Status = StatusBooked
		seat.BookingID = &bookingID
		updates = append(updates, seat)
	}

	if err := s.repo.UpdateSeats(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to persist reservation: %w", err)
	}
	return seats, nil
}

func (s *service) ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) ([]Seat, error) {
	seats, err := s.repo.GetSeatsByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats for booking: %w", err)
	}
	if len(seats) == 0 {
		return nil, nil
	}

	eventID := seats[0].EventID
	guard := eventID.String()
	s.eventGuards.RLock(guard)
	defer s.eventGuards.RUnlock(guard)

	rowKeys := make([]string, 0, len(seats))
	for _, seat := range seats {
		rowKeys = append(rowKeys, rowLockKey(eventID, seat.RowLabel))
	}
	unlock := s.rowLocks.LockAll(rowKeys)
	defer unlock()

	updates := make([]*Seat, 0, len(seats))
	for i := range seats {
		seat := &seats[i]
		seat.Status = StatusAvailable
		seat.BookingID = nil
		updates = append(updates, seat)
	}
	if err := s.repo.UpdateSeats(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}
	return seats, nil
}

func (s *service) ReleaseSeats(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	seats, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seats) == 0 {
		return nil
	}

	eventID := seats[0].EventID
	guard := eventID.String()
	s.eventGuards.RLock(guard)
	defer s.eventGuards.RUnlock(guard)

	rowKeys := make([]string, 0, len(seats))
	for _, seat := range seats {
		rowKeys = append(rowKeys, rowLockKey(eventID, seat.RowLabel))
	}
	unlock := s.rowLocks.LockAll(rowKeys)
	defer unlock()

	seats, err = s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return fmt.Errorf("failed to load seats: %w", err)
	}

	updates := make([]*Seat, 0, len(seats))
	for i := range seats {
		seat := &seats[i]
		if seat.Status != StatusBooked || seat.BookingID == nil || *seat.BookingID != bookingID {
			return fmt.Errorf("seat %s is not held by booking %s: %w", seat.Key(), bookingID, apperr.ErrInventoryMismatch)
		}
		seat.Status = StatusAvailable
		seat.BookingID = nil
		updates = append(updates, seat)
	}
	if err := s.repo.UpdateSeats(ctx, updates); err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

func (s *service) BlockSeats(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID) error {
	guard := eventID.String()
	s.eventGuards.RLock(guard)
	defer s.eventGuards.RUnlock(guard)

	seats, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return fmt.Errorf("failed to load seats: %w", err)
	}

	rowKeys := make([]string, 0, len(seats))
	for _, seat := range seats {
		rowKeys = append(rowKeys, rowLockKey(eventID, seat.RowLabel))
	}
	unlock := s.rowLocks.LockAll(rowKeys)
	defer unlock()

	seats, err = s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return fmt.Errorf("failed to load seats: %w", err)
	}

	updates := make([]*Seat, 0, len(seats))
	for i := range seats {
		seat := &seats[i]
		if seat.Status != StatusAvailable {
			return fmt.Errorf("seat %s is %s, only AVAILABLE seats can be blocked: %w",
				seat.Key(), seat.Status, apperr.ErrInvalidState)
		}
		seat.Status = StatusBlocked
		updates = append(updates, seat)
	}
	if err := s.repo.UpdateSeats(ctx, updates); err != nil {
		return fmt.Errorf("failed to block seats: %w", err)
	}
	return nil
}

// HoldTTL is how long an advisory seat hold lives before expiring.
const HoldTTL = 10 * time.Minute
