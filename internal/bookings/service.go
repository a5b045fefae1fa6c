package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"eventvenue/internal/events"
	"eventvenue/internal/ledger"
	"eventvenue/internal/seats"
	"eventvenue/internal/shared/apperr"
	"eventvenue/internal/venues"
	"eventvenue/pkg/logger"

	"github.com/google/uuid"
)

// Narrow views of the collaborating services, declared here to keep the
// dependency direction one-way.

type EventStore interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

type VenueStore interface {
	GetVenueByID(ctx context.Context, id uuid.UUID) (*venues.Venue, error)
}

type SeatInventory interface {
	Quote(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID) (float64, error)
	Reserve(ctx context.Context, eventID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) ([]seats.Seat, error)
	ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) ([]seats.Seat, error)
}

type QuantityInventory interface {
	Reserve(ctx context.Context, eventID uuid.UUID, qty int) error
	Release(ctx context.Context, eventID uuid.UUID, qty int) error
}

type ConversionSource interface {
	ConversionRate(ctx context.Context) (int, error)
}

// PointsLedger is the slice of the ledger service the coordinator moves
// points with. ledger.Service satisfies it.
type PointsLedger interface {
	GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*ledger.Account, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*ledger.Entry, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*ledger.Entry, error)
	DebitUpTo(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (int64, error)
}

// Notifier publishes booking lifecycle notifications after commit. Delivery
// is best effort; a failed publish never fails the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *Booking) error
}

// Target is what a booking is for: exactly one of the three shapes,
// selected by Type.
type Target struct {
	Type TargetType

	// VENUE
	VenueID       uuid.UUID
	DurationHours int
	BookingDate   time.Time

	// EVENT
	EventID  uuid.UUID
	Quantity int

	// SEATS (EventID shared with EVENT)
	SeatIDs []uuid.UUID
}

// Service interface defines the contract for the booking coordinator
type Service interface {
	// CreateBooking runs the full purchase sequence: price resolution,
	// currency-to-points conversion at the current rate, platform fee,
	// balance check, inventory reservation, ledger movements, persist.
	// Any failure after a side effect compensates that side effect before
	// the error surfaces; a booking either completes fully or leaves no
	// trace.
	CreateBooking(ctx context.Context, userID uuid.UUID, target Target) (*Booking, error)

	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error)
	GetVendorBookings(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]Booking, error)
}

type service struct {
	repo       Repository
	points     PointsLedger
	conversion ConversionSource
	counter    QuantityInventory
	seats      SeatInventory
	events     EventStore
	venues     VenueStore
	notifier   Notifier
}

func NewService(
	repo Repository,
	points PointsLedger,
	conversion ConversionSource,
	counter QuantityInventory,
	seatInv SeatInventory,
	eventStore EventStore,
	venueStore VenueStore,
	notifier Notifier,
) Service {
	return &service{
		repo:       repo,
		points:     points,
		conversion: conversion,
		counter:    counter,
		seats:      seatInv,
		events:     eventStore,
		venues:     venueStore,
		notifier:   notifier,
	}
}

// PointsForAmount converts a currency amount to points at the given rate
// (points per currency unit), rounding half up.
func PointsForAmount(amount float64, rate int) int64 {
	return int64(math.Floor(amount*float64(rate) + 0.5))
}

// priced is the resolved purchase before any side effect happens.
type priced struct {
	vendorID uuid.UUID
	amount   float64
}

func (s *service) resolveTarget(ctx context.Context, target Target) (*priced, error) {
	switch target.Type {
	case TargetVenue:
		if target.DurationHours < 1 {
			return nil, fmt.Errorf("duration must be at least 1 hour")
		}
		if target.BookingDate.IsZero() {
			return nil, fmt.Errorf("booking date is required for venue bookings")
		}
		venue, err := s.venues.GetVenueByID(ctx, target.VenueID)
		if err != nil {
			return nil, err
		}
		if !venue.IsActive {
			return nil, fmt.Errorf("venue %s is not active: %w", venue.ID, apperr.ErrInvalidState)
		}
		return &priced{
			vendorID: venue.VendorID,
			amount:   venue.PricePerHour * float64(target.DurationHours),
		}, nil

	case TargetEvent:
		if target.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1")
		}
		event, err := s.bookableEvent(ctx, target.EventID, events.BookingTypeQuantity)
		if err != nil {
			return nil, err
		}
		return &priced{
			vendorID: event.VendorID,
			amount:   event.PricePerTicket * float64(target.Quantity),
		}, nil

	case TargetSeats:
		if len(target.SeatIDs) == 0 {
			return nil, fmt.Errorf("at least one seat is required")
		}
		event, err := s.bookableEvent(ctx, target.EventID, events.BookingTypeSeatSelection)
		if err != nil {
			return nil, err
		}
		amount, err := s.seats.Quote(ctx, target.EventID, target.SeatIDs)
		if err != nil {
			return nil, err
		}
		return &priced{vendorID: event.VendorID, amount: amount}, nil

	default:
		return nil, fmt.Errorf("unknown booking target type %q", target.Type)
	}
}

func (s *service) bookableEvent(ctx context.Context, eventID uuid.UUID, wantType events.BookingType) (*events.Event, error) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive || event.IsCancelled {
		return nil, fmt.Errorf("event %s is not open for booking: %w", eventID, apperr.ErrInvalidState)
	}
	if event.BookingType != wantType {
		return nil, fmt.Errorf("event %s is a %s event: %w", eventID, event.BookingType, apperr.ErrInvalidState)
	}
	return event, nil
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, target Target) (*Booking, error) {
	log := logger.GetDefault()

	resolved, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	rate, err := s.conversion.ConversionRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion rate: %w", err)
	}
	points := PointsForAmount(resolved.amount, rate)
	totalPoints := points + PlatformFeePoints

	buyer, err := s.points.GetAccountByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buyer has no points account: %w", err)
	}
	vendor, err := s.points.GetAccountByOwner(ctx, resolved.vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendor has no points account: %w", err)
	}
	// Early check so we fail before touching inventory; the debit below
	// re-checks inside the account's critical section.
	if buyer.Balance < totalPoints {
		return nil, fmt.Errorf("need %d points, have %d: %w",
			totalPoints, buyer.Balance, apperr.ErrInsufficientBalance)
	}

	bookingID := uuid.New()
	ref, err := generateBookingRef()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	releaseInventory, quantity, err := s.reserveInventory(ctx, target, bookingID)
	if err != nil {
		return nil, err
	}

	compensate := func(steps ...func() error) {
		for _, step := range steps {
			if cerr := step(); cerr != nil {
				log.Error("booking compensation step failed",
					"booking_id", bookingID, "error", cerr)
			}
		}
	}

	if _, err := s.points.Debit(ctx, buyer.ID, points, ledger.ReasonBookingPayment, &bookingID); err != nil {
		compensate(releaseInventory)
		return nil, err
	}
	if _, err := s.points.Debit(ctx, buyer.ID, PlatformFeePoints, ledger.ReasonPlatformFee, &bookingID); err != nil {
		compensate(func() error {
			_, cerr := s.points.Credit(ctx, buyer.ID, points, ledger.ReasonRefund, &bookingID)
			return cerr
		}, releaseInventory)
		return nil, err
	}
	if _, err := s.points.Credit(ctx, vendor.ID, points, ledger.ReasonVendorEarning, &bookingID); err != nil {
		compensate(func() error {
			_, cerr := s.points.Credit(ctx, buyer.ID, totalPoints, ledger.ReasonRefund, &bookingID)
			return cerr
		}, releaseInventory)
		return nil, err
	}

	booking := &Booking{
		ID:            bookingID,
		BookingRef:    ref,
		UserID:        userID,
		VendorID:      resolved.vendorID,
		TargetType:    target.Type,
		Quantity:      quantity,
		DurationHours: target.DurationHours,
		TotalAmount:   resolved.amount,
		PointsUsed:    points,
		FeePoints:     PlatformFeePoints,
		Status:        StatusConfirmed,
	}
	switch target.Type {
	case TargetVenue:
		venueID := target.VenueID
		booking.VenueID = &venueID
		bookingDate := target.BookingDate
		booking.BookingDate = &bookingDate
	case TargetEvent, TargetSeats:
		eventID := target.EventID
		booking.EventID = &eventID
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		compensate(func() error {
			_, cerr := s.points.Credit(ctx, buyer.ID, totalPoints, ledger.ReasonRefund, &bookingID)
			return cerr
		}, func() error {
			_, cerr := s.points.DebitUpTo(ctx, vendor.ID, points, ledger.ReasonRefundReversal, &bookingID)
			return cerr
		}, releaseInventory)
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, booking); err != nil {
			log.Warn("failed to publish booking confirmation",
				"booking_id", booking.ID, "error", err)
		}
	}
	log.LogBookingCreated(ctx, booking.ID.String(), eventIDString(booking), userID.String())

	return booking, nil
}

// reserveInventory takes the units the target needs and returns the matching
// release function for compensation. Venue bookings hold no inventory.
func (s *service) reserveInventory(ctx context.Context, target Target, bookingID uuid.UUID) (func() error, int, error) {
	noop := func() error { return nil }

	switch target.Type {
	case TargetVenue:
		return noop, 0, nil

	case TargetEvent:
		if err := s.counter.Reserve(ctx, target.EventID, target.Quantity); err != nil {
			return nil, 0, err
		}
		eventID := target.EventID
		qty := target.Quantity
		return func() error {
			return s.counter.Release(context.WithoutCancel(ctx), eventID, qty)
		}, qty, nil

	case TargetSeats:
		if _, err := s.seats.Reserve(ctx, target.EventID, target.SeatIDs, bookingID); err != nil {
			return nil, 0, err
		}
		return func() error {
			_, err := s.seats.ReleaseByBooking(context.WithoutCancel(ctx), bookingID)
			return err
		}, len(target.SeatIDs), nil

	default:
		return nil, 0, fmt.Errorf("unknown booking target type %q", target.Type)
	}
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	return s.repo.GetByUser(ctx, userID, limit, offset)
}

func (s *service) GetVendorBookings(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]Booking, error) {
	return s.repo.GetByVendor(ctx, vendorID, limit, offset)
}

func eventIDString(b *Booking) string {
	if b.EventID != nil {
		return b.EventID.String()
	}
	return ""
}

// generateBookingRef builds a human-readable unique reference
func generateBookingRef() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}
	return fmt.Sprintf("BKG-%s-%s", time.Now().Format("20060102"), string(randomPart)), nil
}
