package cancellation

import (
	"context"
	"fmt"
	"time"

	"eventvenue/internal/bookings"
	"eventvenue/internal/events"
	"eventvenue/internal/ledger"
	"eventvenue/internal/seats"
	"eventvenue/internal/shared/apperr"
	"eventvenue/pkg/logger"

	"github.com/google/uuid"
)

type EventStore interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

type PointsLedger interface {
	GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*ledger.Account, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (*ledger.Entry, error)
	DebitUpTo(ctx context.Context, accountID uuid.UUID, amount int64, reason string, ref *uuid.UUID) (int64, error)
}

type QuantityInventory interface {
	Release(ctx context.Context, eventID uuid.UUID, qty int) error
}

type SeatInventory interface {
	ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) ([]seats.Seat, error)
}

// Notifier publishes cancellation notifications; best effort.
type Notifier interface {
	BookingCancelled(ctx context.Context, booking *bookings.Booking, result *CancellationResult) error
}

// Service interface defines the contract for cancellation business logic
type Service interface {
	// CancelBooking resolves the refund policy, stamps the booking
	// CANCELLED, credits the buyer, claws the refunded points back from
	// the vendor (floored at zero) and returns the booking's inventory.
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, reason string) (*CancellationResult, error)

	// Preview computes the refund a cancellation would produce right now
	// without performing it.
	Preview(ctx context.Context, bookingID, userID uuid.UUID) (*CancellationResult, error)

	GetUserCancellations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Cancellation, error)
}

type service struct {
	repo        Repository
	bookingRepo bookings.Repository
	events      EventStore
	points      PointsLedger
	counter     QuantityInventory
	seats       SeatInventory
	notifier    Notifier
	now         func() time.Time
}

func NewService(
	repo Repository,
	bookingRepo bookings.Repository,
	eventStore EventStore,
	points PointsLedger,
	counter QuantityInventory,
	seatInv SeatInventory,
	notifier Notifier,
) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		events:      eventStore,
		points:      points,
		counter:     counter,
		seats:       seatInv,
		notifier:    notifier,
		now:         time.Now,
	}
}

// resolvePolicy works out the refund for a booking without side effects.
func (s *service) resolvePolicy(ctx context.Context, booking *bookings.Booking) (pct int, cause RefundCause, err error) {
	var (
		vendorCancelled bool
		rescheduled     bool
		targetDate      time.Time
	)

	switch booking.TargetType {
	case bookings.TargetVenue:
		if booking.BookingDate == nil {
			return 0, "", fmt.Errorf("venue booking %s has no booking date: %w",
				booking.ID, apperr.ErrInternalInconsistency)
		}
		targetDate = *booking.BookingDate

	case bookings.TargetEvent, bookings.TargetSeats:
		if booking.EventID == nil {
			return 0, "", fmt.Errorf("booking %s has no event reference: %w",
				booking.ID, apperr.ErrInternalInconsistency)
		}
		event, gerr := s.events.GetEventByID(ctx, *booking.EventID)
		if gerr != nil {
			// A confirmed booking pointing at a vanished event means the
			// stores disagree; surface loudly, never guess a refund.
			return 0, "", fmt.Errorf("event %s for booking %s: %v: %w",
				*booking.EventID, booking.ID, gerr, apperr.ErrInternalInconsistency)
		}
		vendorCancelled = event.IsCancelled
		rescheduled = event.WasRescheduled
		targetDate = event.EventDate

	default:
		return 0, "", fmt.Errorf("booking %s has unknown target type %q: %w",
			booking.ID, booking.TargetType, apperr.ErrInternalInconsistency)
	}

	pct, cause = RefundPercentage(vendorCancelled, rescheduled, targetDate, s.now())
	return pct, cause, nil
}

func (s *service) buildResult(booking *bookings.Booking, pct int, cause RefundCause) *CancellationResult {
	return &CancellationResult{
		BookingID:        booking.ID,
		Cause:            cause,
		RefundPercentage: pct,
		RefundAmount:     RefundAmount(booking.TotalAmount, pct),
		PointsRefunded:   ledger.RefundPoints(booking.PointsUsed, pct),
	}
}

func (s *service) Preview(ctx context.Context, bookingID, userID uuid.UUID) (*CancellationResult, error) {
	booking, err := s.loadCancellable(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	pct, cause, err := s.resolvePolicy(ctx, booking)
	if err != nil {
		return nil, err
	}
	return s.buildResult(booking, pct, cause), nil
}

func (s *service) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, reason string) (*CancellationResult, error) {
	log := logger.GetDefault()

	booking, err := s.loadCancellable(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	pct, cause, err := s.resolvePolicy(ctx, booking)
	if err != nil {
		log.Error("cancellation policy resolution failed",
			"booking_id", bookingID, "error", err)
		return nil, err
	}
	result := s.buildResult(booking, pct, cause)

	buyer, err := s.points.GetAccountByOwner(ctx, booking.UserID)
	if err != nil {
		return nil, fmt.Errorf("buyer has no points account: %w", err)
	}
	vendor, err := s.points.GetAccountByOwner(ctx, booking.VendorID)
	if err != nil {
		return nil, fmt.Errorf("vendor has no points account: %w", err)
	}

	now := s.now()
	booking.Status = bookings.StatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = reason
	booking.RefundAmount = result.RefundAmount
	booking.RefundPercentage = result.RefundPercentage
	booking.PointsRefunded = result.PointsRefunded
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	result.CancelledAt = now

	var vendorDebited int64
	if result.PointsRefunded > 0 {
		if _, err := s.points.Credit(ctx, buyer.ID, result.PointsRefunded, ledger.ReasonRefund, &booking.ID); err != nil {
			// The booking is already stamped; the refund must not be lost.
			log.Error("refund credit failed after cancellation",
				"booking_id", booking.ID, "points", result.PointsRefunded, "error", err)
			return nil, fmt.Errorf("booking cancelled but refund credit failed: %w", err)
		}
		vendorDebited, err = s.points.DebitUpTo(ctx, vendor.ID, result.PointsRefunded, ledger.ReasonRefundReversal, &booking.ID)
		if err != nil {
			log.Error("vendor clawback failed after refund",
				"booking_id", booking.ID, "error", err)
			return nil, fmt.Errorf("refund issued but vendor clawback failed: %w", err)
		}
	}

	s.releaseInventory(ctx, booking)

	record := &Cancellation{
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		VendorID:         booking.VendorID,
		Reason:           reason,
		Cause:            cause,
		RefundPercentage: result.RefundPercentage,
		RefundAmount:     result.RefundAmount,
		PointsRefunded:   result.PointsRefunded,
		VendorDebited:    vendorDebited,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		log.Warn("failed to write cancellation audit record",
			"booking_id", booking.ID, "error", err)
	}

	if s.notifier != nil {
		if err := s.notifier.BookingCancelled(ctx, booking, result); err != nil {
			log.Warn("failed to publish cancellation notification",
				"booking_id", booking.ID, "error", err)
		}
	}
	log.LogBookingCancelled(ctx, booking.ID.String(), eventIDString(booking), userID.String())

	return result, nil
}

func (s *service) loadCancellable(ctx context.Context, bookingID, userID uuid.UUID) (*bookings.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking %s does not belong to user %s: %w",
			bookingID, userID, apperr.ErrNotFound)
	}
	if booking.IsCancelled() {
		return nil, fmt.Errorf("booking %s is already cancelled: %w", bookingID, apperr.ErrInvalidState)
	}
	return booking, nil
}

// releaseInventory returns what the booking held. Failures are logged, not
// surfaced: the refund has already happened and the startup reconciliation
// pass repairs counter drift.
func (s *service) releaseInventory(ctx context.Context, booking *bookings.Booking) {
	log := logger.GetDefault()
	ctx = context.WithoutCancel(ctx)

	switch booking.TargetType {
	case bookings.TargetEvent:
		if booking.EventID != nil && booking.Quantity > 0 {
			if err := s.counter.Release(ctx, *booking.EventID, booking.Quantity); err != nil {
				log.Error("failed to release ticket inventory",
					"booking_id", booking.ID, "quantity", booking.Quantity, "error", err)
			}
		}
	case bookings.TargetSeats:
		if _, err := s.seats.ReleaseByBooking(ctx, booking.ID); err != nil {
			log.Error("failed to release seats",
				"booking_id", booking.ID, "error", err)
		}
	}
}

func (s *service) GetUserCancellations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Cancellation, error) {
	return s.repo.GetByUser(ctx, userID, limit, offset)
}

func eventIDString(b *bookings.Booking) string {
	if b.EventID != nil {
		return b.EventID.String()
	}
	return ""
}
