package apperr

import "errors"

// Sentinel errors for the booking and ledger core. Services wrap these with
// fmt.Errorf("...: %w", err) so controllers can map them with errors.Is.
var (
	// ErrInsufficientBalance means the buyer does not hold enough points.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientInventory means the requested quantity exceeds the
	// tickets currently available for the event.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrSeatUnavailable means at least one requested seat is not AVAILABLE.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrInventoryMismatch means a release request does not match the
	// current owner of the inventory (wrong booking reference).
	ErrInventoryMismatch = errors.New("inventory mismatch")

	// ErrNotFound means a booking, event, venue or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is not legal in the entity's
	// current state (e.g. approving an already-resolved request).
	ErrInvalidState = errors.New("invalid state")

	// ErrInternalInconsistency means a core invariant is broken (e.g. a
	// refund computed against a missing event, or a counter exceeding
	// capacity). Never swallowed: logged at error level and returned.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// IsValidation reports whether err is a normal business rejection that
// should surface to the end user, as opposed to an internal fault.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientInventory) ||
		errors.Is(err, ErrSeatUnavailable) ||
		errors.Is(err, ErrInventoryMismatch) ||
		errors.Is(err, ErrInvalidState)
}
