package cancellation

import (
	"math"
	"time"
)

// Refund percentages by cause. Vendor-initiated disruption always
// dominates the time-based tiers.
const (
	PctVendorCancelled = 100
	PctRescheduled     = 95
	PctEarly           = 100
	PctLate            = 75

	// EarlyCancelDays is the cutoff: cancelling at least this many whole
	// days before the target date refunds in full.
	EarlyCancelDays = 2
)

// RefundCause records which policy branch applied, for the audit record.
type RefundCause string

const (
	CauseVendorCancelled RefundCause = "VENDOR_CANCELLED"
	CauseRescheduled     RefundCause = "EVENT_RESCHEDULED"
	CauseEarly           RefundCause = "EARLY_CANCELLATION"
	CauseLate            RefundCause = "LATE_CANCELLATION"
)

// RefundPercentage resolves the policy. Priority: the vendor cancelled the
// event, then the vendor rescheduled it, then the time-based tiers against
// the target date.
func RefundPercentage(vendorCancelled, rescheduled bool, targetDate, now time.Time) (int, RefundCause) {
	if vendorCancelled {
		return PctVendorCancelled, CauseVendorCancelled
	}
	if rescheduled {
		return PctRescheduled, CauseRescheduled
	}
	if daysUntil(targetDate, now) >= EarlyCancelDays {
		return PctEarly, CauseEarly
	}
	return PctLate, CauseLate
}

// daysUntil counts calendar days between now and the target, not elapsed
// 24-hour periods. Cancelling late in the evening two dates before a
// morning event still counts as two days out.
func daysUntil(target, now time.Time) int {
	now = now.In(target.Location())
	target = time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	now = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(target.Sub(now).Hours() / 24)
}

// RefundAmount applies the percentage to a currency amount, rounding half
// up to two decimal places.
func RefundAmount(total float64, percentage int) float64 {
	raw := total * float64(percentage) / 100
	return math.Floor(raw*100+0.5) / 100
}
