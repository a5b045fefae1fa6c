package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Centralizes cache keys and TTL values.
// Pattern: eventvenue:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour
	TTL_STATIC_MEDIUM = 12 * time.Hour
	TTL_STATIC_SHORT  = 6 * time.Hour
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_LONG   = 4 * time.Hour
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute
	TTL_DYNAMIC_SHORT  = 5 * time.Minute
	TTL_DYNAMIC_QUICK  = 2 * time.Minute
)

// Highly Dynamic (Micro TTL: real-time sensitive)
const (
	TTL_REALTIME_MEDIUM = 1 * time.Minute
	TTL_REALTIME_SHORT  = 30 * time.Second
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "eventvenue"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST     = CACHE_PREFIX + ":events:list"     // + :page:X:limit:Y
	CACHE_KEY_EVENTS_UPCOMING = CACHE_PREFIX + ":events:upcoming" // + :page:X:limit:Y
	CACHE_KEY_EVENT_DETAIL    = CACHE_PREFIX + ":events:detail:uuid:"
)

const (
	TTL_EVENT_LIST     = TTL_SEMI_STATIC_SHORT
	TTL_EVENT_UPCOMING = TTL_SEMI_STATIC_QUICK
	TTL_EVENT_DETAIL   = TTL_SEMI_STATIC_MEDIUM
)

// ================== VENUES MODULE ==================

const (
	CACHE_KEY_VENUES_LIST  = CACHE_PREFIX + ":venues:list" // + :page:X:limit:Y
	CACHE_KEY_VENUE_DETAIL = CACHE_PREFIX + ":venues:detail:uuid:"
)

const (
	TTL_VENUES_LIST  = TTL_SEMI_STATIC_SHORT
	TTL_VENUE_DETAIL = TTL_SEMI_STATIC_MEDIUM
)

// ================== SEATS MODULE ==================

const (
	CACHE_KEY_SEAT_LAYOUT = CACHE_PREFIX + ":seats:layout:event:" // + event-id
	CACHE_KEY_SEAT_HOLD   = CACHE_PREFIX + ":seats:hold:"         // + event-id:row-num
)

const (
	TTL_SEAT_LAYOUT = TTL_DYNAMIC_SHORT
)

// ================== SETTINGS MODULE ==================

const (
	CACHE_KEY_CONVERSION_RATE = CACHE_PREFIX + ":settings:conversion_rate"
)

const (
	TTL_CONVERSION_RATE = TTL_DYNAMIC_SHORT
)

// ================== BOOKINGS MODULE ==================

const (
	CACHE_KEY_USER_BOOKINGS  = CACHE_PREFIX + ":bookings:user:uuid:" // + user-id:page:X
	CACHE_KEY_BOOKING_DETAIL = CACHE_PREFIX + ":bookings:detail:uuid:"
)

const (
	TTL_USER_BOOKINGS  = TTL_DYNAMIC_MEDIUM
	TTL_BOOKING_DETAIL = TTL_DYNAMIC_MEDIUM
)

// ================== LEDGER MODULE ==================

const (
	CACHE_KEY_ACCOUNT_BALANCE = CACHE_PREFIX + ":ledger:balance:uuid:" // + account-id
)

const (
	TTL_ACCOUNT_BALANCE = TTL_REALTIME_SHORT
)

// ================== HELPER FUNCTIONS ==================

func BuildEventListKey(page, limit int) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_EVENTS_LIST, page, limit)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildVenueDetailKey(venueID string) string {
	return CACHE_KEY_VENUE_DETAIL + venueID
}

func BuildSeatHoldKey(eventID, seatKey string) string {
	return CACHE_KEY_SEAT_HOLD + eventID + ":" + seatKey
}

func BuildUserBookingsKey(userID string, page int) string {
	return fmt.Sprintf("%s%s:page:%d", CACHE_KEY_USER_BOOKINGS, userID, page)
}

func BuildAccountBalanceKey(accountID string) string {
	return CACHE_KEY_ACCOUNT_BALANCE + accountID
}
