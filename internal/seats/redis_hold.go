package seats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// HoldStore keeps short-lived advisory seat holds in Redis. A hold lets a
// buyer keep a seat set to themselves while they review the purchase; it is
// not the source of truth, the row-locked reserve still decides ownership.
type HoldStore struct {
	redis *redis.Client
}

// NewHoldStore creates a hold store backed by the given Redis client.
func NewHoldStore(client *redis.Client) *HoldStore {
	return &HoldStore{redis: client}
}

// Lua script for atomic hold acquisition: either every seat is free and all
// of them get held, or none are touched.
const luaHoldSeats = `
-- KEYS[1] = hold_id
-- ARGV[1] = user_id
-- ARGV[2] = event_id
-- ARGV[3] = ttl_seconds
-- ARGV[4..N] = seat_ids

local hold_id = KEYS[1]
local user_id = ARGV[1]
local event_id = ARGV[2]
local ttl = tonumber(ARGV[3])

for i = 4, #ARGV do
    if redis.call("EXISTS", "seat_hold:" .. ARGV[i]) == 1 then
        return {0, ARGV[i]}
    end
end

local hold_key = "hold:" .. hold_id
local hold_seats_key = "hold_seats:" .. hold_id

redis.call("HMSET", hold_key,
    "user_id", user_id,
    "event_id", event_id,
    "seat_count", #ARGV - 3
)
redis.call("EXPIRE", hold_key, ttl)

for i = 4, #ARGV do
    redis.call("SETEX", "seat_hold:" .. ARGV[i], ttl, user_id .. ":" .. hold_id)
    redis.call("SADD", hold_seats_key, ARGV[i])
end
redis.call("EXPIRE", hold_seats_key, ttl)

return {1, "success"}
`

// Lua script for atomic hold release.
const luaReleaseHold = `
-- KEYS[1] = hold_id
local hold_id = KEYS[1]
local hold_key = "hold:" .. hold_id
local hold_seats_key = "hold_seats:" .. hold_id

if redis.call("EXISTS", hold_key) == 0 then
    return {0, "hold_not_found"}
end

local seat_ids = redis.call("SMEMBERS", hold_seats_key)
for i = 1, #seat_ids do
    redis.call("DEL", "seat_hold:" .. seat_ids[i])
end
redis.call("DEL", hold_seats_key)
redis.call("DEL", hold_key)

return {1, "success"}
`

var (
	holdSeatsScript   = redis.NewScript(luaHoldSeats)
	releaseHoldScript = redis.NewScript(luaReleaseHold)
)

// PreloadScripts loads the Lua scripts into the Redis script cache so the
// first hold does not pay the load cost.
func (h *HoldStore) PreloadScripts(ctx context.Context) error {
	if err := holdSeatsScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load hold script: %w", err)
	}
	if err := releaseHoldScript.Load(ctx, h.redis).Err(); err != nil {
		return fmt.Errorf("failed to load release script: %w", err)
	}
	return nil
}

// Hold atomically holds all seats for the TTL, or none of them. Returns
// the generated hold id.
func (h *HoldStore) Hold(ctx context.Context, userID, eventID uuid.UUID, seatIDs []uuid.UUID, ttl time.Duration) (string, error) {
	holdID := fmt.Sprintf("hold_%s", uuid.New().String())

	args := make([]interface{}, 0, len(seatIDs)+3)
	args = append(args, userID.String(), eventID.String(), int(ttl.Seconds()))
	for _, id := range seatIDs {
		args = append(args, id.String())
	}

	result, err := holdSeatsScript.Run(ctx, h.redis, []string{holdID}, args...).Result()
	if err != nil {
		return "", fmt.Errorf("hold script failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return "", fmt.Errorf("unexpected hold script result: %v", result)
	}
	if status, _ := values[0].(int64); status != 1 {
		return "", fmt.Errorf("seat %v is already held", values[1])
	}
	return holdID, nil
}

// Release frees every seat of the hold. Releasing an expired or unknown
// hold is a no-op.
func (h *HoldStore) Release(ctx context.Context, holdID string) error {
	_, err := releaseHoldScript.Run(ctx, h.redis, []string{holdID}).Result()
	if err != nil {
		return fmt.Errorf("release script failed: %w", err)
	}
	return nil
}

// HeldBy reports the "user:hold" owner token of a seat, or "" if unheld.
func (h *HoldStore) HeldBy(ctx context.Context, seatID uuid.UUID) (string, error) {
	value, err := h.redis.Get(ctx, "seat_hold:"+seatID.String()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
