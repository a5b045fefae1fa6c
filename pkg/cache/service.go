package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventvenue/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent. Callers fall
// through to the backing store.
var ErrCacheMiss = errors.New("cache miss")

// Service is the read-through cache for event listings, venue details and
// the conversion rate. Values are stored JSON-encoded.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) bool

	// GetOrSet reads through the cache: on a miss it runs the fetcher,
	// stores the result under key and decodes it into dest.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error

	Ping(ctx context.Context) error
}

type service struct {
	client *redis.Client
}

func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// DeletePattern removes every key matching the glob pattern. Used to
// invalidate listing pages after an event mutation.
func (s *service) DeletePattern(ctx context.Context, pattern string) error {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete pattern %s: %w", pattern, err)
	}
	return nil
}

func (s *service) Exists(ctx context.Context, key string) bool {
	result, err := s.client.Exists(ctx, key).Result()
	return err == nil && result > 0
}

func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Redis trouble is not worth failing the read over.
		logger.GetDefault().Warn("cache read failed, fetching from source", "key", key, "error", err)
	}

	data, err := fetcher()
	if err != nil {
		return fmt.Errorf("fetcher error: %w", err)
	}

	// Cache fill is best effort and off the request path.
	go func() {
		if setErr := s.Set(context.Background(), key, data, ttl); setErr != nil {
			logger.GetDefault().Warn("cache fill failed", "key", key, "error", setErr)
		}
	}()

	// Round-trip through JSON so dest sees the same shape a cache hit
	// would produce.
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return json.Unmarshal(encoded, dest)
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
