package settings

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	conversionRateCacheKey = "eventvenue:settings:conversion_rate"
	conversionRateCacheTTL = 5 * time.Minute
)

// Service interface defines the contract for system settings
type Service interface {
	// ConversionRate returns points per currency unit, always >= 1.
	ConversionRate(ctx context.Context) (int, error)
	UpdateConversionRate(ctx context.Context, adminID uuid.UUID, pointsPerCurrencyUnit int) (*SystemSettings, error)
	Get(ctx context.Context) (*SystemSettings, error)
}

type service struct {
	repo  Repository
	cache *redis.Client // optional; nil disables caching
}

// NewService creates a new settings service instance
func NewService(repo Repository, cache *redis.Client) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) ConversionRate(ctx context.Context) (int, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, conversionRateCacheKey).Result(); err == nil {
			if rate, err := strconv.Atoi(cached); err == nil && rate >= 1 {
				return rate, nil
			}
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	rate := settings.PointsPerCurrencyUnit
	if rate < 1 {
		rate = 1
	}

	if s.cache != nil {
		// Best effort; a cache miss just means another DB read.
		s.cache.Set(ctx, conversionRateCacheKey, strconv.Itoa(rate), conversionRateCacheTTL)
	}
	return rate, nil
}

func (s *service) UpdateConversionRate(ctx context.Context, adminID uuid.UUID, pointsPerCurrencyUnit int) (*SystemSettings, error) {
	if pointsPerCurrencyUnit < 1 {
		return nil, fmt.Errorf("conversion rate must be >= 1, got %d", pointsPerCurrencyUnit)
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings.PointsPerCurrencyUnit = pointsPerCurrencyUnit
	settings.UpdatedBy = &adminID
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	if s.cache != nil {
		s.cache.Del(ctx, conversionRateCacheKey)
	}
	return settings, nil
}

func (s *service) Get(ctx context.Context) (*SystemSettings, error) {
	return s.repo.Get(ctx)
}
