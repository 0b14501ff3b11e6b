package repository

import (
	"context"
	"sync/atomic"
	"time"

	"hotelier/internal/domain"
	"hotelier/internal/models"

	"github.com/rs/zerolog"
)

// FailoverAvailabilityCache prefers the primary (redis) cache and drops to
// the in-memory fallback when the primary errors. The primary is retried
// after a minute.
type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverAvailabilityCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary availability cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverAvailabilityCache) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverAvailabilityCache) Get(ctx context.Context, key string) ([]models.HotelAvailability, bool, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		hotels, ok, err := r.primary.Get(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return hotels, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverAvailabilityCache) Set(ctx context.Context, key string, hotels []models.HotelAvailability, ttl time.Duration) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.Set(ctx, key, hotels, ttl)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, key, hotels, ttl)
}

// Invalidate flushes both layers; a booking must not leave stale positives
// in either.
func (r *FailoverAvailabilityCache) Invalidate(ctx context.Context) error {
	fallbackErr := r.fallback.Invalidate(ctx)
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		if err := r.primary.Invalidate(ctx); err != nil {
			r.markDown(err)
			return err
		}
		r.isDown.Store(false)
	}
	return fallbackErr
}
