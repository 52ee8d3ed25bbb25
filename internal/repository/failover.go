package repository

import (
	"context"
	"sync/atomic"
	"time"

	"karabook/internal/domain"
	"karabook/internal/metrics"
	"karabook/internal/models"

	"github.com/rs/zerolog"
)

type FailoverScheduleCache struct {
	primary   domain.ScheduleCache
	fallback  domain.ScheduleCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverScheduleCache(primary, fallback domain.ScheduleCache, logger *zerolog.Logger) *FailoverScheduleCache {
	return &FailoverScheduleCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverScheduleCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary schedule cache failed, falling back to memory")
	metrics.IncCacheFailover()
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverScheduleCache) GetDay(ctx context.Context, roomID string, day string) ([]*models.Booking, error) {
	if !r.isDown.Load() {
		bookings, err := r.primary.GetDay(ctx, roomID, day)
		if err == nil {
			return bookings, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		bookings, err := r.primary.GetDay(ctx, roomID, day)
		if err == nil {
			r.isDown.Store(false)
			return bookings, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetDay(ctx, roomID, day)
}

func (r *FailoverScheduleCache) SetDay(ctx context.Context, roomID string, day string, bookings []*models.Booking) error {
	if !r.isDown.Load() {
		err := r.primary.SetDay(ctx, roomID, day, bookings)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetDay(ctx, roomID, day, bookings)
}

func (r *FailoverScheduleCache) InvalidateDay(ctx context.Context, roomID string, day string) error {
	if !r.isDown.Load() {
		err := r.primary.InvalidateDay(ctx, roomID, day)
		if err == nil {
			// Keep the fallback coherent too; it may hold a stale day.
			_ = r.fallback.InvalidateDay(ctx, roomID, day)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.InvalidateDay(ctx, roomID, day)
}
