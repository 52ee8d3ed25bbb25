package repository

import (
	"context"
	"sync"
	"time"

	"karabook/internal/models"
)

type MemoryScheduleCache struct {
	days sync.Map
	ttl  time.Duration
}

type dayEntry struct {
	bookings  []*models.Booking
	expiresAt time.Time
}

func NewMemoryScheduleCache(ttl time.Duration) *MemoryScheduleCache {
	return &MemoryScheduleCache{
		ttl: ttl,
	}
}

func (r *MemoryScheduleCache) GetDay(ctx context.Context, roomID string, day string) ([]*models.Booking, error) {
	val, ok := r.days.Load(scheduleKey(roomID, day))
	if !ok {
		return nil, nil
	}
	entry := val.(*dayEntry)
	if time.Now().After(entry.expiresAt) {
		r.days.Delete(scheduleKey(roomID, day))
		return nil, nil
	}
	return entry.bookings, nil
}

func (r *MemoryScheduleCache) SetDay(ctx context.Context, roomID string, day string, bookings []*models.Booking) error {
	r.days.Store(scheduleKey(roomID, day), &dayEntry{
		bookings:  bookings,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryScheduleCache) InvalidateDay(ctx context.Context, roomID string, day string) error {
	r.days.Delete(scheduleKey(roomID, day))
	return nil
}
