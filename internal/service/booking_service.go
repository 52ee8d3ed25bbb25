package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"karabook/internal/database"
	"karabook/internal/domain"
	"karabook/internal/events"
	"karabook/internal/metrics"
	"karabook/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store    domain.Store
	cache    domain.ScheduleCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	// Мьютекс на пару комната+день: валидация и запись идут под одним замком.
	slotLocks sync.Map
}

func NewBookingService(store domain.Store, cache domain.ScheduleCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *BookingService) slotLock(roomID string, day string) *sync.Mutex {
	key := roomID + "/" + day
	val, _ := s.slotLocks.LoadOrStore(key, &sync.Mutex{})
	return val.(*sync.Mutex)
}

// CheckConflict reports the booking occupying [start,end) in the room on
// the given date, or nil when the slot is free. Cancelled bookings and
// the booking identified by excludeID never count. The check always goes
// to the store; the schedule cache is not consulted here.
func (s *BookingService) CheckConflict(ctx context.Context, roomID string, date time.Time, start, end models.TimeOfDay, excludeID string) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, models.NewValidationError("end_time", "end time must be after start time")
	}
	return s.store.FindConflict(ctx, roomID, date, start, end, excludeID)
}

func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := booking.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, booking.RoomID, booking.CustomerID); err != nil {
		return nil, err
	}

	day := models.DayKey(booking.Date)
	lock := s.slotLock(booking.RoomID, day)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.CheckConflict(ctx, booking.RoomID, booking.Date, booking.StartTime, booking.EndTime, "")
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.IncBookingConflict()
		return nil, &ConflictError{Existing: existing}
	}

	// Store re-checks inside the insert transaction as well.
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.invalidateDay(ctx, booking.RoomID, day)
	s.publishEvent(events.EventBookingCreated, booking, "")

	return booking, nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, id string, patch *models.BookingPatch) (*models.Booking, error) {
	current, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := patch.ApplyTo(current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if merged.RoomID != current.RoomID || merged.CustomerID != current.CustomerID {
		if err := s.checkReferences(ctx, merged.RoomID, merged.CustomerID); err != nil {
			return nil, err
		}
	}

	oldDay := models.DayKey(current.Date)
	newDay := models.DayKey(merged.Date)

	if patch.TouchesSchedule() && merged.Status != models.StatusCancelled {
		unlock := s.lockSlots(current.RoomID, oldDay, merged.RoomID, newDay)
		defer unlock()

		existing, err := s.CheckConflict(ctx, merged.RoomID, merged.Date, merged.StartTime, merged.EndTime, merged.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			metrics.IncBookingConflict()
			return nil, &ConflictError{Existing: existing}
		}
	}

	if err := s.store.UpdateBooking(ctx, merged); err != nil {
		return nil, err
	}

	s.invalidateDay(ctx, current.RoomID, oldDay)
	if merged.RoomID != current.RoomID || newDay != oldDay {
		s.invalidateDay(ctx, merged.RoomID, newDay)
	}

	eventType := events.EventBookingUpdated
	if merged.Status == models.StatusCancelled && current.Status != models.StatusCancelled {
		eventType = events.EventBookingRejected
	}
	s.publishEvent(eventType, merged, "")

	return merged, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.invalidateDay(ctx, booking.RoomID, models.DayKey(booking.Date))
	s.publishEvent(events.EventBookingDeleted, booking, "")

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListBookings returns bookings matching the filter, sorted by date then
// start time. A room+date filter is served from the schedule cache when
// possible.
func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	if filter.RoomID != "" && filter.Date != nil {
		day := models.DayKey(*filter.Date)
		if cached, err := s.cache.GetDay(ctx, filter.RoomID, day); err == nil && cached != nil {
			return cached, nil
		}

		bookings, err := s.store.ListBookings(ctx, filter)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetDay(ctx, filter.RoomID, day, bookings); err != nil {
			s.logger.Warn().Err(err).Str("room_id", filter.RoomID).Str("day", day).Msg("schedule cache set failed")
		}
		return bookings, nil
	}

	return s.store.ListBookings(ctx, filter)
}

func (s *BookingService) checkReferences(ctx context.Context, roomID, customerID string) error {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		if err == database.ErrNotFound {
			return fmt.Errorf("room %s: %w", roomID, database.ErrNotFound)
		}
		return err
	}
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		if err == database.ErrNotFound {
			return fmt.Errorf("customer %s: %w", customerID, database.ErrNotFound)
		}
		return err
	}
	return nil
}

// lockSlots acquires the mutexes for both the old and the new slot in a
// fixed order so concurrent reschedules cannot deadlock.
func (s *BookingService) lockSlots(roomA, dayA, roomB, dayB string) func() {
	keyA := roomA + "/" + dayA
	keyB := roomB + "/" + dayB
	if keyA == keyB {
		lock := s.slotLock(roomA, dayA)
		lock.Lock()
		return lock.Unlock
	}
	if keyB < keyA {
		roomA, dayA, roomB, dayB = roomB, dayB, roomA, dayA
	}
	first := s.slotLock(roomA, dayA)
	second := s.slotLock(roomB, dayB)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

func (s *BookingService) invalidateDay(ctx context.Context, roomID, day string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDay(ctx, roomID, day); err != nil {
		s.logger.Warn().Err(err).Str("room_id", roomID).Str("day", day).Msg("schedule cache invalidate failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, reason string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		CustomerID: booking.CustomerID,
		Date:       models.DayKey(booking.Date),
		StartTime:  booking.StartTime.String(),
		EndTime:    booking.EndTime.String(),
		Status:     booking.Status,
		Reason:     reason,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
