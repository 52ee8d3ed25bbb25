package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"karabook/internal/database"
	"karabook/internal/events"
	"karabook/internal/models"
	"karabook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingService(store *mockStore, cache *mockScheduleCache, bus *mockEventBus) *BookingService {
	logger := zerolog.New(io.Discard)
	return NewBookingService(store, cache, bus, &logger)
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	date := day("2026-03-01")

	t.Run("Success", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		bus := new(mockEventBus)
		svc := newBookingService(store, cache, bus)

		booking := &models.Booking{
			RoomID: "r-1", CustomerID: "c-1", Date: date,
			StartTime: "10:00", EndTime: "11:00",
		}

		store.On("GetRoom", ctx, "r-1").Return(&models.Room{ID: "r-1"}, nil).Once()
		store.On("GetCustomer", ctx, "c-1").Return(&models.Customer{ID: "c-1"}, nil).Once()
		store.On("FindConflict", ctx, "r-1", date, models.TimeOfDay("10:00"), models.TimeOfDay("11:00"), "").Return(nil, nil).Once()
		store.On("CreateBooking", ctx, booking).Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-1", "2026-03-01").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

		created, err := svc.CreateBooking(ctx, booking)
		require.NoError(t, err)
		assert.Equal(t, models.StatusBooked, created.Status)
		store.AssertExpectations(t)
		cache.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		existing := &models.Booking{
			ID: "b-0", RoomID: "r-1", Date: date,
			StartTime: "10:00", EndTime: "11:00", Status: models.StatusBooked,
		}

		store.On("GetRoom", ctx, "r-1").Return(&models.Room{ID: "r-1"}, nil).Once()
		store.On("GetCustomer", ctx, "c-1").Return(&models.Customer{ID: "c-1"}, nil).Once()
		store.On("FindConflict", ctx, "r-1", date, models.TimeOfDay("10:30"), models.TimeOfDay("11:30"), "").Return(existing, nil).Once()

		_, err := svc.CreateBooking(ctx, &models.Booking{
			RoomID: "r-1", CustomerID: "c-1", Date: date,
			StartTime: "10:30", EndTime: "11:30",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, database.ErrTimeSlotConflict))

		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "b-0", conflict.Existing.ID)
		assert.Contains(t, err.Error(), "10:00")
		store.AssertExpectations(t)
	})

	t.Run("TouchingSlotAllowed", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		bus := new(mockEventBus)
		svc := newBookingService(store, cache, bus)

		booking := &models.Booking{
			RoomID: "r-1", CustomerID: "c-1", Date: date,
			StartTime: "11:00", EndTime: "12:00",
		}

		store.On("GetRoom", ctx, "r-1").Return(&models.Room{ID: "r-1"}, nil).Once()
		store.On("GetCustomer", ctx, "c-1").Return(&models.Customer{ID: "c-1"}, nil).Once()
		store.On("FindConflict", ctx, "r-1", date, models.TimeOfDay("11:00"), models.TimeOfDay("12:00"), "").Return(nil, nil).Once()
		store.On("CreateBooking", ctx, booking).Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-1", "2026-03-01").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

		_, err := svc.CreateBooking(ctx, booking)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		svc := newBookingService(new(mockStore), new(mockScheduleCache), new(mockEventBus))

		_, err := svc.CreateBooking(ctx, &models.Booking{
			RoomID: "r-1", CustomerID: "c-1", Date: date,
			StartTime: "12:00", EndTime: "11:00",
		})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "end_time", verr.Field)
	})

	t.Run("RoomNotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		store.On("GetRoom", ctx, "r-missing").Return(nil, database.ErrNotFound).Once()

		_, err := svc.CreateBooking(ctx, &models.Booking{
			RoomID: "r-missing", CustomerID: "c-1", Date: date,
			StartTime: "10:00", EndTime: "11:00",
		})
		assert.True(t, errors.Is(err, database.ErrNotFound))
		store.AssertExpectations(t)
	})

	t.Run("CustomerNotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		store.On("GetRoom", ctx, "r-1").Return(&models.Room{ID: "r-1"}, nil).Once()
		store.On("GetCustomer", ctx, "c-missing").Return(nil, database.ErrNotFound).Once()

		_, err := svc.CreateBooking(ctx, &models.Booking{
			RoomID: "r-1", CustomerID: "c-missing", Date: date,
			StartTime: "10:00", EndTime: "11:00",
		})
		assert.True(t, errors.Is(err, database.ErrNotFound))
		store.AssertExpectations(t)
	})
}

func TestUpdateBooking(t *testing.T) {
	ctx := context.Background()
	date := day("2026-03-01")

	current := func() *models.Booking {
		return &models.Booking{
			ID: "b-1", RoomID: "r-1", CustomerID: "c-1", Date: date,
			StartTime: "10:00", EndTime: "11:00", Status: models.StatusBooked,
		}
	}

	t.Run("MoveTimeExcludesSelf", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		bus := new(mockEventBus)
		svc := newBookingService(store, cache, bus)

		newStart := models.TimeOfDay("10:30")
		newEnd := models.TimeOfDay("11:30")

		store.On("GetBooking", ctx, "b-1").Return(current(), nil).Once()
		store.On("FindConflict", ctx, "r-1", date, newStart, newEnd, "b-1").Return(nil, nil).Once()
		store.On("UpdateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ID == "b-1" && b.StartTime == newStart && b.EndTime == newEnd
		})).Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-1", "2026-03-01").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingUpdated, mock.Anything).Return(nil).Once()

		updated, err := svc.UpdateBooking(ctx, "b-1", &models.BookingPatch{StartTime: &newStart, EndTime: &newEnd})
		require.NoError(t, err)
		assert.Equal(t, newStart, updated.StartTime)
		store.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("MoveTimeConflict", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		newStart := models.TimeOfDay("14:00")
		newEnd := models.TimeOfDay("15:00")
		other := &models.Booking{ID: "b-2", RoomID: "r-1", Date: date, StartTime: "14:30", EndTime: "16:00"}

		store.On("GetBooking", ctx, "b-1").Return(current(), nil).Once()
		store.On("FindConflict", ctx, "r-1", date, newStart, newEnd, "b-1").Return(other, nil).Once()

		_, err := svc.UpdateBooking(ctx, "b-1", &models.BookingPatch{StartTime: &newStart, EndTime: &newEnd})
		assert.True(t, errors.Is(err, database.ErrTimeSlotConflict))
		store.AssertExpectations(t)
	})

	t.Run("StatusOnlySkipsConflictCheck", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		bus := new(mockEventBus)
		svc := newBookingService(store, cache, bus)

		cancelled := models.StatusCancelled
		store.On("GetBooking", ctx, "b-1").Return(current(), nil).Once()
		store.On("UpdateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.StatusCancelled
		})).Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-1", "2026-03-01").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingRejected, mock.Anything).Return(nil).Once()

		updated, err := svc.UpdateBooking(ctx, "b-1", &models.BookingPatch{Status: &cancelled})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, updated.Status)
		store.AssertNotCalled(t, "FindConflict", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("MoveRoomInvalidatesBothDays", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		bus := new(mockEventBus)
		svc := newBookingService(store, cache, bus)

		newRoom := "r-2"
		store.On("GetBooking", ctx, "b-1").Return(current(), nil).Once()
		store.On("GetRoom", ctx, "r-2").Return(&models.Room{ID: "r-2"}, nil).Once()
		store.On("GetCustomer", ctx, "c-1").Return(&models.Customer{ID: "c-1"}, nil).Once()
		store.On("FindConflict", ctx, "r-2", date, models.TimeOfDay("10:00"), models.TimeOfDay("11:00"), "b-1").Return(nil, nil).Once()
		store.On("UpdateBooking", ctx, mock.Anything).Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-1", "2026-03-01").Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-2", "2026-03-01").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingUpdated, mock.Anything).Return(nil).Once()

		_, err := svc.UpdateBooking(ctx, "b-1", &models.BookingPatch{RoomID: &newRoom})
		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		store.On("GetBooking", ctx, "b-missing").Return(nil, database.ErrNotFound).Once()

		_, err := svc.UpdateBooking(ctx, "b-missing", &models.BookingPatch{})
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()
	date := day("2026-03-01")

	t.Run("Success", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		bus := new(mockEventBus)
		svc := newBookingService(store, cache, bus)

		booking := &models.Booking{ID: "b-1", RoomID: "r-1", CustomerID: "c-1", Date: date, StartTime: "10:00", EndTime: "11:00"}
		store.On("GetBooking", ctx, "b-1").Return(booking, nil).Once()
		store.On("DeleteBooking", ctx, "b-1").Return(nil).Once()
		cache.On("InvalidateDay", ctx, "r-1", "2026-03-01").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingDeleted, mock.Anything).Return(nil).Once()

		err := svc.DeleteBooking(ctx, "b-1")
		require.NoError(t, err)
		store.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		store.On("GetBooking", ctx, "b-missing").Return(nil, database.ErrNotFound).Once()

		err := svc.DeleteBooking(ctx, "b-missing")
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})
}

func TestListBookingsCache(t *testing.T) {
	ctx := context.Background()
	date := day("2026-03-01")

	t.Run("CacheHit", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		svc := newBookingService(store, cache, new(mockEventBus))

		cached := []*models.Booking{{ID: "b-1"}}
		cache.On("GetDay", ctx, "r-1", "2026-03-01").Return(cached, nil).Once()

		got, err := svc.ListBookings(ctx, models.BookingFilter{RoomID: "r-1", Date: &date})
		require.NoError(t, err)
		assert.Equal(t, cached, got)
		store.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
	})

	t.Run("CacheMissFillsCache", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		svc := newBookingService(store, cache, new(mockEventBus))

		filter := models.BookingFilter{RoomID: "r-1", Date: &date}
		bookings := []*models.Booking{{ID: "b-1"}, {ID: "b-2"}}

		cache.On("GetDay", ctx, "r-1", "2026-03-01").Return(nil, nil).Once()
		store.On("ListBookings", ctx, filter).Return(bookings, nil).Once()
		cache.On("SetDay", ctx, "r-1", "2026-03-01", bookings).Return(nil).Once()

		got, err := svc.ListBookings(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, bookings, got)
		cache.AssertExpectations(t)
	})

	t.Run("UnfilteredSkipsCache", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockScheduleCache)
		svc := newBookingService(store, cache, new(mockEventBus))

		store.On("ListBookings", ctx, models.BookingFilter{}).Return([]*models.Booking{}, nil).Once()

		_, err := svc.ListBookings(ctx, models.BookingFilter{})
		require.NoError(t, err)
		cache.AssertNotCalled(t, "GetDay", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckConflict(t *testing.T) {
	ctx := context.Background()
	date := day("2026-03-01")

	t.Run("InvalidRange", func(t *testing.T) {
		svc := newBookingService(new(mockStore), new(mockScheduleCache), new(mockEventBus))

		_, err := svc.CheckConflict(ctx, "r-1", date, "11:00", "11:00", "")
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("FreeSlot", func(t *testing.T) {
		store := new(mockStore)
		svc := newBookingService(store, new(mockScheduleCache), new(mockEventBus))

		store.On("FindConflict", ctx, "r-1", date, models.TimeOfDay("09:00"), models.TimeOfDay("10:00"), "").Return(nil, nil).Once()

		got, err := svc.CheckConflict(ctx, "r-1", date, "09:00", "10:00", "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

// Hammers one slot with parallel creates against a real sqlite store;
// the per-room-per-day lock plus the in-transaction re-check must let
// exactly one through.
func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	room := &models.Room{RoomNumber: "301", Capacity: 6, Status: models.RoomAvailable}
	require.NoError(t, db.CreateRoom(ctx, room))
	customer := &models.Customer{Name: "Race Customer", Phone: "+79160000001", Email: "race@example.com"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	svc := NewBookingService(db, repository.NewMemoryScheduleCache(time.Minute), events.NewEventBus(), &logger)

	const workers = 16
	date := day("2026-04-01")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(ctx, &models.Booking{
				RoomID:     room.ID,
				CustomerID: customer.ID,
				Date:       date,
				StartTime:  "10:00",
				EndTime:    "11:00",
			})
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, werr := range errs {
		switch {
		case werr == nil:
			created++
		case errors.Is(werr, database.ErrTimeSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", werr)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)

	stored, err := db.ListBookings(ctx, models.BookingFilter{RoomID: room.ID, Date: &date})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
