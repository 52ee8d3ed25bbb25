package service

import (
	"context"
	"time"

	"karabook/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRoom(ctx context.Context, room *models.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockStore) ListRooms(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *mockStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockStore) DeleteRoom(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) SeedRooms(ctx context.Context, rooms []models.Room) error {
	return m.Called(ctx, rooms).Error(0)
}

func (m *mockStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *mockStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *mockStore) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockStore) DeleteCustomer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockStore) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *mockStore) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockStore) ListByRoomAndDate(ctx context.Context, roomID string, date time.Time, excludeID string) ([]*models.Booking, error) {
	args := m.Called(ctx, roomID, date, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockStore) FindConflict(ctx context.Context, roomID string, date time.Time, start, end models.TimeOfDay, excludeID string) (*models.Booking, error) {
	args := m.Called(ctx, roomID, date, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type mockScheduleCache struct {
	mock.Mock
}

func (m *mockScheduleCache) GetDay(ctx context.Context, roomID string, day string) ([]*models.Booking, error) {
	args := m.Called(ctx, roomID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockScheduleCache) SetDay(ctx context.Context, roomID string, day string, bookings []*models.Booking) error {
	return m.Called(ctx, roomID, day, bookings).Error(0)
}

func (m *mockScheduleCache) InvalidateDay(ctx context.Context, roomID string, day string) error {
	return m.Called(ctx, roomID, day).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
