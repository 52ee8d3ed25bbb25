package domain

import (
	"context"
	"time"

	"karabook/internal/models"
)

// Store is the persistence surface the services depend on. Handles are
// passed explicitly; there is no process-wide model registry.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	SeedRooms(ctx context.Context, rooms []models.Room) error

	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	ListByRoomAndDate(ctx context.Context, roomID string, date time.Time, excludeID string) ([]*models.Booking, error)
	FindConflict(ctx context.Context, roomID string, date time.Time, start, end models.TimeOfDay, excludeID string) (*models.Booking, error)
}

// ScheduleCache caches rendered day schedules keyed by room and day.
// Only read paths consult it; the conflict validator always goes to the
// store.
type ScheduleCache interface {
	GetDay(ctx context.Context, roomID string, day string) ([]*models.Booking, error)
	SetDay(ctx context.Context, roomID string, day string, bookings []*models.Booking) error
	InvalidateDay(ctx context.Context, roomID string, day string) error
}

// EventPublisher delivers booking lifecycle events to in-process
// subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch *models.BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	CheckConflict(ctx context.Context, roomID string, date time.Time, start, end models.TimeOfDay, excludeID string) (*models.Booking, error)
}

type RoomService interface {
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	UpdateRoom(ctx context.Context, id string, room *models.Room) (*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, customer *models.Customer) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
}
