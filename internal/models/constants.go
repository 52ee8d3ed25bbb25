package models

const (
	StatusBooked    = "booked"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	RoomAvailable = "available"
	RoomOccupied  = "occupied"
)

const (
	// MinRoomCapacity and MaxRoomCapacity bound a room to venue-realistic sizes.
	MinRoomCapacity = 1
	MaxRoomCapacity = 20

	// MaxCustomerNameLength limits the customer name field.
	MaxCustomerNameLength = 100

	// ScheduleCacheTTL время жизни кэша расписания дня
	ScheduleCacheTTL = 5 * 60 // 5 минут в секундах
)

// BookingStatuses lists every status a booking may carry. Transitions are
// free-form; only membership is enforced.
var BookingStatuses = []string{StatusBooked, StatusCompleted, StatusCancelled}

// RoomStatuses lists the allowed room states. The flag is informational
// and toggled manually, it is not derived from bookings.
var RoomStatuses = []string{RoomAvailable, RoomOccupied}

func IsBookingStatus(s string) bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsRoomStatus(s string) bool {
	for _, v := range RoomStatuses {
		if v == s {
			return true
		}
	}
	return false
}
