package database

import "errors"

var (
	// ErrNotFound means the requested entity id does not exist. Reported
	// distinctly from validation failures.
	ErrNotFound = errors.New("not found")

	// ErrRoomNumberExists means the unique room number is already taken.
	ErrRoomNumberExists = errors.New("room number already exists")

	// ErrEmailExists means the unique customer email is already taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrTimeSlotConflict means a non-cancelled booking already occupies an
	// overlapping interval for the same room and day.
	ErrTimeSlotConflict = errors.New("room is already booked for this time slot")
)
