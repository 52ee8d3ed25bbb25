package service

import (
	"fmt"

	"karabook/internal/database"
	"karabook/internal/models"
)

// ConflictError carries the booking that occupies the requested slot.
// It unwraps to database.ErrTimeSlotConflict so callers can match with
// errors.Is.
type ConflictError struct {
	Existing *models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is already booked from %s to %s on %s (booking %s)",
		e.Existing.RoomID, e.Existing.StartTime, e.Existing.EndTime,
		models.DayKey(e.Existing.Date), e.Existing.ID)
}

func (e *ConflictError) Unwrap() error {
	return database.ErrTimeSlotConflict
}
