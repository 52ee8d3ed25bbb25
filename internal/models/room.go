package models

import (
	"fmt"
	"strings"
	"time"
)

type Room struct {
	ID         string    `json:"id" yaml:"id"`
	RoomNumber string    `json:"room_number" yaml:"room_number"`
	Capacity   int       `json:"capacity" yaml:"capacity"`
	Status     string    `json:"status" yaml:"status"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"-"`
}

// Validate checks field-level constraints. Uniqueness of the room number
// is enforced by the store.
func (r *Room) Validate() error {
	r.RoomNumber = strings.TrimSpace(r.RoomNumber)
	if r.RoomNumber == "" {
		return NewValidationError("room_number", "room number is required")
	}
	if r.Capacity < MinRoomCapacity || r.Capacity > MaxRoomCapacity {
		return NewValidationError("capacity",
			fmt.Sprintf("capacity must be between %d and %d", MinRoomCapacity, MaxRoomCapacity))
	}
	if r.Status == "" {
		r.Status = RoomAvailable
	}
	if !IsRoomStatus(r.Status) {
		return NewValidationError("status", fmt.Sprintf("unknown room status %q", r.Status))
	}
	return nil
}
