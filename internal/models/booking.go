package models

import (
	"fmt"
	"time"
)

type Booking struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	CustomerID string    `json:"customer_id"`
	Date       time.Time `json:"date"`
	StartTime  TimeOfDay `json:"start_time"`
	EndTime    TimeOfDay `json:"end_time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Reference snapshots filled on reads when the referenced entities
	// still exist. Deleting a room or customer does not cascade.
	Room     *Room     `json:"room,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

// BookingFilter narrows booking listings. Zero values mean "no filter".
type BookingFilter struct {
	Date   *time.Time
	RoomID string
}

// BookingPatch carries the fields of a partial update. Nil means "leave
// unchanged".
type BookingPatch struct {
	RoomID     *string
	CustomerID *string
	Date       *time.Time
	StartTime  *TimeOfDay
	EndTime    *TimeOfDay
	Status     *string
}

// ApplyTo merges the patch into a copy of current and returns it. The
// merged result is what the validator re-checks on update.
func (p *BookingPatch) ApplyTo(current *Booking) *Booking {
	merged := *current
	merged.Room = nil
	merged.Customer = nil
	if p.RoomID != nil {
		merged.RoomID = *p.RoomID
	}
	if p.CustomerID != nil {
		merged.CustomerID = *p.CustomerID
	}
	if p.Date != nil {
		merged.Date = DayOf(*p.Date)
	}
	if p.StartTime != nil {
		merged.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		merged.EndTime = *p.EndTime
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	return &merged
}

// TouchesSchedule reports whether the patch changes any field the
// conflict validator cares about.
func (p *BookingPatch) TouchesSchedule() bool {
	return p.RoomID != nil || p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

// ValidateTimeRange checks that both times parse and that the booking ends
// strictly after it starts within the same day. Bookings never span
// midnight. The check runs on every create and update, independent of
// conflict detection.
func (b *Booking) ValidateTimeRange() error {
	start, err := ParseTimeOfDay("start_time", string(b.StartTime))
	if err != nil {
		return err
	}
	end, err := ParseTimeOfDay("end_time", string(b.EndTime))
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return NewValidationError("end_time", "end time must be after start time")
	}
	b.StartTime = start
	b.EndTime = end
	return nil
}

// Validate checks required references, the time range and the status enum.
func (b *Booking) Validate() error {
	if b.RoomID == "" {
		return NewValidationError("room_id", "room id is required")
	}
	if b.CustomerID == "" {
		return NewValidationError("customer_id", "customer id is required")
	}
	if b.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if err := b.ValidateTimeRange(); err != nil {
		return err
	}
	if b.Status == "" {
		b.Status = StatusBooked
	}
	if !IsBookingStatus(b.Status) {
		return NewValidationError("status", fmt.Sprintf("unknown booking status %q", b.Status))
	}
	b.Date = DayOf(b.Date)
	return nil
}

// OverlapsWith reports whether two bookings collide as half-open
// intervals. Room and day filtering is the caller's job.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return Overlaps(b.StartTime, b.EndTime, other.StartTime, other.EndTime)
}
