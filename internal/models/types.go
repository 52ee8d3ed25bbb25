package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	phoneRe     = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)
	emailRe     = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

// ValidationError reports malformed input on a single field. It is always
// surfaced to the caller as a rejected mutation, never coerced.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TimeOfDay is a zero-padded "HH:MM" wall-clock time. The fixed width makes
// lexicographic comparison equal to time comparison.
type TimeOfDay string

// ParseTimeOfDay validates and normalizes an HH:MM string. Single-digit
// hours are accepted on input ("9:30") and padded so stored values always
// compare correctly as strings.
func ParseTimeOfDay(field, raw string) (TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if !timeOfDayRe.MatchString(s) {
		return "", NewValidationError(field, fmt.Sprintf("invalid time format %q; expected HH:MM", raw))
	}
	if len(s) == 4 {
		s = "0" + s
	}
	return TimeOfDay(s), nil
}

func (t TimeOfDay) String() string { return string(t) }

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return string(t) < string(other) }

// Overlaps reports whether [start1,end1) and [start2,end2) intersect.
// Touching endpoints do not overlap: a slot ending 10:00 and one starting
// 10:00 coexist.
func Overlaps(start1, end1, start2, end2 TimeOfDay) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// Phone is a validated customer phone number.
type Phone string

func ParsePhone(raw string) (Phone, error) {
	s := strings.TrimSpace(raw)
	if !phoneRe.MatchString(s) {
		return "", NewValidationError("phone", fmt.Sprintf("invalid phone number %q", raw))
	}
	return Phone(s), nil
}

func (p Phone) String() string { return string(p) }

// Email is a validated, lowercased customer email address.
type Email string

func ParseEmail(raw string) (Email, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !emailRe.MatchString(s) {
		return "", NewValidationError("email", fmt.Sprintf("invalid email %q", raw))
	}
	return Email(s), nil
}

func (e Email) String() string { return string(e) }

// ParseDate parses a calendar day. Any time-of-day component is dropped so
// two bookings land on the same day iff their normalized dates are equal.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		// Tolerate full timestamps from clients, keep only the day.
		if ts, tsErr := time.Parse(time.RFC3339, s); tsErr == nil {
			return DayOf(ts), nil
		}
		return time.Time{}, NewValidationError("date", fmt.Sprintf("invalid date %q; expected YYYY-MM-DD", raw))
	}
	return t, nil
}

// DayOf normalizes a timestamp to midnight UTC of its calendar day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a date as the canonical YYYY-MM-DD storage key.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }
