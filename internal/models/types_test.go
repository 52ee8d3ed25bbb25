package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		raw     string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:30", "09:30", false},
		{"9:30", "09:30", false},
		{"00:00", "00:00", false},
		{"23:59", "23:59", false},
		{" 10:15 ", "10:15", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"12", "", true},
		{"12:5", "", true},
		{"", "", true},
		{"ab:cd", "", true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay("start_time", tc.raw)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.raw)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			continue
		}
		require.NoError(t, err, "input %q", tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Touching endpoints never overlap.
	assert.False(t, Overlaps("09:00", "10:00", "10:00", "11:00"))
	assert.False(t, Overlaps("10:00", "11:00", "09:00", "10:00"))

	// Strict overlap.
	assert.True(t, Overlaps("09:00", "10:00", "09:30", "10:30"))
	assert.True(t, Overlaps("09:30", "10:30", "09:00", "10:00"))

	// Containment and identity.
	assert.True(t, Overlaps("09:00", "12:00", "10:00", "11:00"))
	assert.True(t, Overlaps("09:00", "10:00", "09:00", "10:00"))

	// Disjoint.
	assert.False(t, Overlaps("09:00", "10:00", "11:00", "12:00"))
}

func TestOverlapsIsSymmetric(t *testing.T) {
	pairs := [][4]TimeOfDay{
		{"09:00", "10:00", "09:30", "10:30"},
		{"09:00", "10:00", "10:00", "11:00"},
		{"08:00", "12:00", "09:00", "09:30"},
		{"13:00", "14:00", "14:30", "15:00"},
	}
	for _, p := range pairs {
		assert.Equal(t,
			Overlaps(p[0], p[1], p[2], p[3]),
			Overlaps(p[2], p[3], p[0], p[1]),
			"overlap must be symmetric for %v", p)
	}
}

func TestParsePhone(t *testing.T) {
	phone, err := ParsePhone("+79161234567")
	require.NoError(t, err)
	assert.Equal(t, Phone("+79161234567"), phone)

	_, err = ParsePhone("0123")
	assert.Error(t, err)
	_, err = ParsePhone("not-a-phone")
	assert.Error(t, err)
	_, err = ParsePhone("")
	assert.Error(t, err)
}

func TestParseEmailNormalizes(t *testing.T) {
	email, err := ParseEmail("  Kara.Oke@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, Email("kara.oke@example.com"), email)

	_, err = ParseEmail("missing-at.example.com")
	assert.Error(t, err)
	_, err = ParseEmail("a@b")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", DayKey(d))

	// Full timestamps are accepted and truncated to the day.
	d, err = ParseDate("2024-01-10T18:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", DayKey(d))
	assert.Equal(t, 0, d.Hour())

	_, err = ParseDate("10.01.2024")
	assert.Error(t, err)
}
