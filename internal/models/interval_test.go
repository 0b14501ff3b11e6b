package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStayInterval_Overlaps(t *testing.T) {
	base := NewStayInterval(day(2026, 7, 10), day(2026, 7, 15))

	tests := []struct {
		name  string
		other StayInterval
		want  bool
	}{
		{"identical", NewStayInterval(day(2026, 7, 10), day(2026, 7, 15)), true},
		{"contained", NewStayInterval(day(2026, 7, 11), day(2026, 7, 14)), true},
		{"containing", NewStayInterval(day(2026, 7, 1), day(2026, 7, 31)), true},
		{"overlap left edge", NewStayInterval(day(2026, 7, 5), day(2026, 7, 10)), true},
		{"overlap right edge", NewStayInterval(day(2026, 7, 15), day(2026, 7, 20)), true},
		{"single shared day", NewStayInterval(day(2026, 7, 15), day(2026, 7, 15)), true},
		{"day before", NewStayInterval(day(2026, 7, 1), day(2026, 7, 9)), false},
		{"day after", NewStayInterval(day(2026, 7, 16), day(2026, 7, 20)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestStayInterval_Overlaps_IgnoresTimeOfDay(t *testing.T) {
	// A stay ending at 09:00 still occupies that calendar day, so a
	// candidate starting at 18:00 the same day conflicts.
	existing := NewStayInterval(
		time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC),
	)
	candidate := NewStayInterval(
		time.Date(2026, 7, 15, 18, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
	)

	assert.True(t, existing.Overlaps(candidate))
}

func TestStayInterval_Nights(t *testing.T) {
	assert.Equal(t, 1, NewStayInterval(day(2026, 7, 10), day(2026, 7, 10)).Nights())
	assert.Equal(t, 5, NewStayInterval(day(2026, 7, 1), day(2026, 7, 5)).Nights())
	assert.Equal(t, 31, NewStayInterval(day(2026, 7, 1), day(2026, 7, 31)).Nights())
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2026, 7, 10, 23, 45, 12, 999, loc)

	got := DateOnly(in)
	assert.Equal(t, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestCustomerInput_DisplayName(t *testing.T) {
	input := CustomerInput{FirstName: "Jane", LastName: "Carter"}
	assert.Equal(t, "Jane Carter", input.DisplayName())
}
