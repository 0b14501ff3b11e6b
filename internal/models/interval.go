package models

import "time"

// StayInterval is an inclusive [Start, End] occupation range on a room.
// Comparisons work on calendar dates only; any time-of-day component on the
// inputs is discarded first, so two stays touching the same calendar day
// conflict regardless of hour.
type StayInterval struct {
	Start time.Time
	End   time.Time
}

// DateOnly strips the clock and location offset down to a bare UTC date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewStayInterval(start, end time.Time) StayInterval {
	return StayInterval{Start: DateOnly(start), End: DateOnly(end)}
}

// Overlaps reports whether the two intervals share at least one calendar day.
// Endpoints are inclusive: a candidate starting on another stay's end date is
// a conflict, not a back-to-back stay.
func (s StayInterval) Overlaps(other StayInterval) bool {
	a, b := s.normalize(), other.normalize()
	return !b.Start.After(a.End) && !a.Start.After(b.End)
}

// Nights returns the number of occupied nights under the inclusive-night,
// next-morning-checkout convention: days(End-Start) + 1.
func (s StayInterval) Nights() int {
	n := s.normalize()
	return int(n.End.Sub(n.Start).Hours()/24) + 1
}

func (s StayInterval) normalize() StayInterval {
	return StayInterval{Start: DateOnly(s.Start), End: DateOnly(s.End)}
}

// Interval exposes a room stay's occupation range for overlap checks.
func (rs RoomStay) Interval() StayInterval {
	return NewStayInterval(rs.StartDate, rs.EndDate)
}
