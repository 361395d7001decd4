package compliance

import (
	"math"
	"time"
)

// CivilDate drops the time of day from t, keeping the calendar date as seen
// in t's own location. The result is midnight UTC so that differences are
// whole days regardless of DST.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the calendar-day distance from today to due. Zero means
// due today, negative means overdue.
func DaysUntil(due, today time.Time) int {
	diff := CivilDate(due).Sub(CivilDate(today))
	return int(math.Ceil(diff.Hours() / 24))
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return CivilDate(a).Equal(CivilDate(b))
}

// Clock supplies "now". Services take one so tests can pin the date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the clock's current calendar date.
func Today(c Clock) time.Time {
	return CivilDate(c.Now())
}
