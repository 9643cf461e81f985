// Package clock provides an injectable time source so date-sensitive rules
// (day-of-week schedule lookup, past-date checks) can be pinned in tests.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return fixedClock{t}
}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

// DateOf truncates a time to midnight in its own location, giving
// date-precision comparisons.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateBefore reports whether a's calendar date is before b's. Each time is
// read in its own location, so a UTC-parsed request date and a server clock
// in another zone compare by date rather than by instant.
func DateBefore(a, b time.Time) bool {
	return a.Format("2006-01-02") < b.Format("2006-01-02")
}
