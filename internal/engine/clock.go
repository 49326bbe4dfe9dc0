package engine

import "time"

// Clock supplies wall-clock time for internal codes, dates and completion
// stamps. It never orders records; stores order by insertion sequence.
//
// Implemented by SystemClock (production) and testutil.DeterministicClock
// (tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
