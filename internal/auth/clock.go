package auth

import "time"

// Clock is the time source used for token issuance and expiry checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock reads the wall clock on every call.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// FixedClockAt returns a FixedClock at the given unix second.
func FixedClockAt(unix int64) FixedClock {
	return FixedClock(time.Unix(unix, 0).UTC())
}
