package utils

import "time"

// Clock returns the current time. Components take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// UnixSeconds truncates t to whole epoch seconds, the resolution used for block
// timestamps and ownership challenges.
func UnixSeconds(t time.Time) int64 {
	return t.Unix()
}

// FixedClock always reports the same instant.
func FixedClock(unix int64) Clock {
	t := time.Unix(unix, 0)
	return func() time.Time { return t }
}
