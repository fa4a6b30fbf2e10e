package rate_limiter

import "time"

// Decision is the outcome of a single check-and-record against a fixed window.
type Decision struct {
	Blocked bool
	Count   int // attempts recorded in the current window
	Limit   int
	ResetAt time.Time
}

func (d Decision) Remaining() int {
	if remaining := d.Limit - d.Count; remaining > 0 {
		return remaining
	}
	return 0
}

// RetryAfter returns how long a blocked client should wait, rounded up to the second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return wait.Truncate(time.Second) + time.Second
}
