package rate_limiter

import (
	"context"
	"time"
)

type FixedWindowHandler interface {
	CheckAndUpdateFixedWindow(ctx context.Context, key string, maxRequests int, window time.Duration) (Decision, error)
}

// FixedWindow counts attempts per key in windows that start at the first attempt.
// A client may burst up to twice MaxRequests across a window boundary.
type FixedWindow struct {
	MaxRequests      int           // attempts allowed per window
	Window           time.Duration // window length, starting at the first attempt
	rateLimitHandler FixedWindowHandler
}

func NewFixedWindow(handler FixedWindowHandler, options *FixedWindow) RateLimiter {
	options.rateLimitHandler = handler
	return options
}

func (fw *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	return fw.rateLimitHandler.CheckAndUpdateFixedWindow(ctx, key, fw.MaxRequests, fw.Window)
}
