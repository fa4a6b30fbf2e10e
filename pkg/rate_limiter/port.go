package rate_limiter

import (
	"context"
	"time"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Storer interface {
	CheckAndUpdateFixedWindow(ctx context.Context, key string, maxRequests int, window time.Duration) (Decision, error)
}
