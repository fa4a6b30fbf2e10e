package rate_limiter

import (
	"context"
	"fmt"
	"github.com/techsaints/landing/pkg/config"
	"log/slog"
)

// UnknownClientID keys attempts whose origin could not be determined.
// All such clients share a single window.
const UnknownClientID = "unknown"

type Servicer interface {
	Check(ctx context.Context, clientID string) (Decision, error)
	IsRateLimited(ctx context.Context, clientID string) (bool, error)
}

type Client struct {
	id          string
	rateLimiter RateLimiter
}

// New builds a client for one named limiter, e.g. "subscription".
func New(id string, cfg config.RateLimiterConfig, storage Storer) *Client {
	return &Client{
		id: id,
		rateLimiter: NewFixedWindow(storage, &FixedWindow{
			MaxRequests: cfg.MaxRequests,
			Window:      cfg.Window,
		}),
	}
}

func (c *Client) key(clientID string) string {
	if clientID == "" {
		clientID = UnknownClientID
	}
	return fmt.Sprintf("ratelimit:fixed:%s:%s", c.id, clientID)
}

// Check records one attempt for clientID and reports whether it is over the limit.
// Blocked attempts are not counted.
func (c *Client) Check(ctx context.Context, clientID string) (Decision, error) {
	key := c.key(clientID)
	decision, err := c.rateLimiter.Allow(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("check rate limit for %s: %w", key, err)
	}

	if decision.Blocked {
		slog.Info("Request not allowed", "key", key, "count", decision.Count, "reset_at", decision.ResetAt)
	} else {
		slog.Debug("Request allowed", "key", key, "count", decision.Count)
	}

	return decision, nil
}

func (c *Client) IsRateLimited(ctx context.Context, clientID string) (bool, error) {
	decision, err := c.Check(ctx, clientID)
	if err != nil {
		return false, err
	}
	return decision.Blocked, nil
}
