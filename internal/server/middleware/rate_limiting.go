package middleware

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/techsaints/landing/pkg/rate_limiter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type RateLimitMiddlewareServicer interface {
	Check(ctx context.Context, clientID string) (rate_limiter.Decision, error)
}

type RateLimitDecisionRecorder interface {
	IncRateLimitDecision(limiter string, blocked bool)
}

const (
	SubscriptionRateLimitersId = "subscription"
	ClientIDContextValueKey    = "clientID"
	forwardedForHeader         = "X-Forwarded-For"

	TooManySubscriptionAttemptsMessage = "Too many subscription attempts. Please try again later."
)

// ClientIdentifier keys rate limiting: the first X-Forwarded-For entry, then the
// socket address, then rate_limiter.UnknownClientID. The forwarded header is
// trusted as sent, so it can be spoofed by the caller.
func ClientIdentifier(c *gin.Context) string {
	if forwarded := c.GetHeader(forwardedForHeader); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if ip := c.RemoteIP(); ip != "" {
		return ip
	}

	return rate_limiter.UnknownClientID
}

func setRateLimitHeaders(c *gin.Context, decision rate_limiter.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining()))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

// RateLimitSubscriptionMiddleware records one attempt per request, whatever the
// request ends up doing, and stops blocked clients with a 429.
func RateLimitSubscriptionMiddleware(servicer RateLimitMiddlewareServicer, recorder RateLimitDecisionRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := ClientIdentifier(c)
		c.Set(ClientIDContextValueKey, clientID)

		decision, err := servicer.Check(c.Request.Context(), clientID)
		if err != nil {
			slog.Error("rate limit check failed", "client_id", clientID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": InternalServerErrorMessage})
			return
		}

		recorder.IncRateLimitDecision(SubscriptionRateLimitersId, decision.Blocked)
		setRateLimitHeaders(c, decision)

		if decision.Blocked {
			retryAfter := decision.RetryAfter(time.Now())
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": TooManySubscriptionAttemptsMessage})
			return
		}

		c.Next()
	}
}
