package middleware

import (
	"github.com/gin-gonic/gin"
	"time"
)

const ReqArrivalTimeContextValueKey = "reqArrivalTime"

func QueueTimeMiddleware(c *gin.Context) {
	c.Set(ReqArrivalTimeContextValueKey, time.Now())
	c.Next()
}

// SinceArrival returns the time elapsed since QueueTimeMiddleware saw the request.
func SinceArrival(c *gin.Context) (time.Duration, bool) {
	reqArrivalTime, exists := c.Get(ReqArrivalTimeContextValueKey)
	if !exists {
		return 0, false
	}
	arrival, ok := reqArrivalTime.(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(arrival), true
}
