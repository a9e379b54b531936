package ratelimit

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware rejects callers that exceed the limiter's budget with 429.
// Requests are keyed by client IP. A limiter backend error lets the request
// through.
func Middleware(l Limiter, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[RateLimit] %s limiter error: %v", name, err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
