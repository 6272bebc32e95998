package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ct "taskboard/pkg/context"
)

const RequestIDHeader = "X-Request-ID"

// CurrentMiddleware stores request-scoped values on the request context and
// echoes the request id back to the client.
func CurrentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		current := ct.NewCurrent()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		current.Set(ct.KeyRequestID, requestID)
		current.Set(ct.KeyUserAgent, c.Request.UserAgent())
		current.Set(ct.KeyClientIP, c.ClientIP())

		c.Request = c.Request.WithContext(ct.WithCurrent(c.Request.Context(), current))
		c.Set("current", current)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

func GetCurrent(c *gin.Context) *ct.Current {
	if current, ok := c.Get("current"); ok {
		if curr, ok := current.(*ct.Current); ok {
			return curr
		}
	}

	if current, ok := ct.FromContext(c.Request.Context()); ok {
		return current
	}

	return ct.NewCurrent()
}
