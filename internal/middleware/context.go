package middleware

import (
	"github.com/clipstream/accounts/internal/constants"
	ctxutil "github.com/clipstream/accounts/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextMiddleware seeds every request context with a request id, client
// info and a deadline, so downstream logs correlate and store calls cannot
// outlive the request window.
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.NewRequestContext(
			c.Request.Context(),
			requestID,
			c.ClientIP(),
			c.Request.UserAgent(),
		)

		ctx, cancel := ctxutil.WithTimeout(ctx, constants.RequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
