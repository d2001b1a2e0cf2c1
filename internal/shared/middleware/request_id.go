package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datahub-backend/internal/shared"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates or issues a request id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(shared.ContextRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
