package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"datahub-backend/internal/shared"
	"datahub-backend/internal/shared/response"
)

// Recovery turns a handler panic into a 500 envelope. A panic after the
// body started streaming (zip downloads) only aborts the chain.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", c.GetString(shared.ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("error", recovered).
			Bytes("stack", debug.Stack()).
			Msg("Panic recovered")

		if c.Writer.Written() {
			c.Abort()
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "Internal server error")
		c.Abort()
	})
}
