package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

// Recovery returns middleware that turns a handler panic into a 500 with the
// standard error envelope. The panic value and stack are logged at ERROR.
// Apply it first so it covers every later handler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()
			traceID := dto.GetTraceID(c)

			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			resp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
		}()

		c.Next()
	}
}
