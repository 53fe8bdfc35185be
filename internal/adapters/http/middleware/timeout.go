package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

// Timeout returns middleware that puts a deadline on the request context.
// Handlers run on the request goroutine and must observe ctx.Done(). If the
// deadline passed and the handler wrote nothing, a 504 envelope is written.
// Requests whose path starts with one of skipPrefixes get no deadline.
func Timeout(timeout time.Duration, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			handleTimeout(c, timeout)
		}
	}
}

func handleTimeout(c *gin.Context, timeout time.Duration) {
	ctx := c.Request.Context()
	traceID := dto.GetTraceID(c)

	logging.FromContext(ctx).WarnContext(ctx, "request timeout",
		slog.String("path", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.Duration("timeout", timeout),
		slog.String("trace_id", traceID),
	)

	dto.AbortWithCode(c, dto.ErrorCodeTimeout, "request timeout exceeded")
}
