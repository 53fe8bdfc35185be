// Package middleware provides HTTP middleware for the Gin server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

const (
	// HeaderRequestID identifies a single inbound request.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID tracks a whole transaction across services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin key holding the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

type idMiddlewareConfig struct {
	headerName string
	ginKey     string

	// enrichers run in order on the request context.
	enrichers []func(ctx context.Context, id string) context.Context
}

// RequestID returns middleware that reads X-Request-ID or generates a UUID.
// The ID is echoed in the response, stored on the gin and request contexts
// so outbound calls propagate it, and attached to the context logger.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		ginKey:     ContextKeyRequestID,
		enrichers:  []func(context.Context, string) context.Context{ContextWithRequestID, logging.WithRequestID},
	})
}

// CorrelationID is RequestID for X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		ginKey:     ContextKeyCorrelationID,
		enrichers:  []func(context.Context, string) context.Context{ContextWithCorrelationID, logging.WithCorrelationID},
	})
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID stored by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(cfg.ginKey, id)
		c.Header(cfg.headerName, id)

		ctx := c.Request.Context()
		for _, enrich := range cfg.enrichers {
			ctx = enrich(ctx, id)
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
