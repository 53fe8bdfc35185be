package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-manager/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-manager/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// APIPrefix is the route group of the quote manager API.
const APIPrefix = "/api/v1"

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is attached to every request context.
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	// HealthHandler serves /-/. Optional.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves /api/v1. Optional.
	QuoteHandler *handlers.QuoteHandler

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery
//  2. Context logger
//  3. Request ID and correlation ID
//  4. OpenTelemetry tracing, trace header and request metrics
//  5. Logging (skips /-/)
//  6. Timeout (API group only)
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine.Group("/-"))
	}

	api := engine.Group(APIPrefix)
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterRoutes(api)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	serviceName string,
	healthHandler *handlers.HealthHandler,
	quoteHandler *handlers.QuoteHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		ServiceName:   serviceName,
		HealthHandler: healthHandler,
		QuoteHandler:  quoteHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
