package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-manager/telemetry"

	// TraceIDHeader carries the active trace ID back to the caller.
	TraceIDHeader = "X-Trace-ID"
)

// Metrics holds HTTP server metrics.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Middleware returns the tracing handler followed by the request metrics
// handler. Register both with engine.Use(Middleware(name)...).
func Middleware(serviceName string) []gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		requestMetrics(metrics),
	}
}

func requestMetrics(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// The header must be set before the handler writes the body.
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Header(TraceIDHeader, traceID)

			ctx = logging.WithTraceID(ctx, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(method, route))
		defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(method, route))

		c.Next()

		attrs := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		metrics.requestTotal.Add(ctx, 1, attrs)
	}
}
