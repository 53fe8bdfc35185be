package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen/quote-manager/internal/platform/config"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(
		config.AppConfig{Name: "quote-manager", Version: "1.4.0", Environment: "prod"},
		config.TelemetryConfig{Enabled: true, Endpoint: "collector:4317", ServiceName: "quotes", SamplingRate: 0.5},
	)

	assert.Equal(t, &Config{
		Enabled:      true,
		Endpoint:     "collector:4317",
		ServiceName:  "quotes",
		Version:      "1.4.0",
		Environment:  "prod",
		SamplingRate: 0.5,
	}, cfg)
}

func TestMiddleware_SetsTraceHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tp := sdktrace.NewTracerProvider()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	engine := gin.New()
	engine.Use(Middleware("quote-manager")...)
	engine.GET("/api/v1/quotes/random", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quotes/random", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(TraceIDHeader), 32)
}
