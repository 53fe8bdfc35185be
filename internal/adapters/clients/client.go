package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-manager/internal/adapters/clients"

	defaultTimeout = 30 * time.Second

	// jitterRangeMultiplier converts rand [0,1) to [-1,1) for symmetric jitter.
	jitterRangeMultiplier = 2
)

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL is the base URL for all requests (e.g., "https://jsonplaceholder.typicode.com").
	BaseURL string

	// ServiceName identifies the downstream service for logging and tracing.
	ServiceName string

	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc is called for each request attempt, retries included.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// FromConfig builds a client Config for the named endpoint.
func FromConfig(client config.ClientConfig, endpoint config.ServiceEndpointConfig) *Config {
	return &Config{
		BaseURL:     endpoint.BaseURL,
		ServiceName: endpoint.Name,
		Timeout:     client.Timeout,
		Retry:       client.Retry,
		Circuit:     client.CircuitBreaker,
		Transport:   client.Transport,
	}
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	maxAttempts int
}

// WithoutRetry sends the request exactly once regardless of the retry policy.
func WithoutRetry() RequestOption {
	return func(o *requestOptions) { o.maxAttempts = 1 }
}

// Client is an instrumented HTTP client for downstream services.
// It provides:
//   - Retry with exponential backoff and jitter
//   - Circuit breaker protection
//   - OpenTelemetry tracing and metrics
//   - Request/correlation ID propagation
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a new instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:     cfg.ServiceName,
		cfg:             cfg,
		logger:          logger,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	if tc.MaxIdleConns > 0 {
		t.MaxIdleConns = tc.MaxIdleConns
	}

	if tc.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = tc.MaxIdleConnsPerHost
	}

	if tc.IdleConnTimeout > 0 {
		t.IdleConnTimeout = tc.IdleConnTimeout
	}

	return t
}

// ServiceName identifies the downstream service.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// Do executes an HTTP request with retry, circuit breaker, tracing, and logging.
//
// Retries rewind the body through req.GetBody, which http.NewRequest sets for
// in-memory readers. Streaming bodies should be sent WithoutRetry.
func (c *Client) Do(ctx context.Context, req *http.Request, opts ...RequestOption) (*http.Response, error) {
	o := requestOptions{maxAttempts: c.cfg.Retry.MaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}

	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, time.Since(startTime), "circuit_open")
		logger.Warn("request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, lastErr := c.executeWithRetry(ctx, req, o.maxAttempts, logger, startTime)

	return c.recordResult(ctx, req, resp, lastErr, span, logger, startTime)
}

func (c *Client) executeWithRetry(
	ctx context.Context,
	req *http.Request,
	maxAttempts int,
	logger *slog.Logger,
	startTime time.Time,
) (*http.Response, error) {
	var lastErr error

	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := c.waitForRetry(ctx, req, attempt, logger, startTime); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))

		retry, attemptErr := c.handleAttemptResult(resp, err, attempt, logger)
		if retry {
			lastErr = attemptErr
			continue
		}

		if err != nil {
			return nil, err
		}

		return resp, nil
	}

	return nil, lastErr
}

func (c *Client) waitForRetry(ctx context.Context, req *http.Request, attempt int, logger *slog.Logger, startTime time.Time) error {
	backoff := c.calculateBackoff(attempt)
	logger.Debug("retrying request",
		slog.Int("attempt", attempt+1),
		slog.Duration("backoff", backoff),
	)

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.cb.RecordFailure()
		c.recordMetrics(ctx, req.Method, 0, time.Since(startTime), "context_canceled")

		return ctx.Err()
	case <-timer.C:
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return fmt.Errorf("rewinding request body: %w", err)
		}

		req.Body = body
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}

	return nil
}

// handleAttemptResult reports whether the attempt should be retried.
func (c *Client) handleAttemptResult(resp *http.Response, err error, attempt int, logger *slog.Logger) (bool, error) {
	if err != nil {
		if isRetryableError(err) {
			logger.Debug("request failed with retryable error",
				slog.Int("attempt", attempt+1),
				slog.Any("error", err),
			)

			return true, err
		}

		return false, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Debug("request failed with server error",
			slog.Int("attempt", attempt+1),
			slog.Int("status", resp.StatusCode),
		)

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		return true, &StatusError{StatusCode: resp.StatusCode}
	}

	return false, nil
}

func (c *Client) recordResult(
	ctx context.Context,
	req *http.Request,
	resp *http.Response,
	lastErr error,
	span trace.Span,
	logger *slog.Logger,
	startTime time.Time,
) (*http.Response, error) {
	duration := time.Since(startTime)

	if lastErr != nil {
		c.cb.RecordFailure()
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		c.recordMetrics(ctx, req.Method, 0, duration, "error")
		logger.Warn("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", lastErr),
		)

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
	}

	c.cb.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration, fmt.Sprintf("%dxx", resp.StatusCode/100))

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

// Get performs an HTTP GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req, opts...)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req, opts...)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// calculateBackoff returns initial * multiplier^attempt capped at MaxInterval,
// with symmetric jitter of JitterFactor.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.cfg.Retry.InitialInterval) * math.Pow(c.cfg.Retry.Multiplier, float64(attempt))

	if backoff > float64(c.cfg.Retry.MaxInterval) {
		backoff = float64(c.cfg.Retry.MaxInterval)
	}

	jitter := rand.Float64()*jitterRangeMultiplier - 1 //nolint:gosec // backoff jitter
	backoff += backoff * c.cfg.Retry.JitterFactor * jitter

	return time.Duration(backoff)
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
