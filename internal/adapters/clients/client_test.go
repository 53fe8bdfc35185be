package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		ServiceName: "quote-server",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

// countingServer answers with statuses in order, repeating the last one.
func countingServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		w.WriteHeader(statuses[min(n, len(statuses))-1])
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	require.NoError(t, resp.Body.Close())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "config is required")

	cfg := testConfig("http://localhost")
	cfg.ServiceName = ""

	_, err = New(cfg)
	require.ErrorContains(t, err, "service name is required")
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(
		config.ClientConfig{
			Timeout: 2 * time.Second,
			Retry:   config.RetryConfig{MaxAttempts: 4},
			Transport: config.TransportConfig{
				MaxIdleConns: 7,
			},
		},
		config.ServiceEndpointConfig{BaseURL: "http://quotes.local", Name: "quote-server"},
	)

	assert.Equal(t, "http://quotes.local", cfg.BaseURL)
	assert.Equal(t, "quote-server", cfg.ServiceName)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)

	client, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "quote-server", client.ServiceName())
	assert.Equal(t, 7, client.http.Transport.(*http.Transport).MaxIdleConns)
}

func TestClient_PropagatesIDs(t *testing.T) {
	var requestID, correlationID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(middleware.HeaderRequestID)
		correlationID = r.Header.Get(middleware.HeaderCorrelationID)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-2")

	resp, err := client.Get(ctx, "/posts")
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "corr-2", correlationID)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	srv, calls := countingServer(t, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK)

	client, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	srv, calls := countingServer(t, http.StatusNotFound)

	client, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesExhausted(t *testing.T) {
	srv, calls := countingServer(t, http.StatusServiceUnavailable)

	client, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/posts")

	require.ErrorIs(t, err, ErrMaxRetriesExceeded)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_WithoutRetry(t *testing.T) {
	srv, calls := countingServer(t, http.StatusInternalServerError)

	client, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.Post(context.Background(), "/posts", strings.NewReader(`{}`), WithoutRetry())

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_PostRewindsBodyOnRetry(t *testing.T) {
	var bodies []string

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	resp, err := client.Post(context.Background(), "/posts", strings.NewReader(`{"text":"A"}`))
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{`{"text":"A"}`, `{"text":"A"}`}, bodies)
}

func TestClient_CircuitOpensAndShortCircuits(t *testing.T) {
	srv, calls := countingServer(t, http.StatusServiceUnavailable)

	cfg := testConfig(srv.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	client, err := New(cfg)
	require.NoError(t, err)

	_, _ = client.Get(context.Background(), "/posts")
	assert.Equal(t, StateClosed, client.CircuitState())

	_, _ = client.Get(context.Background(), "/posts")
	assert.Equal(t, StateOpen, client.CircuitState())

	_, err = client.Get(context.Background(), "/posts")

	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	cfg.Retry.MaxAttempts = 1

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/posts")
	require.Error(t, err)
}

func TestClient_AuthFuncRunsOnEveryAttempt(t *testing.T) {
	srv, _ := countingServer(t, http.StatusServiceUnavailable, http.StatusOK)

	var authCalls atomic.Int32

	cfg := testConfig(srv.URL)
	cfg.AuthFunc = func(r *http.Request) {
		authCalls.Add(1)
		r.Header.Set("Authorization", "Bearer test-token")
	}

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, int32(2), authCalls.Load())
}

func TestClient_BuildURL(t *testing.T) {
	client, err := New(testConfig("https://jsonplaceholder.typicode.com/"))
	require.NoError(t, err)

	assert.Equal(t, "https://jsonplaceholder.typicode.com/posts", client.buildURL("/posts"))
	assert.Equal(t, "https://jsonplaceholder.typicode.com/posts", client.buildURL("posts"))
}

func TestCalculateBackoff(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.Retry.InitialInterval = 100 * time.Millisecond
	cfg.Retry.MaxInterval = time.Second
	cfg.Retry.JitterFactor = 0.25

	client, err := New(cfg)
	require.NoError(t, err)

	assert.InDelta(t, 100*time.Millisecond, client.calculateBackoff(0), float64(25*time.Millisecond))
	assert.InDelta(t, 400*time.Millisecond, client.calculateBackoff(2), float64(100*time.Millisecond))
	assert.LessOrEqual(t, client.calculateBackoff(10), cfg.Retry.MaxInterval+cfg.Retry.MaxInterval/4)
}

type testNetError struct{ timeout bool }

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"net timeout", testNetError{timeout: true}, true},
		{"net non-timeout", testNetError{}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}
