package bootstrap

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
)

// quoteServer is a JSONPlaceholder-style /posts endpoint.
type quoteServer struct {
	mu     sync.Mutex
	titles []string
	posted []string
	down   bool
}

func (s *quoteServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		posts := make([]map[string]any, 0, len(s.titles))
		for i, title := range s.titles {
			posts = append(posts, map[string]any{"id": i + 1, "userId": 1, "title": title, "body": ""})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(posts)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		s.posted = append(s.posted, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *quoteServer) offer(titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.titles = append(s.titles, titles...)
}

func (s *quoteServer) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.down = down
}

func (s *quoteServer) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.posted...)
}

func startQuoteServer(t *testing.T) (*quoteServer, *httptest.Server) {
	t.Helper()

	qs := &quoteServer{}
	srv := httptest.NewServer(qs)
	t.Cleanup(srv.Close)

	return qs, srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns the default configuration pointed at baseURL with
// storage under dir and the scheduler off.
func testConfig(t *testing.T, dir, baseURL string) *config.Config {
	t.Helper()

	cfg, err := config.LoadFrom(filepath.Join(dir, "configs"), "")
	require.NoError(t, err)

	cfg.App.Environment = "test"
	cfg.Storage.Path = filepath.Join(dir, "quotes.db")
	cfg.Services.Quote.BaseURL = baseURL
	cfg.Client.Timeout = 2 * time.Second
	cfg.Client.Retry.MaxAttempts = 1
	cfg.Sync.Enabled = false
	cfg.Notifications.TTL = time.Minute

	require.NoError(t, cfg.Validate())

	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	a, err := New(t.Context(), cfg, discardLogger(), Options{
		Registry:  prometheus.NewRegistry(),
		BuildInfo: handlers.NewBuildInfo("test", "abc123", "2026-10-19T00:00:00Z"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = a.Close() })

	return a
}
