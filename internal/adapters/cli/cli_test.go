package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
)

type fakeQuoteServer struct {
	mu     sync.Mutex
	titles []string
	posted []string
	down   bool
}

func (s *fakeQuoteServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		s.posted = append(s.posted, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))

		return
	}

	posts := make([]map[string]any, 0, len(s.titles))
	for i, title := range s.titles {
		posts = append(posts, map[string]any{"id": i + 1, "userId": 1, "title": title})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(posts)
}

func (s *fakeQuoteServer) postedBodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.posted...)
}

func testBuildInfo() BuildInfo {
	return BuildInfo{Version: "1.2.3", Commit: "abc123", BuildTime: "2026-10-19T00:00:00Z"}
}

func newTestEnv(t *testing.T) (*config.Config, *fakeQuoteServer) {
	t.Helper()

	qs := &fakeQuoteServer{}
	srv := httptest.NewServer(qs)
	t.Cleanup(srv.Close)

	dir := t.TempDir()

	cfg, err := config.LoadFrom(filepath.Join(dir, "configs"), "")
	require.NoError(t, err)

	cfg.App.Environment = "test"
	cfg.Storage.Path = filepath.Join(dir, "quotes.db")
	cfg.Services.Quote.BaseURL = srv.URL
	cfg.Client.Timeout = 2 * time.Second
	cfg.Client.Retry.MaxAttempts = 1
	cfg.Sync.Enabled = false
	require.NoError(t, cfg.Validate())

	return cfg, qs
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	return runCLIContext(t.Context(), t, cfg, nil, args...)
}

func runCLIContext(ctx context.Context, t *testing.T, cfg *config.Config, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	opts := []Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	if cfg != nil {
		opts = append(opts, WithConfig(cfg))
	}

	if stdin != nil {
		opts = append(opts, WithInput(stdin))
	}

	var out bytes.Buffer

	cmd := NewRootCommand(&out, testBuildInfo(), opts...)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return withExit.ExitCode()
	}

	return ExitCodeGeneric
}

func TestVersionCommandOutputsBuildInfo(t *testing.T) {
	out, err := runCLI(t, nil, "version")
	require.NoError(t, err)
	require.Equal(t, "version=1.2.3 commit=abc123 build_time=2026-10-19T00:00:00Z\n", out)
}

func TestVersionCommandOutputsJSON(t *testing.T) {
	out, err := runCLI(t, nil, "--json", "version")
	require.NoError(t, err)

	var payload BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Equal(t, testBuildInfo(), payload)
}

func TestRootHasCommands(t *testing.T) {
	cmd := NewRootCommand(io.Discard, testBuildInfo())

	for _, name := range []string{"random", "add", "list", "categories", "filter", "export", "import", "sync", "watch", "version"} {
		_, _, err := cmd.Find([]string{name})
		require.NoErrorf(t, err, "expected command %q", name)
	}

	for _, name := range []string{"profile", "config-dir", "json"} {
		require.NotNilf(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg, _ := newTestEnv(t)

	for _, args := range [][]string{
		{"--no-such-flag"},
		{"add", "only text"},
		{"filter"},
		{"list", "extra"},
	} {
		_, err := runCLI(t, cfg, args...)
		require.Errorf(t, err, "args %v", args)
		require.Equalf(t, ExitCodeUsage, exitCode(err), "args %v", args)
	}
}

func TestInvalidConfigReturnsConfigError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("log:\n  level: loud\n"), 0o600))

	_, err := runCLI(t, nil, "--config-dir", dir, "--profile", "bad", "list")
	require.Error(t, err)
	require.Equal(t, ExitCodeConfig, exitCode(err))
	require.Contains(t, err.Error(), "log.level")
}

func TestRandomByCategory(t *testing.T) {
	cfg, _ := newTestEnv(t)

	out, err := runCLI(t, cfg, "random", "--category", "Life")
	require.NoError(t, err)
	require.Contains(t, out, "Life is 10% what happens to us")
	require.Contains(t, out, "(Life)")
}

func TestRandomNoQuotes(t *testing.T) {
	cfg, _ := newTestEnv(t)

	_, err := runCLI(t, cfg, "random", "--category", "Nope")
	require.Error(t, err)
	require.Equal(t, ExitCodeNotFound, exitCode(err))
}

func TestAddPersistsAndPosts(t *testing.T) {
	cfg, qs := newTestEnv(t)

	out, err := runCLI(t, cfg, "add", "Stay hungry.", "Inspiration")
	require.NoError(t, err)
	require.Contains(t, out, app.MsgQuoteAdded)

	posted := qs.postedBodies()
	require.Len(t, posted, 1)
	require.JSONEq(t, `{"text":"Stay hungry.","category":"Inspiration"}`, posted[0])

	out, err = runCLI(t, cfg, "list", "--category", "Inspiration")
	require.NoError(t, err)
	require.Equal(t, "\"Stay hungry.\" (Inspiration)\n", out)
}

func TestAddRejectsBlankCategory(t *testing.T) {
	cfg, qs := newTestEnv(t)

	_, err := runCLI(t, cfg, "add", "Orphan", "   ")
	require.Error(t, err)
	require.Equal(t, ExitCodeInvalidInput, exitCode(err))
	require.Empty(t, qs.postedBodies())

	out, err := runCLI(t, cfg, "--json", "list")
	require.NoError(t, err)

	var quotes []domain.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes))
	require.Equal(t, domain.SeedQuotes(), quotes)
}

func TestFilterPersistsSelection(t *testing.T) {
	cfg, _ := newTestEnv(t)

	out, err := runCLI(t, cfg, "filter", "Wisdom")
	require.NoError(t, err)
	require.Contains(t, out, "Selected category: Wisdom")
	require.Contains(t, out, "(Wisdom)")

	out, err = runCLI(t, cfg, "categories")
	require.NoError(t, err)
	require.Contains(t, out, "* Wisdom\n")
	require.Contains(t, out, "  all\n")

	out, err = runCLI(t, cfg, "random")
	require.NoError(t, err)
	require.Contains(t, out, "(Wisdom)")
}

func TestFilterUnknownCategory(t *testing.T) {
	cfg, _ := newTestEnv(t)

	out, err := runCLI(t, cfg, "--json", "filter", "Nope")
	require.NoError(t, err)

	var payload filterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Equal(t, "Nope", payload.Selected)
	require.Nil(t, payload.Quote)
}

func TestExportImportRoundTrip(t *testing.T) {
	cfg, _ := newTestEnv(t)
	file := filepath.Join(t.TempDir(), "backup.json")

	out, err := runCLI(t, cfg, "export", "-o", file)
	require.NoError(t, err)
	require.Contains(t, out, "Exported 3 quotes")

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	exported, err := app.DecodeQuotes(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, domain.SeedQuotes(), exported)

	out, err = runCLI(t, cfg, "--json", "import", file)
	require.NoError(t, err)

	var result importOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 3, result.Imported)
	require.Equal(t, 6, result.Total)
	require.Equal(t, app.MsgQuotesImported, result.Message)
}

func TestExportToStdout(t *testing.T) {
	cfg, _ := newTestEnv(t)

	out, err := runCLI(t, cfg, "export", "-o", "-")
	require.NoError(t, err)

	var quotes []domain.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes))
	require.Len(t, quotes, 3)
}

func TestImportFromStdin(t *testing.T) {
	cfg, _ := newTestEnv(t)

	stdin := strings.NewReader(`[{"text":"From a pipe","category":"Unix"}]`)

	out, err := runCLIContext(t.Context(), t, cfg, stdin, "import", "-")
	require.NoError(t, err)
	require.Contains(t, out, "1 imported, 4 total")
}

func TestImportErrors(t *testing.T) {
	cfg, _ := newTestEnv(t)
	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{"text":"not an array"}`), 0o600))

	_, err := runCLI(t, cfg, "import", malformed)
	require.Error(t, err)
	require.Equal(t, ExitCodeInvalidInput, exitCode(err))

	_, err = runCLI(t, cfg, "import", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	require.Equal(t, ExitCodeIO, exitCode(err))
}

func TestSyncMergesWithServerPrecedence(t *testing.T) {
	cfg, qs := newTestEnv(t)
	qs.titles = []string{"Doubt"}

	stdin := strings.NewReader(`[{"text":"Doubt","category":"Local"}]`)
	_, err := runCLIContext(t.Context(), t, cfg, stdin, "import", "-")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "sync")
	require.NoError(t, err)
	require.Contains(t, out, app.MsgQuotesSynced)

	out, err = runCLI(t, cfg, "list", "--category", "Server")
	require.NoError(t, err)
	require.Equal(t, "\"Doubt\" (Server)\n", out)

	_, err = runCLI(t, cfg, "random", "--category", "Local")
	require.Equal(t, ExitCodeNotFound, exitCode(err))
}

func TestSyncServerDown(t *testing.T) {
	cfg, qs := newTestEnv(t)
	qs.down = true

	_, err := runCLI(t, cfg, "sync")
	require.Error(t, err)
	require.Equal(t, ExitCodeUnavailable, exitCode(err))
}

func TestWatchPrintsNotificationsUntilCancelled(t *testing.T) {
	cfg, qs := newTestEnv(t)
	qs.titles = []string{"Doubt"}

	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()

	out, err := runCLIContext(ctx, t, cfg, nil, "watch", "--interval", "1h")
	require.NoError(t, err)
	require.Contains(t, out, "Watching "+cfg.Services.Quote.BaseURL+" every 1h0m0s")
	require.Contains(t, out, app.MsgQuotesSynced)

	out, err = runCLI(t, cfg, "list", "--category", "Server")
	require.NoError(t, err)
	require.Equal(t, "\"Doubt\" (Server)\n", out)
}
