package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-manager/internal/adapters/http/handlers"
)

// world holds the state shared by the steps of one scenario.
type world struct {
	t *testing.T

	quotes *quoteServer
	remote *httptest.Server
	app    *App
	api    *httptest.Server
	dir    string

	status int
	body   []byte
}

func (w *world) start(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	dir, err := os.MkdirTemp("", "quote-manager-features-")
	if err != nil {
		return ctx, err
	}

	w.dir = dir
	w.quotes = &quoteServer{}
	w.remote = httptest.NewServer(w.quotes)

	return ctx, nil
}

func (w *world) stop(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
	if w.api != nil {
		w.api.Close()
	}

	var errs []error
	if w.app != nil {
		errs = append(errs, w.app.Close())
	}

	w.remote.Close()
	errs = append(errs, os.RemoveAll(w.dir))

	*w = world{t: w.t}

	return ctx, errors.Join(errs...)
}

func (w *world) theServiceIsRunning() error {
	cfg := testConfig(w.t, w.dir, w.remote.URL)

	a, err := New(context.Background(), cfg, discardLogger(), Options{
		Registry:  prometheus.NewRegistry(),
		BuildInfo: handlers.NewBuildInfo("test", "abc123", "2026-10-19T00:00:00Z"),
	})
	if err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	w.app = a
	w.api = httptest.NewServer(a.Server().Engine())

	if err := w.request(http.MethodGet, "/-/live", ""); err != nil {
		return err
	}

	return w.theResponseStatusShouldBe(http.StatusOK)
}

func (w *world) theQuoteServerOffers(title string) error {
	w.quotes.offer(title)
	return nil
}

func (w *world) theQuoteServerIsDown() error {
	w.quotes.setDown(true)
	return nil
}

func (w *world) iRequestGET(path string) error {
	return w.request(http.MethodGet, path, "")
}

func (w *world) iSendWithBody(method, path string, body *godog.DocString) error {
	return w.request(method, path, body.Content)
}

func (w *world) request(method, path, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, w.api.URL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := w.api.Client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	w.status = resp.StatusCode

	w.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return nil
}

func (w *world) backgroundWorkHasFinished() error {
	w.app.Service.Wait()
	return nil
}

func (w *world) theResponseStatusShouldBe(expected int) error {
	if w.status != expected {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expected, w.status, w.body)
	}

	return nil
}

func (w *world) theResponseShouldContain(text string) error {
	if !strings.Contains(string(w.body), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, w.body)
	}

	return nil
}

func (w *world) theResponseShouldNotContain(text string) error {
	if strings.Contains(string(w.body), text) {
		return fmt.Errorf("response body unexpectedly contains %q.\nBody: %s", text, w.body)
	}

	return nil
}

// theJSONFieldShouldBe resolves a dotted path such as "error.code".
func (w *world) theJSONFieldShouldBe(path, expected string) error {
	var doc any
	if err := json.Unmarshal(w.body, &doc); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	for key := range strings.SplitSeq(path, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return fmt.Errorf("%q: %v is not an object", key, doc)
		}

		doc, ok = obj[key]
		if !ok {
			return fmt.Errorf("field %q not found in %s", path, w.body)
		}
	}

	if got := fmt.Sprint(doc); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", path, expected, got)
	}

	return nil
}

func (w *world) theQuoteServerShouldHaveReceived(text string) error {
	for _, body := range w.quotes.received() {
		if strings.Contains(body, text) {
			return nil
		}
	}

	return fmt.Errorf("no submission contained %q; got %v", text, w.quotes.received())
}

func initializeScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		w := &world{t: t}

		sc.Before(w.start)
		sc.After(w.stop)

		sc.Step(`^the service is running$`, w.theServiceIsRunning)
		sc.Step(`^the quote server offers a post titled "([^"]*)"$`, w.theQuoteServerOffers)
		sc.Step(`^the quote server is down$`, w.theQuoteServerIsDown)
		sc.Step(`^I request GET "([^"]*)"$`, w.iRequestGET)
		sc.Step(`^I (POST|PUT) "([^"]*)" with body:$`, w.iSendWithBody)
		sc.Step(`^background work has finished$`, w.backgroundWorkHasFinished)
		sc.Step(`^the response status should be (\d+)$`, w.theResponseStatusShouldBe)
		sc.Step(`^the response should contain "([^"]*)"$`, w.theResponseShouldContain)
		sc.Step(`^the response should not contain "([^"]*)"$`, w.theResponseShouldNotContain)
		sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, w.theJSONFieldShouldBe)
		sc.Step(`^the quote server should have received "([^"]*)"$`, w.theQuoteServerShouldHaveReceived)
	}
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
