package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// DefaultPostsPath is the posts resource on a JSONPlaceholder-style server.
const DefaultPostsPath = "/posts"

// PostsSourceConfig configures a PostsSource.
type PostsSourceConfig struct {
	// Client must have its BaseURL pointed at the quote server.
	Client *clients.Client

	// PostsPath defaults to DefaultPostsPath.
	PostsPath string

	Logger *slog.Logger
}

// PostsSource reads and writes quotes through a /posts resource.
type PostsSource struct {
	BaseAdapter

	path   string
	logger *slog.Logger
}

var (
	_ ports.RemoteSource  = (*PostsSource)(nil)
	_ ports.HealthChecker = (*PostsSource)(nil)
)

// NewPostsSource panics if cfg.Client is nil.
func NewPostsSource(cfg PostsSourceConfig) *PostsSource {
	if cfg.Client == nil {
		panic("PostsSource: Client is required")
	}

	path := cfg.PostsPath
	if path == "" {
		path = DefaultPostsPath
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PostsSource{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.Client.ServiceName()),
		path:        path,
		logger:      logger.With(slog.String("component", "acl.PostsSource")),
	}
}

// post is one element of the server's list. Only the title is meaningful here.
type post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// submission is the body sent when a quote is posted.
type submission struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// FetchQuotes lists the server's posts as quotes in the Server category.
// Titles are passed through untouched; blank ones are the caller's concern.
func (s *PostsSource) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	s.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", s.path))

	body, err := s.Get(ctx, s.path, "list posts")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]post](body)
	if err != nil {
		return nil, domain.NewFetchError(s.ServiceName(), err)
	}

	quotes, err := TranslateSlice(posts, translatePost)
	if err != nil {
		return nil, domain.NewFetchError(s.ServiceName(), err)
	}

	s.logger.DebugContext(ctx, "fetched posts", slog.Int("count", len(quotes)))

	return quotes, nil
}

func translatePost(p post) (domain.Quote, error) {
	return domain.ServerQuote(p.Title), nil
}

// SubmitQuote posts q once. The response body is drained and ignored.
func (s *PostsSource) SubmitQuote(ctx context.Context, q domain.Quote) error {
	payload, err := json.Marshal(submission{Text: q.Text, Category: q.Category})
	if err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}

	s.logger.Log(ctx, logging.LevelTrace, "posting quote", slog.String("path", s.path))

	body, err := s.Post(ctx, s.path, bytes.NewReader(payload), "submit quote", clients.WithoutRetry())
	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, body)

	return body.Close()
}

// Name implements ports.HealthChecker.
func (s *PostsSource) Name() string {
	return s.ServiceName()
}

// Check lists posts and discards the result.
func (s *PostsSource) Check(ctx context.Context) error {
	body, err := s.Get(ctx, s.path, "health check")
	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, body)

	return body.Close()
}
