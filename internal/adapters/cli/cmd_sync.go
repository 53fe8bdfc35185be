package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

type syncOutput struct {
	Fetched    int    `json:"fetched"`
	Total      int    `json:"total"`
	DurationMS int64  `json:"duration_ms"`
	Message    string `json:"message"`
}

func newSyncCommand(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge the quote server's list into the local quotes",
		Long:  "Fetch the quote server's list once and merge it. Server quotes win when the text matches.",
		Args:  noArgs,
		RunE: r.withApp(func(ctx context.Context, a *bootstrap.App, _ []string) error {
			result := a.Service.SyncNow(ctx)
			if !result.OK() {
				return result.Err
			}

			return r.emit(
				syncOutput{
					Fetched:    result.Fetched,
					Total:      result.Total,
					DurationMS: result.Duration.Milliseconds(),
					Message:    app.MsgQuotesSynced,
				},
				"%s (fetched %d, %d total)", app.MsgQuotesSynced, result.Fetched, result.Total,
			)
		}),
	}
}

// lockedWriter serializes writes from concurrent sync runs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func newWatchCommand(r *runtime) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync periodically and print notifications until interrupted",
		Example: "  quotes watch\n" +
			"  quotes watch --interval 10s",
		Args: noArgs,
		RunE: r.withApp(func(ctx context.Context, a *bootstrap.App, _ []string) error {
			every := interval
			if every <= 0 {
				every = a.Config.Sync.Interval
			}

			out := &lockedWriter{w: r.out}

			a.Feed.Subscribe(func(n ports.Notification) {
				if r.globals.JSON {
					_ = printJSON(out, n)
					return
				}

				fmt.Fprintf(out, "[%s] %s\n", n.CreatedAt.Format(time.TimeOnly), n.Message)
			})

			if !r.globals.JSON {
				a.Sync.OnSynced(func(_ context.Context, result app.SyncResult) {
					if !result.OK() {
						fmt.Fprintf(out, "sync failed: %v\n", result.Err)
					}
				})

				fmt.Fprintf(out, "Watching %s every %s. Press Ctrl+C to stop.\n", a.Config.Services.Quote.BaseURL, every)
			}

			<-a.Sync.SchedulePeriodicSync(ctx, every)

			return nil
		}),
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between syncs (defaults to sync.interval)")

	return cmd
}
