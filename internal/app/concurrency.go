package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Parallel2 executes two functions concurrently and returns both results or first error.
// The context passed to each function is canceled as soon as either fails.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (result1 T1, result2 T2, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (fnErr error) {
		result1, fnErr = fn1(gctx)
		return fnErr
	})

	g.Go(func() (fnErr error) {
		result2, fnErr = fn2(gctx)
		return fnErr
	})

	if err = g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return result1, result2, nil
}

// Background runs follow-up work that must outlive the request that started it.
// Tasks keep the caller's context values but not its cancellation.
type Background struct {
	g      errgroup.Group
	logger *slog.Logger
}

// NewBackground creates an empty task group.
func NewBackground(logger *slog.Logger) *Background {
	if logger == nil {
		logger = slog.Default()
	}

	return &Background{logger: logger}
}

// Go starts fn in its own goroutine. A returned error is logged, never propagated.
func (b *Background) Go(ctx context.Context, name string, fn func(context.Context) error) {
	detached := context.WithoutCancel(ctx)

	b.g.Go(func() error {
		if err := fn(detached); err != nil {
			b.logger.DebugContext(detached, "background task finished with error",
				slog.String("task", name),
				slog.Any("error", err),
			)
		}

		return nil
	})
}

// Wait blocks until every started task has returned.
func (b *Background) Wait() {
	_ = b.g.Wait()
}
