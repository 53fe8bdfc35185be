package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrDuplicateChecker is returned when attempting to register a health checker
// with a name that is already registered.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by components that can report their health.
// Adapters register themselves with the HealthRegistry at startup.
type HealthChecker interface {
	// Name returns a unique identifier for this health check.
	Name() string

	// Check returns nil when the component is healthy.
	// Implementations should respect context cancellation and deadlines.
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to HealthChecker.
type CheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name implements HealthChecker.
func (c CheckFunc) Name() string { return c.CheckName }

// Check implements HealthChecker.
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	// Register adds a health checker to the registry.
	// Returns an error if a checker with the same name is already registered.
	Register(checker HealthChecker) error

	// CheckAll runs all registered health checks and returns aggregated results.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusUnhealthy indicates at least one check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates a new health registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{
		checkers: make([]HealthChecker, 0),
	}
}

// Register adds a health checker to the registry.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs all registered health checks concurrently.
// A failing check never cancels its siblings.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)

			res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
			if err != nil {
				res.Status = HealthStatusUnhealthy
				res.Message = err.Error()
			}

			results[i] = res

			return nil
		})
	}

	_ = g.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, c := range checkers {
		out.Checks[c.Name()] = results[i]
		if results[i].Status == HealthStatusUnhealthy {
			out.Status = HealthStatusUnhealthy
		}
	}

	return out
}
