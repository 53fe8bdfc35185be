package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

// Transactional pattern: Validate → Perform → Verify → Archive → Respond.
//
// State is only written in Archive, after Verify has accepted the result of
// Perform. Imports use it so a document with one bad item never leaves a
// partially appended list behind.

// ExecutionStep represents a step in the transactional pattern.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs operations using the transactional pattern.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation defines the functions for each step of the transactional pattern.
// Nil steps are skipped; a skipped step passes the zero value along.
type Operation[I, P, V, O any] struct {
	// Name identifies this operation for logging.
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs an operation through the full transactional pattern.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
		result    O
	)

	logger, ok := logging.Lookup(ctx)
	if !ok {
		logger = exec.logger
	}

	logger = logger.With(slog.String("operation", op.Name))
	start := time.Now()

	if op.Validate != nil {
		err := runStep(ctx, logger, StepValidate, "input validation failed", func() error {
			return op.Validate(ctx, input)
		})
		if err != nil {
			return zero, err
		}
	}

	if op.Perform != nil {
		err := runStep(ctx, logger, StepPerform, "operation failed", func() (err error) {
			performed, err = op.Perform(ctx, input)
			return err
		})
		if err != nil {
			return zero, err
		}
	}

	if op.Verify != nil {
		err := runStep(ctx, logger, StepVerify, "verification failed", func() (err error) {
			verified, err = op.Verify(ctx, input, performed)
			return err
		})
		if err != nil {
			return zero, err
		}
	}

	if op.Archive != nil {
		err := runStep(ctx, logger, StepArchive, "state persistence failed", func() error {
			return op.Archive(ctx, input, verified)
		})
		if err != nil {
			return zero, err
		}
	}

	if op.Respond != nil {
		var err error

		result, err = op.Respond(ctx, input, verified)
		if err != nil {
			logger.WarnContext(ctx, "respond formatting failed", slog.Any("error", err))

			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

func runStep(ctx context.Context, logger *slog.Logger, step ExecutionStep, message string, fn func() error) error {
	logger.DebugContext(ctx, "step started", slog.String("step", string(step)))

	err := fn()
	if err != nil {
		level := slog.LevelError
		if step == StepValidate || step == StepVerify {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "step failed", slog.String("step", string(step)), slog.Any("error", err))

		return &ExecutionError{Step: step, Message: message, Cause: err}
	}

	return nil
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
