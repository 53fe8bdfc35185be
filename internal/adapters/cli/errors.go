package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

const (
	ExitCodeSuccess      = 0
	ExitCodeGeneric      = 1
	ExitCodeUsage        = 2
	ExitCodeNotFound     = 3
	ExitCodeInvalidInput = 4
	ExitCodeUnavailable  = 5
	ExitCodeIO           = 6
	ExitCodeConfig       = 7
)

// ExitError carries the process exit code for err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}

	return e.Code
}

func asExitError(code int, err error) error {
	if err == nil {
		return nil
	}

	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}

	return &ExitError{Code: code, Err: err}
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{Code: ExitCodeUsage, Err: fmt.Errorf(format, args...)}
}

// mapCommandError classifies domain and I/O failures into exit codes.
func mapCommandError(err error) error {
	if err == nil {
		return nil
	}

	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}

	var pathErr *fs.PathError

	switch {
	case domain.IsNotFound(err):
		return asExitError(ExitCodeNotFound, err)
	case domain.IsValidation(err), domain.IsImportParse(err):
		return asExitError(ExitCodeInvalidInput, err)
	case domain.IsUnavailable(err), domain.IsFetch(err), domain.IsSubmit(err):
		return asExitError(ExitCodeUnavailable, err)
	case errors.As(err, &pathErr):
		return asExitError(ExitCodeIO, err)
	default:
		return asExitError(ExitCodeGeneric, err)
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s expects %d argument(s), got %d", cmd.Name(), n, len(args))
		}

		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return usageErrorf("%s does not accept positional arguments", cmd.Name())
	}

	return nil
}
