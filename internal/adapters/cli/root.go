// Package cli is the terminal presentation adapter for the quote manager.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type globalOptions struct {
	Profile   string
	ConfigDir string
	JSON      bool
}

// Option adjusts how commands assemble the quote manager.
type Option func(*runtime)

// WithConfig skips loading configuration from disk.
func WithConfig(cfg *config.Config) Option {
	return func(r *runtime) { r.cfg = cfg }
}

// WithLogger replaces the logger built from the log configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runtime) { r.logger = logger }
}

// WithInput replaces standard input for "import -".
func WithInput(in io.Reader) Option {
	return func(r *runtime) { r.in = in }
}

// WithBootstrapOptions passes opts through to bootstrap.New.
func WithBootstrapOptions(opts bootstrap.Options) Option {
	return func(r *runtime) { r.opts = opts }
}

type runtime struct {
	in      io.Reader
	out     io.Writer
	build   BuildInfo
	globals globalOptions

	cfg    *config.Config
	logger *slog.Logger
	opts   bootstrap.Options
}

func NewRootCommand(out io.Writer, build BuildInfo, opts ...Option) *cobra.Command {
	r := &runtime{in: os.Stdin, out: out, build: build}
	for _, opt := range opts {
		opt(r)
	}

	cmd := &cobra.Command{
		Use:           "quotes",
		Short:         "Show, collect and sync quotes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&r.globals.Profile, "profile", profile, "Configuration profile (configs/<profile>.yaml)")
	flags.StringVar(&r.globals.ConfigDir, "config-dir", config.DefaultConfigDir, "Directory holding base.yaml and profile files")
	flags.BoolVar(&r.globals.JSON, "json", false, "Print results as JSON")

	cmd.AddCommand(
		newRandomCommand(r),
		newAddCommand(r),
		newListCommand(r),
		newCategoriesCommand(r),
		newFilterCommand(r),
		newExportCommand(r),
		newImportCommand(r),
		newSyncCommand(r),
		newWatchCommand(r),
		newVersionCommand(r),
	)

	return cmd
}

func (r *runtime) loadConfig() (*config.Config, error) {
	if r.cfg != nil {
		return r.cfg, nil
	}

	cfg, err := config.LoadFrom(r.globals.ConfigDir, r.globals.Profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (r *runtime) open(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return nil, asExitError(ExitCodeConfig, err)
	}

	logger := r.logger
	if logger == nil {
		logger = logging.New(&logging.Config{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Service: cfg.App.Name,
			Version: r.build.Version,
		})
	}

	// Nothing scrapes a CLI process.
	opts := r.opts
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	a, err := bootstrap.New(ctx, cfg, logger, opts)
	if err != nil {
		return nil, asExitError(ExitCodeIO, err)
	}

	return a, nil
}

type appFunc func(ctx context.Context, a *bootstrap.App, args []string) error

// withApp opens the quote manager for one command and closes it afterwards,
// which also waits for background posts and syncs.
func (r *runtime) withApp(fn appFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := r.open(cmd.Context())
		if err != nil {
			return err
		}

		runErr := fn(cmd.Context(), a, args)
		closeErr := a.Close()

		return mapCommandError(errors.Join(runErr, closeErr))
	}
}

// emit prints v as JSON in --json mode and text otherwise.
func (r *runtime) emit(v any, format string, args ...any) error {
	if r.globals.JSON {
		return printJSON(r.out, v)
	}

	_, err := fmt.Fprintf(r.out, format+"\n", args...)

	return err
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func formatQuote(q domain.Quote) string {
	return fmt.Sprintf("%q (%s)", q.Text, q.Category)
}
