// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace is below debug; it carries per-notification and per-step chatter.
const LevelTrace = slog.Level(-8)

// Config holds logging configuration.
type Config struct {
	Level   string // trace, debug, info, warn, error
	Format  string // json, text, pretty
	Service string // service name for default attrs
	Version string // service version for default attrs
	File    FileConfig
}

// FileConfig enables a rolling JSON log file next to terminal output.
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a new configured slog.Logger writing to stderr.
func New(cfg *Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a new configured slog.Logger with a custom writer.
// Secrets are redacted in every format.
func NewWithWriter(cfg *Config, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)
	replace := chainReplaceAttr(NewReplaceAttr(), traceLevelName)

	handler := terminalHandler(cfg, w, level, replace)

	if cfg.File.Enabled && cfg.File.Path != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}

		fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level, ReplaceAttr: replace})
		handler = NewMultiHandler(handler, fileHandler)
	}

	return slog.New(handler).With(
		slog.String("service_name", cfg.Service),
		slog.String("service_version", cfg.Version),
	)
}

func terminalHandler(cfg *Config, w io.Writer, level slog.Level, replace func([]string, slog.Attr) slog.Attr) slog.Handler {
	switch strings.ToLower(cfg.Format) {
	case "pretty":
		charm := log.NewWithOptions(w, log.Options{
			Level:           slogToCharmLevel(level),
			ReportTimestamp: true,
		})

		return &redactingHandler{next: charm, replace: replace}
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replace})
	default:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replace})
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogToCharmLevel maps slog levels onto charm's coarser scale.
func slogToCharmLevel(level slog.Level) log.Level {
	switch {
	case level < slog.LevelInfo:
		return log.DebugLevel
	case level < slog.LevelWarn:
		return log.InfoLevel
	case level < slog.LevelError:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

func traceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
			return slog.String(slog.LevelKey, "TRACE")
		}
	}

	return a
}

func chainReplaceAttr(fns ...func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		for _, fn := range fns {
			a = fn(groups, a)
		}

		return a
	}
}

// redactingHandler applies ReplaceAttr for handlers that lack the option.
type redactingHandler struct {
	next    slog.Handler
	replace func([]string, slog.Attr) slog.Attr
	groups  []string
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.replace(h.groups, a)
	}

	return &redactingHandler{next: h.next.WithAttrs(redacted), replace: h.replace, groups: h.groups}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string(nil), h.groups...), name)

	return &redactingHandler{next: h.next.WithGroup(name), replace: h.replace, groups: groups}
}
