// Package logger builds the slog loggers used by the TUI, the CLI and the
// backend. The TUI owns the terminal, so it logs JSON to a file; everything
// else logs text to stderr.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Options struct {
	Service string
	Level   string
	// File, when set, receives JSON records instead of Writer.
	File   string
	Writer io.Writer
}

// New returns the logger and a closer for the log file (a no-op without one).
func New(opts Options) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		h = slog.NewJSONHandler(f, hopts)
		closer = f
	} else {
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		h = slog.NewTextHandler(w, hopts)
	}

	l := slog.New(withRequestID{Handler: h})
	if opts.Service != "" {
		l = l.With("service", opts.Service)
	}
	return l, closer, nil
}

// Discard drops everything; tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID stamps records logged with a request context.
type withRequestID struct {
	slog.Handler
}

func (h withRequestID) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.Add("request_id", id)
	}
	return h.Handler.Handle(ctx, r)
}

func (h withRequestID) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withRequestID{Handler: h.Handler.WithAttrs(attrs)}
}

func (h withRequestID) WithGroup(name string) slog.Handler {
	return withRequestID{Handler: h.Handler.WithGroup(name)}
}
