// Package logging builds the slog logger shared by the hellobench binaries.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dkoosis/hellobench/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a text logger on stderr. When performance logging is on,
// records are also appended as JSON to the configured log file; the
// returned Closer closes it.
func New(lc config.LoggingConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{
		Level:     lc.Level,
		AddSource: lc.Verbose && lc.Debug,
	}
	handlers := []slog.Handler{slog.NewTextHandler(stderr, opts)}

	var closer io.Closer = nopCloser{}
	if lc.PerformanceLogging && lc.LogFile != "" {
		f, err := os.OpenFile(lc.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("opening performance log %s: %w", lc.LogFile, err)
		}
		closer = f
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = &multiHandler{handlers: handlers}
	}
	return slog.New(h), closer, nil
}

// multiHandler fans out records to every handler enabled for the level.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
