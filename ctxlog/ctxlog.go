// Package ctxlog carries a slog.Logger through context.Context.
package ctxlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// key is unexported so no other package can collide with it
type key struct{}

var loggerKey = key{}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() if there is none
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// NewLogger builds a text logger whose level can be changed later through level
func NewLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel accepts debug, info, warn and error in any case
func ParseLevel(s string) (level slog.Level, err error) {
	if err = level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		err = fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return
}
