package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerRoundTrip(t *testing.T) {
	var (
		buf   bytes.Buffer
		level = new(slog.LevelVar)
	)
	logger := NewLogger(&buf, level)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	FromContext(ctx).Debug("hidden")
	assert.Empty(t, buf.String())
	level.Set(slog.LevelDebug)
	FromContext(ctx).Debug("shown", "facets", 4)
	assert.Contains(t, buf.String(), "msg=shown facets=4")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
	lvl, err = ParseLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
