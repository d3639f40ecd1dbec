package utils

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiLogHandler_FansOutByLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := NewMultiLogHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(h).With("run", "r1")

	logger.Info("upload", "key", "a.csv")
	logger.Warn("watcher", "error", "boom")

	assert.Contains(t, debugBuf.String(), "key=a.csv")
	assert.Contains(t, debugBuf.String(), "error=boom")
	assert.Contains(t, debugBuf.String(), "run=r1")
	assert.NotContains(t, warnBuf.String(), "key=a.csv")
	assert.Contains(t, warnBuf.String(), "error=boom")
}

func TestMultiLogHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiLogHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}
