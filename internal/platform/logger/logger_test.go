package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/folio-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"Error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(buf, "warn")
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("dropped")
	slog.Warn("kept", "component", "post_store")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	logger.AssertLogField(t, buf, "component", "post_store")
}

func TestSetupWithWriterInvalidLevelDefaultsToInfo(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(buf, "chatty")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	logger.AssertLogContains(t, buf, "shown")
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	fallback, fallbackBuf := logger.GetTestLogger(t)

	// No logger in context: the fallback is used.
	logger.FromContextOrDefault(context.Background(), fallback).Info("from fallback")
	logger.AssertLogContains(t, fallbackBuf, "from fallback")

	// Context logger wins over the fallback.
	ctx, ctxBuf := logger.NewLogCaptureContext(t)
	logger.FromContextOrDefault(ctx, fallback).Info("from context")
	logger.AssertLogContains(t, ctxBuf, "from context")
	assert.NotContains(t, fallbackBuf.String(), "from context")

	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	assert.NotNil(t, logger.FromContext(ctx))
}
