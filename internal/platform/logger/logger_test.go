package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseLevel(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func TestSetupWarnsOnInvalidLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &Buffer{}
	l, err := setup(buf, config.ServerConfig{LogLevel: "chatty"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "chatty", entries[0]["configured_level"])

	l.Debug("hidden")
	entries, err = buf.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1, "debug should be filtered at info level")
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	def, _ := NewCapturing()
	scoped, buf := NewCapturing()

	assert.Same(t, def, FromContextOrDefault(context.Background(), def))
	assert.NotNil(t, FromContext(context.Background()))

	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContextOrDefault(ctx, def))
	assert.Same(t, scoped, FromContext(ctx))

	FromContext(ctx).Info("hello", slog.String("k", "v"))
	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["msg"])
	assert.Equal(t, "v", entries[0]["k"])

	assert.Panics(t, func() { WithLogger(context.Background(), nil) })
}
