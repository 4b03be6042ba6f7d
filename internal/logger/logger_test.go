package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":    zapcore.DebugLevel,
		" Info ":   zapcore.InfoLevel,
		"WARN":     zapcore.WarnLevel,
		"error":    zapcore.ErrorLevel,
		"fatal":    zapcore.FatalLevel,
		"\tpanic ": zapcore.PanicLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestContextLogger checks that named loggers and key-values travel with the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithSink(zapcore.AddSync(&buf), zapcore.DebugLevel))
	ctx = WithName(ctx, "model-updater")
	ctx = WithKV(ctx, "step", "backup")

	InfoKV(ctx, "Backup created", "path", "data/hf_models.json.backup.20240101_000000")
	DebugKV(ctx, "Artifact missing")

	out := buf.String()
	require.Contains(t, out, "model-updater")
	require.Contains(t, out, "Backup created")
	require.Contains(t, out, "step")
	require.Contains(t, out, "backup")
	require.Contains(t, out, "Artifact missing")
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, global, FromContext(context.Background()))
}

// TestSetLevelString applies known levels and ignores unknown ones.
func TestSetLevelString(t *testing.T) {
	previous := Level()
	t.Cleanup(func() {
		SetLevel(previous)
	})

	require.True(t, SetLevelString("debug"))
	require.Equal(t, zapcore.DebugLevel, Level())

	require.False(t, SetLevelString("loud"))
	require.Equal(t, zapcore.DebugLevel, Level())
}

// TestApplyLevel lets the override win and reports unknown names.
func TestApplyLevel(t *testing.T) {
	previous := Level()
	t.Cleanup(func() {
		SetLevel(previous)
	})

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithSink(zapcore.AddSync(&buf), zapcore.DebugLevel))

	ApplyLevel(ctx, "warn", "debug")
	require.Equal(t, zapcore.DebugLevel, Level())
	require.Empty(t, buf.String())

	ApplyLevel(ctx, "info", "loud")
	require.Equal(t, zapcore.InfoLevel, Level())
	require.Contains(t, buf.String(), "Unknown log level")
	require.Contains(t, buf.String(), "loud")

	ApplyLevel(ctx, "error", "")
	require.Equal(t, zapcore.ErrorLevel, Level())
}
