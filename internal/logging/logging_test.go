package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assfilter/internal/config"
)

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&config.Config{LogLevel: "debug", LogFormat: "text"}, &buf)
	require.NotNil(t, logger)

	logger.Info("parsed script", "events", 12)
	assert.Contains(t, buf.String(), "parsed script")
	assert.Contains(t, buf.String(), "events=12")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&config.Config{LogLevel: "info", LogFormat: "json"}, &buf)
	logger.Info("wrote output")

	assert.Contains(t, buf.String(), `"msg":"wrote output"`)
}

func TestNew_DoesNotReplaceDefault(t *testing.T) {
	before := slog.Default()

	_ = New(&config.Config{LogLevel: "info", LogFormat: "text"}, &bytes.Buffer{})
	assert.Same(t, before, slog.Default())
}

func TestSetup_SetsDefault(t *testing.T) {
	before := slog.Default()
	t.Cleanup(func() { slog.SetDefault(before) })

	logger := Setup(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Config
		logDebug  bool
		logInfo   bool
		logErrors bool
	}{
		{"debug", config.Config{LogLevel: "debug"}, true, true, true},
		{"info", config.Config{LogLevel: "info"}, false, true, true},
		{"quiet overrides debug", config.Config{LogLevel: "debug", Quiet: true}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := New(&tt.cfg, &buf)
			logger.Debug("debug-msg")
			logger.Info("info-msg")
			logger.Error("error-msg")

			assert.Equal(t, tt.logDebug, bytes.Contains(buf.Bytes(), []byte("debug-msg")))
			assert.Equal(t, tt.logInfo, bytes.Contains(buf.Bytes(), []byte("info-msg")))
			assert.Equal(t, tt.logErrors, bytes.Contains(buf.Bytes(), []byte("error-msg")))
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestContext_RoundTrip(t *testing.T) {
	logger := Discard()

	got := FromContext(NewContext(context.Background(), logger))
	assert.Same(t, logger, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	ctx := NewContext(context.Background(), New(&config.Config{LogLevel: "info"}, &buf))
	ctx = With(ctx, "input", "episode01.ass")

	FromContext(ctx).Info("filtering")
	assert.Contains(t, buf.String(), "input=episode01.ass")
}
