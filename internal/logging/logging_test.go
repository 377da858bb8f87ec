package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctrans.log")
	logger := NewLoggerFromConfig(&Config{Level: "warn", Format: "json", Output: path})

	logger.Info().Msg("hidden")
	logger.Warn().Str("kind", "class").Msg("shown")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"kind":"class"`)
	assert.Contains(t, string(data), `"message":"shown"`)
}

func TestNewLoggerFromNilConfig(t *testing.T) {
	logger := NewLoggerFromConfig(nil)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	assert.Same(t, Default(), FromContext(context.Background()))

	ctx := WithLogger(context.Background(), &logger)
	assert.Same(t, &logger, FromContext(ctx))

	ctx = WithField(ctx, "run", "r1")
	FromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"run":"r1"`)

	assert.Same(t, Default(), FromContext(WithLogger(context.Background(), nil)))
}

func TestSetDefault(t *testing.T) {
	prev := *Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(New(&buf))
	Default().Info().Msg("via default")
	assert.Contains(t, buf.String(), "via default")
}

func TestNewLoggerFromConfigWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerFromConfig(&Config{Level: "debug", Format: "auto", Output: "stdout", Writer: &buf})

	logger.Debug().Str("kind", "class").Msg("compared")
	// A buffer is never a terminal, so auto selects JSON.
	assert.Contains(t, buf.String(), `"kind":"class"`)
	assert.Contains(t, buf.String(), `"caller"`)
}
