package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Service: "triangle"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New(Config{Level: "verbose"})
	require.Error(t, err)
}

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(Config{Environment: "production", Level: "info", Service: "triangle"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("surface configured", zap.Int("width", 640))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "surface configured", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "triangle", entry["service"])
	assert.Equal(t, "production", entry["environment"])
	assert.Equal(t, float64(640), entry["width"])
}

func TestDevelopmentLoggerIsConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(Config{Level: "debug", Service: "triangle"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("shader compiled")
	require.NoError(t, l.Sync())

	assert.Contains(t, buf.String(), "shader compiled")
	assert.Contains(t, buf.String(), `"environment": "development"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
