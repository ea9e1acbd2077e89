package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewWithFormat(t *testing.T) {
	var jsonBuf bytes.Buffer
	NewWithFormat("json", "info", &jsonBuf).Info("geometry built", "prisms", 18)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &entry))
	assert.Equal(t, float64(18), entry["prisms"])

	var textBuf bytes.Buffer
	NewWithFormat("text", "info", &textBuf).Info("geometry built", "prisms", 18)
	assert.Contains(t, textBuf.String(), "prisms=18")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		logFunc  func(string, ...any)
		logMsg   string
		expected bool
	}{
		{"Debug when debug level", "debug", Debug, "debug message", true},
		{"Debug when info level", "info", Debug, "debug message", false},
		{"Info when info level", "info", Info, "info message", true},
		{"Info when warn level", "warn", Info, "info message", false},
		{"Warn when info level", "info", Warn, "warn message", true},
		{"Error when error level", "error", Error, "error message", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetDefault(New(tt.logLevel, &buf))

			tt.logFunc(tt.logMsg)

			if tt.expected {
				assert.Contains(t, buf.String(), tt.logMsg)
			} else {
				assert.NotContains(t, buf.String(), tt.logMsg)
			}
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New("info", &buf))

	With("run_id", "run-1", "engine", "meep").Info("run started")

	for _, want := range []string{"run_id", "run-1", "engine", "meep"} {
		assert.Contains(t, buf.String(), want)
	}
}
