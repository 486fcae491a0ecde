package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func jsonLogger(buf *bytes.Buffer) *Logger {
	return NewWithWriter(&config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"}, buf)
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(&config.Config{Env: "test", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, l)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf)

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { l.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { l.Info("info message") }, "info message", "info"},
		{"warn", func() { l.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { l.Error("error message") }, "error message", "error"},
		{"infof", func() { l.Infof("count: %d", 42) }, "count: 42", "info"},
		{"warnf", func() { l.Warnf("tier %s", "A") }, "tier A", "warn"},
		{"errorf", func() { l.Errorf("failed: %s", "timeout") }, "failed: timeout", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["message"])
			assert.Equal(t, "test", entry["env"])
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf)

	l.WithFields(map[string]interface{}{
		"symbol": "005930",
		"tier":   "B",
		"score":  65,
	}).WithComponent("brain").WithRun("run-1").Info("classified")

	entry := decode(t, &buf)
	assert.Equal(t, "005930", entry["symbol"])
	assert.Equal(t, "B", entry["tier"])
	assert.Equal(t, float64(65), entry["score"])
	assert.Equal(t, "brain", entry["component"])
	assert.Equal(t, "run-1", entry["run_id"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf)

	l.WithError(errors.New("connection refused")).WithField("source", "postgres").Error("load failed")

	entry := decode(t, &buf)
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "postgres", entry["source"])
	assert.Equal(t, "load failed", entry["message"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.Config{Env: "test", LogLevel: "info", LogFormat: "console"}, &buf)

	l.Info("console message")

	assert.Contains(t, buf.String(), "console message")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithFields(map[string]interface{}{"k": 1}).Info("discarded")
	})
}
