package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smukkama/weather-summary/pkg/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogConfig{Env: "prod", Level: "info"}, "aggregator")

	logger.Debug("hidden")
	logger.Info("run complete", "days", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "run complete", entry["msg"])
	assert.Equal(t, "aggregator", entry["app"])
	assert.Equal(t, "prod", entry["env"])
	assert.Equal(t, float64(3), entry["days"])
}

func TestDevLoggerIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogConfig{Env: "dev", Level: "debug"}, "api")

	logger.Debug("starting")

	out := buf.String()
	assert.Contains(t, out, "starting")
	assert.Contains(t, out, "api")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
}
