package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, slog.LevelInfo, true))

	log.Debug("hidden")
	log.With("component", "cart").WithGroup("req").Info("served", "status", 200, "path", "/api/v1/cart items")

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "INFO  served")
	assert.Contains(t, line, " component=cart")
	assert.Contains(t, line, " req.status=200")
	assert.Contains(t, line, ` req.path="/api/v1/cart items"`)
	assert.NotContains(t, line, "\033[")
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn", "json")

	log.Info("skipped")
	log.Warn("kept", "user_id", "u-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "u-1", entry["user_id"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
