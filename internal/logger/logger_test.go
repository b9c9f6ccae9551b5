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
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN", false))
	assert.Equal(t, slog.LevelError, ParseLevel("fatal", true))
	assert.Equal(t, slog.LevelDebug, ParseLevel("", true))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose", false))
}

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, "info", "")

	log.Debug("hidden")
	log.Info("record created", "recordID", "r1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "record created", line["msg"])
	assert.Equal(t, "r1", line["recordID"])
}

func TestNewDevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "", "")

	log.Debug("queue flushed", "events", 3)

	assert.Contains(t, buf.String(), "queue flushed")
	assert.Contains(t, buf.String(), "events=3")
}
