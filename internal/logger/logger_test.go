package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/kutbudev/todoflow/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info("hidden")
	log.Warn("shown", "todo_id", 7)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "todoflow", entry["service"])
	assert.EqualValues(t, 7, entry["todo_id"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(config.LogConfig{Format: "text"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
