// ABOUTME: Tests for logger construction and the color handler
// ABOUTME: Covers levels, attrs, groups, JSON output and file rotation target

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/toolhouse-hub/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestColorHandler_FormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColorHandler(&buf, slog.LevelDebug, false))

	logger.With("component", "chat").Info("send failed", "run_id", "r1")

	line := buf.String()
	assert.Contains(t, line, "INF send failed")
	assert.Contains(t, line, " component=chat")
	assert.Contains(t, line, " run_id=r1")
	assert.NotContains(t, line, "\x1b[", "no escape codes when color is off")
}

func TestColorHandler_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColorHandler(&buf, slog.LevelWarn, false))

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN shown")
}

func TestColorHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColorHandler(&buf, slog.LevelInfo, false))

	logger.WithGroup("http").Info("request", "status", 200, slog.Group("run", "id", "abc"))

	assert.Contains(t, buf.String(), " http.status=200")
	assert.Contains(t, buf.String(), " http.run.id=abc")
}

func TestColorHandler_ColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColorHandler(&buf, slog.LevelInfo, true))

	logger.Error("boom")

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf, true)
	defer closer.Close()

	logger.Info("hello", "agent_id", "a1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "a1", rec["agent_id"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hub.log")
	var stderr bytes.Buffer

	logger, closer := New(config.LoggingConfig{
		Level:     "debug",
		Format:    "text",
		File:      path,
		MaxSizeMB: 1,
	}, &stderr, true)

	logger.Debug("to file", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DBG to file")
	assert.NotContains(t, string(data), "\x1b[")
	assert.Empty(t, stderr.String())
}
