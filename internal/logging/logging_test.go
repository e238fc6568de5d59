package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowbase/internal/config"
	"knowbase/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("chatty"))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("documentService.Upload: stored", "document_id", "d1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "documentService.Upload: stored", entry["msg"])
	assert.Equal(t, "d1", entry["document_id"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(config.LogConfig{Level: "debug", Format: "text"}, &buf)

	logger.Debug("generation-queue tick")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="generation-queue tick"`)
}
