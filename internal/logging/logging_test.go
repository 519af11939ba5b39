package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunobiangulo/docsection"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetup_JSONToWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, cleanup, err := Setup(docsection.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("hidden")
	logger.Info("extracted", "backend", "Plain")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"backend":"Plain"`)
}

func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "docsection.log")
	logger, cleanup, err := Setup(docsection.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, os.Stderr)
	require.NoError(t, err)

	logger.Debug("to file", "n", 1)
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "to file"))
}
