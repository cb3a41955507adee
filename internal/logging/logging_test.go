//go:build unit

package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostonefire/tripindex/config"
)

func TestNew(t *testing.T) {
	t.Run("text handler honors level", func(t *testing.T) {
		// Prepare
		buf := &bytes.Buffer{}

		// Execute
		logger, closer, err := New(config.LogConfig{Level: "warn", Format: "text"}, buf)
		require.NoError(t, err)
		defer closer()
		logger.Info("hidden")
		logger.Warn("shown", "bucket", 3)

		// Check
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
		assert.Contains(t, buf.String(), "bucket=3")
	})

	t.Run("json handler fans out to file", func(t *testing.T) {
		// Prepare
		buf := &bytes.Buffer{}
		file := filepath.Join(t.TempDir(), "tripindex.log")

		// Execute
		logger, closer, err := New(config.LogConfig{Level: "debug", Format: "json", File: file}, buf)
		require.NoError(t, err)
		logger.Debug("scan done", "rows", 10)
		require.NoError(t, closer())

		// Check
		assert.Contains(t, buf.String(), `"msg":"scan done"`)
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"rows":10`)
	})

	t.Run("bad settings", func(t *testing.T) {
		_, _, err := New(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
		assert.Error(t, err)

		_, _, err = New(config.LogConfig{Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
