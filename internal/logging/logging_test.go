package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calm-sounds.log")

	logger, err := New("debug", path)
	require.NoError(t, err)

	logger.Debug("mixer adjusted", zap.String("sound", "rain"))
	logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"mixer adjusted"`)
	assert.Contains(t, string(data), `"sound":"rain"`)
}

func TestNew_Level(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")

	logger, err := New("warn", path)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}
