package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "podex.log")

	logger, err := New(path, "info")
	require.NoError(t, err)

	logger.Info("layout restored")
	logger.Debug("suppressed at info")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "layout restored")
	assert.NotContains(t, string(data), "suppressed at info")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "podex.log"), "loud")
	assert.Error(t, err)
}

func TestDefaultLogPath(t *testing.T) {
	path, err := DefaultLogPath()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "podex", "podex.log"), path)
}
