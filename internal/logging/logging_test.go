package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhour/blazebot/internal/conf"
)

func TestNewFileLoggerWritesStructuredEntries(t *testing.T) {
	logConf := conf.LogConfig{
		Enabled:  true,
		Path:     filepath.Join(t.TempDir(), "logs", "engine.log"),
		Rotation: conf.RotationDaily,
	}

	logger, closeLog, err := NewFileLogger(logConf, "engine", slog.LevelInfo)
	require.NoError(t, err)

	logger.Info("engine started", "zones", 3)
	require.NoError(t, closeLog())

	data, err := os.ReadFile(logConf.Path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "engine started", entry["msg"])
	assert.Equal(t, "engine", entry["service"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(3), entry["zones"])
}

func TestNewFileLoggerHonorsLevel(t *testing.T) {
	logConf := conf.LogConfig{
		Enabled:  true,
		Path:     filepath.Join(t.TempDir(), "quiet.log"),
		Rotation: conf.RotationSize,
		MaxSize:  10 * 1024 * 1024,
	}

	logger, closeLog, err := NewFileLogger(logConf, "engine", slog.LevelInfo)
	require.NoError(t, err)

	logger.Debug("suppressed")
	logger.Info("kept")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(logConf.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug entries must be filtered at info level")
	assert.Contains(t, lines[0], "kept")
}
