package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New(path, "debug")
	require.NoError(t, err)

	log.Info("booking id=%d created", 42)
	log.Debug("debug line")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "booking id=42 created")
	assert.Contains(t, string(data), "debug line")
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(path, "warn")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("visible")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
