package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, path, err := New(Options{Dir: dir, Env: "test", Console: &console})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "test_"))

	logger.Debug("debug only in file")
	logger.Info("visible everywhere")
	require.NoError(t, logger.Sync())

	assert.Contains(t, console.String(), "visible everywhere")
	assert.NotContains(t, console.String(), "debug only in file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug only in file", entry["msg"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Verbose(t *testing.T) {
	var console bytes.Buffer

	logger, path, err := New(Options{Dir: t.TempDir(), Console: &console, Verbose: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "default_"))

	logger.Debug("now on console")
	assert.Contains(t, console.String(), "now on console")
}

func TestNew_FileLevel(t *testing.T) {
	info := zapcore.InfoLevel
	logger, path, err := New(Options{Dir: t.TempDir(), Console: &bytes.Buffer{}, FileLevel: &info})
	require.NoError(t, err)

	logger.Debug("dropped")
	logger.Info("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}
