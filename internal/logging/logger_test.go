package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")

	l.SetLevel(DEBUG)
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "[DEBUG] now visible")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" Debug ")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, ERROR)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("config: %s", "broken")
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "[FATAL] config: broken")
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "znn.log")
	l, err := NewLogger(&LoggingConfig{Level: "bogus", Output: path})
	require.NoError(t, err)
	assert.Equal(t, INFO, l.Level(), "unknown level falls back to info")

	l.Info("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] written to file")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	assert.NoError(t, l.Close())
}
