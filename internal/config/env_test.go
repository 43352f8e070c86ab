package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ZNN_CONFIG=experiments/N4.cfg\nZNN_LOG_LEVEL=debug\n"), 0644))
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogOutput, "")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "experiments/N4.cfg", env.ConfigPath)
	assert.Equal(t, "debug", env.LogLevel)
	assert.Equal(t, "stderr", env.LogOutput)
}

func TestLoadEnvProcessOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ZNN_LOG_LEVEL=debug\n"), 0644))
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, "other.cfg")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogOutput, "")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "other.cfg", env.ConfigPath)
	assert.Equal(t, "warn", env.LogLevel)
}

func TestLoadEnvWithoutDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0644))
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogOutput, "")

	env, err := LoadEnv()
	require.NoError(t, err, "a missing .env is not an error")
	assert.Equal(t, "info", env.LogLevel)
}

func TestLoadEnvUnreadableDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0755))
	t.Chdir(dir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogOutput, "")

	env, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
	assert.Equal(t, "error", env.LogLevel, "process environment still applies")
}

func TestLoadEnvWorkingDirectoryGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0755))
	t.Chdir(dir)
	require.NoError(t, os.Remove(dir))
	t.Setenv(EnvConfigPath, "run.cfg")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogOutput, "")

	env, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot locate .env")
	assert.Equal(t, "run.cfg", env.ConfigPath)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644))

	assert.Equal(t, root, findProjectRoot(nested))

	require.NoError(t, os.WriteFile(filepath.Join(nested, ".env"), nil, 0644))
	assert.Equal(t, nested, findProjectRoot(nested))
}
