package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvConfigPath = "ZNN_CONFIG"
	EnvLogLevel   = "ZNN_LOG_LEVEL"
	EnvLogOutput  = "ZNN_LOG_OUTPUT"
)

// Env holds the process settings that do not belong in the training
// configuration file itself.
type Env struct {
	ConfigPath string
	LogLevel   string
	LogOutput  string
}

// LoadEnv reads the .env file of the project root, if any, then lets the
// process environment override it. The returned Env is always usable; a
// non-nil error reports a .env file that could not be located or read, in
// which case only the process environment was applied.
func LoadEnv() (*Env, error) {
	env := &Env{
		LogLevel:  "info",
		LogOutput: "stderr",
	}

	var envErr error
	cwd, err := os.Getwd()
	if err != nil {
		envErr = fmt.Errorf("cannot locate .env: %w", err)
	} else {
		envPath := filepath.Join(findProjectRoot(cwd), ".env")
		vals, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			env.apply(vals)
		case !errors.Is(err, fs.ErrNotExist):
			envErr = fmt.Errorf("cannot read %s: %w", envPath, err)
		}
	}

	env.apply(map[string]string{
		EnvConfigPath: os.Getenv(EnvConfigPath),
		EnvLogLevel:   os.Getenv(EnvLogLevel),
		EnvLogOutput:  os.Getenv(EnvLogOutput),
	})
	return env, envErr
}

func (e *Env) apply(vals map[string]string) {
	if v := vals[EnvConfigPath]; v != "" {
		e.ConfigPath = v
	}
	if v := vals[EnvLogLevel]; v != "" {
		e.LogLevel = v
	}
	if v := vals[EnvLogOutput]; v != "" {
		e.LogOutput = v
	}
}

// findProjectRoot returns dir if it holds a .env file, otherwise the
// nearest ancestor holding a go.mod, otherwise dir.
func findProjectRoot(dir string) string {
	if _, err := os.Stat(filepath.Join(dir, ".env")); err == nil {
		return dir
	}
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
