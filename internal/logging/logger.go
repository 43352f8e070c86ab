package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type LoggingConfig struct {
	Level  string `json:"level"`
	Output string `json:"output"`
}

type Logger struct {
	logger *log.Logger
	closer io.Closer
	mutex  sync.RWMutex
	level  LogLevel
	exit   func(int)
}

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelMap = map[string]LogLevel{
	"debug": DEBUG,
	"info":  INFO,
	"warn":  WARN,
	"error": ERROR,
	"fatal": FATAL,
}

func (l LogLevel) String() string {
	for name, lvl := range levelMap {
		if lvl == l {
			return strings.ToUpper(name)
		}
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel accepts the level names in any case.
func ParseLevel(s string) (LogLevel, error) {
	level, ok := levelMap[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger opens the configured output. Output is "stdout", "stderr" or a
// file path that is appended to. Unknown levels fall back to info.
func NewLogger(config *LoggingConfig) (*Logger, error) {
	if config == nil {
		config = &LoggingConfig{
			Level:  "info",
			Output: "stdout",
		}
	}

	level, err := ParseLevel(config.Level)
	if err != nil {
		level = INFO
	}

	var (
		output io.Writer
		closer io.Closer
	)
	switch config.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		closer = file
	}

	l := New(output, level)
	l.closer = closer
	return l, nil
}

// New writes to w, dropping messages below level.
func New(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
		exit:   os.Exit,
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, FATAL+1)
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mutex.Lock()
	l.level = level
	l.mutex.Unlock()
}

func (l *Logger) Level() LogLevel {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.level
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if l.Level() > level {
		return
	}
	l.logger.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(DEBUG, format, args...) }

func (l *Logger) Info(format string, args ...interface{}) { l.logf(INFO, format, args...) }

func (l *Logger) Warn(format string, args ...interface{}) { l.logf(WARN, format, args...) }

func (l *Logger) Error(format string, args ...interface{}) { l.logf(ERROR, format, args...) }

// Fatal logs regardless of level and exits with status 1.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.logger.Printf("[FATAL] "+format, args...)
	l.Close()
	l.exit(1)
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
