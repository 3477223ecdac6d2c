// Package logging configures the logrus logger shared by csgtree commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LevelEnv names the environment variable consulted for the default level.
const LevelEnv = "CSG_LOG_LEVEL"

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// Level represents a log level
type Level = logrus.Level

// Log levels
const (
	TraceLevel = logrus.TraceLevel
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// EnvLevel returns the level named by CSG_LOG_LEVEL, or WarnLevel when the
// variable is unset or unrecognized.
func EnvLevel() Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LevelEnv))) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "error":
		return ErrorLevel
	default:
		return WarnLevel
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(name string) (Level, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// NewLogger creates a logger writing JSON to w at the level from the
// environment.
func NewLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(EnvLevel())
	return logger
}

// NewLoggerWithCommand creates a logger that tags every entry with the
// command that produced it. An empty level keeps the environment default.
func NewLoggerWithCommand(w io.Writer, command, level string) (logrus.FieldLogger, error) {
	logger := NewLogger(w)
	if level != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(lvl)
	}
	return logger.WithField("command", command), nil
}
