// Package logging configures the go-log/zap loggers shared by every package.
package logging

import (
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

// Logger returns the named package logger.
func Logger(name string) *logging.ZapEventLogger {
	return logging.Logger(name)
}

// Sugared exposes the zap logger behind a named go-log logger, for
// components that take a *zap.SugaredLogger.
func Sugared(name string) *zap.SugaredLogger {
	return &logging.Logger(name).SugaredLogger
}

// Setup sets the level for every subsystem. Output always goes to stderr so
// the MCP stdio transport stays clean.
func Setup(verbose bool) {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logging.SetupLogging(logging.Config{
		Format: logging.ColorizedOutput,
		Stderr: true,
		Level:  level,
	})
	logging.SetAllLoggers(level)
}
