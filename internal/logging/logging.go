// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/a3tai/mcp-diarias/internal/config"
)

// Rotation limits of the log file
const (
	MaxLogSizeMB  = 20
	MaxLogBackups = 5
	MaxLogAgeDays = 30
)

// New builds a logger from the configuration. Logs go to stderr unless a log
// file is configured; stdout is reserved for the MCP stdio transport.
func New(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(output(cfg))

	if cfg.IsServerMode() || cfg.LogFile != "" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func output(cfg *config.Config) io.Writer {
	if cfg.LogFile == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    MaxLogSizeMB,
		MaxBackups: MaxLogBackups,
		MaxAge:     MaxLogAgeDays,
		Compress:   true,
	}
}

// Discard returns a logger that drops everything, for tests and tools that
// only print results
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
