package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/logging"
)

// Log rotation settings for the optional file writer.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// InitLogger builds the server logger from config: console output always,
// plus a rotated, credential-filtered log file when one is configured.
// It also installs the result as zerolog's global logger.
func InitLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var writer io.Writer = console
	if fileWriter := newLogFileWriter(cfg.File); fileWriter != nil {
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := zerolog.New(writer).
		Level(level).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()

	log.Logger = logger
	return logger
}

// newLogFileWriter creates a rotating writer for path, wrapped so
// credentials are redacted before they reach disk. Returns nil when no
// path is configured or the directory cannot be created; logging then
// stays console-only.
func newLogFileWriter(path string) io.Writer {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}
	return logging.NewFilteringWriter(lj)
}
