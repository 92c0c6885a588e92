package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

// Logger is the application logger. InitLogging replaces it with one that
// writes to both stdout and the log file.
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "cms-api.log")
}

// InitLogging prepares the log file and configures the application logger.
// The returned file should be closed on shutdown; it is nil when the log
// file could not be opened and logs go to stdout only.
func InitLogging() *os.File {
	logDir := filepath.Dir(LogFilePath())
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		Logger.Warn().Err(err).Msg("failed to create logs directory")
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Logger.Warn().Err(err).Msg("failed to open log file, logging to stdout only")
		LogWriter = os.Stdout
		return nil
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	Logger = zerolog.New(LogWriter).With().Timestamp().Logger()

	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}
	Logger = Logger.Level(level)

	return logFile
}
