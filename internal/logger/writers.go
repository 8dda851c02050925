package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// createWriters creates the appropriate writers based on configuration
func createWriters(cfg LoggerConfig) []io.Writer {
	var writers []io.Writer

	if cfg.EnableConsole {
		writers = append(writers, createConsoleWriter(cfg.Format))
	}

	if cfg.EnableFile {
		writers = append(writers, createFileWriter(cfg))
	}

	return writers
}

// createConsoleWriter creates a stderr writer in the configured format
func createConsoleWriter(format LogFormat) io.Writer {
	switch format {
	case FormatJSON:
		return os.Stderr
	case FormatText:
		return zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: time.RFC3339}
	default:
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
}

// createFileWriter creates a rotating file writer
func createFileWriter(cfg LoggerConfig) io.Writer {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		// Fall back to stderr rather than dropping file logs silently.
		return os.Stderr
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: cfg.MaxBackups,
	}

	if cfg.Format == FormatJSON {
		return rotating
	}
	return zerolog.ConsoleWriter{Out: rotating, NoColor: true, TimeFormat: time.RFC3339}
}
