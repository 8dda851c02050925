package logger

import (
	stdlog "log"
	"strings"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/config"

	"github.com/rs/zerolog"
)

// LogFormat represents available log formats
type LogFormat int

const (
	FormatConsole LogFormat = iota
	FormatJSON
	FormatText
)

// LoggerConfig holds resolved configuration for logger setup
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
}

// New creates a zerolog logger from the application log configuration.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	loggerCfg, err := convertConfig(cfg)
	if err != nil {
		return zerolog.Logger{}, err
	}

	writers := createWriters(loggerCfg)
	if len(writers) == 0 {
		return zerolog.Logger{}, common.NewError("no log output writers configured")
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	instance := zerolog.New(multiWriter).
		Level(loggerCfg.Level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(loggerCfg.Level)
	stdlog.SetOutput(instance)
	stdlog.SetFlags(0)

	return instance, nil
}

// convertConfig resolves the string-based application config into a LoggerConfig.
func convertConfig(cfg config.LogConfig) (LoggerConfig, error) {
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil {
			return LoggerConfig{}, common.WrapError(err, "invalid log level")
		}
		level = parsed
	}

	maxSize := cfg.MaxLogSizeMB
	if maxSize <= 0 {
		maxSize = config.DefaultMaxLogSizeMB
	}

	return LoggerConfig{
		Level:         level,
		Format:        parseFormat(cfg.LogFormat),
		EnableConsole: true,
		EnableFile:    cfg.LogFile != "",
		FilePath:      cfg.LogFile,
		MaxSizeMB:     maxSize,
		MaxBackups:    cfg.MaxLogBackups,
	}, nil
}

// parseFormat parses string format to LogFormat
func parseFormat(formatStr string) LogFormat {
	switch strings.ToLower(formatStr) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}
