// Package logger builds the structured zap logger shared by every engine component.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the logger
type Config struct {
	// Environment is "development" (console output, debug stack traces) or "production" (JSON).
	Environment string
	// Level is one of debug, info, warn, error.
	Level string
	// Service is attached to every entry as the "service" field.
	Service string
}

// New creates a logger writing to stderr.
//
// Parameters:
//   - cfg: the logger configuration; empty fields fall back to development/info
//
// Returns:
//   - *zap.Logger: the configured logger with service and environment base fields
//   - error: an error if the level is unknown
func New(cfg Config) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

// build assembles the zap core for cfg on top of the given sink.
func build(cfg Config, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	opts := []zap.Option{zap.AddCaller()}
	if cfg.Environment == "development" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
		opts = append(opts, zap.Development())
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, opts...).With(
		zap.String("service", cfg.Service),
		zap.String("environment", cfg.Environment),
	), nil
}

// ParseLevel converts a level name to a zap level. An empty name means info.
//
// Parameters:
//   - level: debug, info, warn or error
//
// Returns:
//   - zapcore.Level: the parsed level
//   - error: an error for any other name
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
