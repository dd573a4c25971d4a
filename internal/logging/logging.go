// Package logging builds the zap logger used by the sercmd CLI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/allbin/go-sercmd/internal/config"
)

// LevelForVerbosity maps the -v count to a level: none logs errors only,
// -v adds info and -vv adds debug.
func LevelForVerbosity(verbosity int) zapcore.Level {
	switch {
	case verbosity >= 2:
		return zapcore.DebugLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.ErrorLevel
	}
}

// New creates a logger from cfg. cfg.Level wins over the verbosity count
// when set. Output goes to stderr, or to a rotated file when cfg.File is set.
func New(cfg config.LogConfig, verbosity int) (*zap.Logger, error) {
	sink, err := writeSyncer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}
	return build(cfg, verbosity, sink)
}

func build(cfg config.LogConfig, verbosity int, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level := LevelForVerbosity(verbosity)
	if cfg.Level != "" {
		parsed, err := parseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		level = parsed
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig(cfg))
	case "console", "":
		encoder = zapcore.NewConsoleEncoder(encoderConfig(cfg))
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel)), nil
}

func encoderConfig(cfg config.LogConfig) zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	encoderCfg.LevelKey = "level"
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderCfg.CallerKey = "caller"
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.MessageKey = "message"

	if cfg.Format != "json" {
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		if cfg.File == "" {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	return encoderCfg
}

func writeSyncer(cfg config.LogConfig) (zapcore.WriteSyncer, error) {
	if cfg.File == "" {
		return zapcore.Lock(os.Stderr), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}), nil
}

func parseLevel(name string) (zapcore.Level, error) {
	switch name {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", name)
	}
}
