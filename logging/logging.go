// Package logging adapts zap to the batch.Logger interface.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/MasterOfBinary/seqbatch/batch"
)

// Config describes where and how to log.
type Config struct {
	// Level is one of debug, info, warn or error.
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`

	// File is the path of a log file rotated by size. Logs go to stderr when
	// it is empty.
	File string `mapstructure:"file"`

	MaxSizeMB  int `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int `mapstructure:"max_age_days" validate:"gte=0"`

	// JSON selects the JSON encoder instead of the console one.
	JSON bool `mapstructure:"json"`
}

// Logger is a batch.Logger backed by a zap.SugaredLogger.
type Logger struct {
	s *zap.SugaredLogger
}

var _ batch.Logger = (*Logger)(nil)

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var out zapcore.WriteSyncer
	if cfg.File != "" {
		out = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	} else {
		out = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level))
	return NewFromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))), nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(l *zap.Logger) *Logger {
	return &Logger{s: l.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return NewFromZap(zap.NewNop())
}

// With returns a Logger that adds the given key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{s: l.s.With(keysAndValues...)}
}

// Debug implements batch.Logger.
func (l *Logger) Debug(format string, args ...interface{}) { l.s.Debugf(format, args...) }

// Info implements batch.Logger.
func (l *Logger) Info(format string, args ...interface{}) { l.s.Infof(format, args...) }

// Warn implements batch.Logger.
func (l *Logger) Warn(format string, args ...interface{}) { l.s.Warnf(format, args...) }

// Error implements batch.Logger.
func (l *Logger) Error(format string, args ...interface{}) { l.s.Errorf(format, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.s.Sync()
}
