// Package logger builds the zap logger used by machinewatch.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where and how log entries are written.
type Config struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"` // empty disables file output
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// ParseLevel maps a level name to a zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// New builds a logger writing to stdout and, if cfg.File is set, to a rotating file.
func New(cfg Config) (*zap.Logger, error) {
	level := ParseLevel(cfg.Level)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(cfg.JSON), zapcore.AddSync(os.Stdout), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			fileEncoder(),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxAge:     cfg.MaxAgeDays,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func consoleEncoder(json bool) zapcore.Encoder {
	if json {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder
		c.StacktraceKey = ""
		return zapcore.NewJSONEncoder(c)
	}
	c := zap.NewDevelopmentEncoderConfig()
	c.EncodeTime = zapcore.RFC3339TimeEncoder
	c.EncodeLevel = zapcore.CapitalColorLevelEncoder
	c.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(c)
}

func fileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		CallerKey:    "caller",
		MessageKey:   "msg",
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	})
}
