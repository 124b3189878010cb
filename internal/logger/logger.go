// Package logger builds the player's zap logger from the logging section of
// the config. Records go to a colored console and, when a log file is set,
// to a rotating JSON file.
package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/phanxgames/tableau/internal/config"
)

// Log file rotation.
const (
	maxSizeMB  = 20
	maxBackups = 3
	maxAgeDays = 7
)

// New returns a logger at cfg.Level. Console records are written to console
// unless it is nil.
func New(cfg config.LoggingConfig, console io.Writer) *zap.Logger {
	lvl := parseLevel(cfg.Level)

	var cores []zapcore.Core
	if console != nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.ConsoleSeparator = " "
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(console), lvl))
	}
	if cfg.LogFile != "" {
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "time"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(rotating(cfg.LogFile)), lvl))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
		LocalTime:  true,
	}
}

// parseLevel falls back to info for empty or unknown names.
func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
