// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
//
// Logger construction shared by the command-line tools.

package logging

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. Development loggers are console-encoded with
// colored levels and log at debug; production loggers are JSON at info.
func New(dev bool) (*zap.Logger, error) {
	if !dev {
		return zap.NewProduction()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// Slog exposes l through the log/slog front end.
func Slog(l *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(l.Core()))
}
