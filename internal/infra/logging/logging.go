// Package logging wires slog to a zap core so the whole process writes one
// JSON log stream.
package logging

import (
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// SetupJSON builds the zap logger, installs a slog handler on top of it as
// the default logger and returns the zap logger so the caller can Sync it on
// shutdown.
func SetupJSON(level slog.Level, service, env string) (*zap.Logger, error) {
	if service == "" {
		return nil, fmt.Errorf("service name is required")
	}

	logger := newLogger(zapcore.Lock(os.Stdout), level).With(
		zap.String("service", service),
		zap.String("env", env),
	)

	slog.SetDefault(slog.New(zapslog.NewHandler(logger.Core(), zapslog.WithCaller(true))))

	return logger, nil
}

func newLogger(ws zapcore.WriteSyncer, level slog.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zapLevel(level))

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func zapLevel(l slog.Level) zapcore.Level {
	switch {
	case l < slog.LevelInfo:
		return zapcore.DebugLevel
	case l < slog.LevelWarn:
		return zapcore.InfoLevel
	case l < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
