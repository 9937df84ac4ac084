// Package util holds small helpers shared by the service and the CLI.
package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: console output for humans
// running the CLI, JSON for log collectors. An unknown or empty level
// falls back to info.
func NewLogger(json bool, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl))
}
