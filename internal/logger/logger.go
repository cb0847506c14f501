package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger writing to stderr at level ("debug", "info", ...)
// with encoding "console" or "json". An unparsable level falls back to
// info.
func New(level, encoding string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	l, err := zapcore.ParseLevel(level)
	if err != nil {
		l = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(l)

	switch encoding {
	case "", "console":
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	case "json":
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}
	config.OutputPaths = []string{"stderr"}
	config.Sampling = nil

	return config.Build()
}
