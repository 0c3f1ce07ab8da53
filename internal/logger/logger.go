package logger

import (
	"go.uber.org/zap"
)

// New builds a zap logger for the given level ("debug", "info", "warn", "error", ...).
// Development mode switches to the console encoder with stack traces on warnings.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl

	return cfg.Build()
}
