// Package logging builds the structured logger used across the pipeline.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates a zap logger. format is "json" or "console"; level is any zap
// level name, defaulting to info when unparsable.
func New(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	} else {
		cfg.Encoding = "json"
	}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = parsed

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
