// Package logging builds the process logger. Components take named
// sub-loggers ("trade", "event", "data") so log categories can be
// told apart in one stream.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a console logger at the given level. Level names follow
// zap: debug, info, warn, error.
func New(level string) (*zap.SugaredLogger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
