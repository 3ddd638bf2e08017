// Package observability provides logging helpers shared by the chance server.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/chance/internal/config"
)

// NewLogger builds the process logger from cfg.
//
// Precondition: cfg.Level is one of "debug", "info", "warn", "error" and
// cfg.Format is "json" or "console".
// Postcondition: Returns a logger writing to cfg.Output (stderr when empty)
// or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level %q: %w", cfg.Level, err)
	}

	base := map[string]func() zap.Config{
		"json":    zap.NewProductionConfig,
		"console": zap.NewDevelopmentConfig,
	}[cfg.Format]
	if base == nil {
		return nil, fmt.Errorf("logging format %q: want json or console", cfg.Format)
	}
	zc := base()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	// Animation ticks log at debug; sampling would hide the reveal entries.
	zc.Sampling = nil

	out := cfg.Output
	if out == "" {
		out = "stderr"
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging output %q: %w", out, err)
	}
	return logger, nil
}

// ForSession returns a child logger tagged with a telnet session's identity.
func ForSession(logger *zap.Logger, sessionID, profile string) *zap.Logger {
	return logger.With(zap.String("session", sessionID), zap.String("profile", profile))
}

// ForTool returns a child logger tagged with a tool name.
func ForTool(logger *zap.Logger, tool string) *zap.Logger {
	return logger.Named(tool).With(zap.String("tool", tool))
}
