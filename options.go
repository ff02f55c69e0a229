package workpool

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/workpool/metrics"
)

// config holds Pool configuration.
type config struct {
	// Name identifies the pool in log entries.
	// Default: "workpool".
	Name string

	// Logger receives lifecycle and failure events.
	// Default: zap.NewNop().
	Logger *zap.Logger

	// Metrics constructs the pool instruments.
	// Default: metrics.NoopProvider.
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Name:    Namespace,
		Logger:  zap.NewNop(),
		Metrics: metrics.NewNoopProvider(),
	}
}

// validateConfig checks invariants that individual options cannot see.
func validateConfig(cfg *config) error {
	if cfg.Logger == nil || cfg.Metrics == nil {
		return errorc.With(ErrInvalidConfig, errorc.String("", "logger and metrics provider must be set"))
	}
	return nil
}

// Option configures a Pool. Use New(size, opts...) to construct a Pool via options.
type Option func(*config) error

// WithName sets the pool name reported in log entries.
func WithName(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithName requires a non-empty name"))
		}
		cfg.Name = name
		return nil
	}
}

// WithLogger sets the structured logger used by the pool and its workers.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider used to build pool instruments.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
