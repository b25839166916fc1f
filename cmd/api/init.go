package main

import (
	"context"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

func noopShutdown(context.Context) error { return nil }

// initTracing installs the OTLP trace exporter when enabled. Otherwise the
// global no-op tracer provider stays in place.
func initTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTLP.Enabled {
		return noopShutdown, nil
	}
	return observability.InitTracing(ctx)
}

// initLogging tees the zap logger into the OTLP log pipeline when enabled.
func initLogging(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTLP.LogsEnabled {
		return noopShutdown, nil
	}
	return observability.InitLogging(ctx)
}

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	shutdown := noopShutdown

	if cfg.OTLP.Enabled {
		var err error
		shutdown, err = observability.InitMetrics(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
