package main

import (
	"context"
	"errors"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP pipelines enabled in cfg and returns a
// single function that flushes and stops all of them.
func initTelemetry(ctx context.Context, cfg *config.Config) (shutdownFunc, error) {
	var shutdowns []shutdownFunc

	shutdownAll := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, shutdown)
	}

	if cfg.MetricsEnabled {
		shutdown, err := initMetrics(ctx)
		if err != nil {
			_ = shutdownAll(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, shutdown)
	}

	if cfg.OTELLogsEnabled {
		shutdown, err := observability.InitLogging(ctx)
		if err != nil {
			_ = shutdownAll(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, shutdown)
	}

	return shutdownAll, nil
}

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context) (shutdownFunc, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
