package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-invoicedocx"
	"github.com/alnah/go-invoicedocx/internal/httpapi"
	"github.com/alnah/go-invoicedocx/internal/metrics"
)

// runServe starts the HTTP API and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	applyConversionFlags(flags.conversion, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, flags.common.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.New()
	opts, err := rendererOptions(cfg, logger, m)
	if err != nil {
		return err
	}
	renderer, err := invoicedocx.NewRenderer(opts...)
	if err != nil {
		return fmt.Errorf("starting renderer: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn("closing renderer", zap.Error(err))
		}
	}()

	if !flags.common.verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := httpapi.New(renderer, cfg.Server, httpapi.WithLogger(logger), httpapi.WithMetrics(m))

	logger.Info("invoicedocx starting",
		zap.String("version", Version),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("backend", cfg.Conversion.Backend),
		zap.Float64("rate_limit_rps", cfg.Server.RateLimit.RPS),
	)
	return srv.ListenAndServe(ctx)
}
