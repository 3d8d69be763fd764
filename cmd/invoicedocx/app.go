package main

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-invoicedocx"
	"github.com/alnah/go-invoicedocx/internal/config"
	"github.com/alnah/go-invoicedocx/internal/metrics"
)

// loadConfig layers defaults, the config file, and the environment.
// Flags are applied by each command afterwards.
func loadConfig(configFlag string, env *Environment) (*config.Config, error) {
	envCfg, warnings := loadEnvConfig(env.Getenv)
	for _, w := range warnings {
		fmt.Fprintf(env.Stderr, "warning: %s\n", w)
	}
	warnUnknownEnvVars(env.Stderr, env.Environ())

	path := configFlag
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// applyConversionFlags overrides the conversion section when flags are set.
func applyConversionFlags(f conversionFlags, cfg *config.Config) {
	if f.backend != "" {
		cfg.Conversion.Backend = f.backend
	}
	if f.workers > 0 {
		cfg.Conversion.Workers = f.workers
	}
}

// newLogger builds a JSON production logger, or a console logger in
// development mode. verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development || verbose {
		zcfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("%w: log level: %w", config.ErrInvalidValue, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// rendererOptions translates the config into renderer options.
// m may be nil when metrics are not exported.
func rendererOptions(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) ([]invoicedocx.Option, error) {
	backend, err := invoicedocx.ParseBackend(cfg.Conversion.Backend)
	if err != nil {
		return nil, err
	}

	fetchOpts := []invoicedocx.FetcherOption{
		invoicedocx.WithFetchLogger(logger),
		invoicedocx.WithRetry(cfg.Assets.Attempts, cfg.Assets.Backoff),
	}
	if cfg.Assets.FetchTimeout > 0 {
		fetchOpts = append(fetchOpts, invoicedocx.WithFetchTimeout(cfg.Assets.FetchTimeout))
	}
	if m != nil {
		fetchOpts = append(fetchOpts, invoicedocx.WithBreakerStateHook(m.BreakerStateChanged))
	}

	opts := []invoicedocx.Option{
		invoicedocx.WithLogger(logger),
		invoicedocx.WithImageSource(invoicedocx.NewImageFetcher(fetchOpts...)),
		invoicedocx.WithOverlaySources(cfg.Assets.StampURL, cfg.Assets.SignatureURL),
		invoicedocx.WithTemplateDir(cfg.Template.Dir),
		invoicedocx.WithStrictLateFee(cfg.LateFee.Strict),
		invoicedocx.WithBackend(backend),
		invoicedocx.WithConverterBinary(cfg.Conversion.Binary),
		invoicedocx.WithWorkers(cfg.Conversion.Workers),
	}
	if cfg.Template.Name != "" {
		opts = append(opts, invoicedocx.WithTemplateName(cfg.Template.Name))
	}
	if cfg.LateFee.Color != "" {
		opts = append(opts, invoicedocx.WithLateFeeColor(cfg.LateFee.Color))
	}
	if cfg.Server.RequestTimeout > 0 {
		opts = append(opts, invoicedocx.WithTimeout(cfg.Server.RequestTimeout))
	}
	if cfg.Conversion.Timeout > 0 {
		opts = append(opts, invoicedocx.WithConversionTimeout(cfg.Conversion.Timeout))
	}
	if m != nil {
		opts = append(opts, invoicedocx.WithStageHook(func(s invoicedocx.Stage, elapsed time.Duration) {
			m.ObserveStage(s.String(), elapsed)
		}))
	}
	return opts, nil
}
