package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-invoicedocx/internal/config"
)

const envPrefix = "INVOICEDOCX_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Service
	ConfigPath string   // INVOICEDOCX_CONFIG: config file path or name
	Host       string   // INVOICEDOCX_HOST: listen host
	Port       int      // INVOICEDOCX_PORT, then PORT: listen port
	RateLimit  *float64 // INVOICEDOCX_RATE_LIMIT: renders per second, 0 disables
	LogLevel   string   // INVOICEDOCX_LOG_LEVEL: debug, info, warn, error

	// Rendering
	TemplateDir   string // INVOICEDOCX_TEMPLATE_DIR: directory with <name>.docx
	TemplateName  string // INVOICEDOCX_TEMPLATE_NAME: template name
	StampURL      string // INVOICEDOCX_STAMP_URL: PAID stamp image
	SignatureURL  string // INVOICEDOCX_SIGNATURE_URL: signature image
	StrictLateFee *bool  // INVOICEDOCX_STRICT_LATE_FEE: fail on missing marker

	// Conversion
	Backend string        // INVOICEDOCX_BACKEND: soffice, chrome
	Binary  string        // INVOICEDOCX_CONVERTER_BIN: soffice or pandoc path
	Timeout time.Duration // INVOICEDOCX_TIMEOUT: conversion timeout
	Workers int           // INVOICEDOCX_WORKERS: concurrent conversions
}

// knownEnvVars lists valid INVOICEDOCX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"INVOICEDOCX_CONFIG":          true,
	"INVOICEDOCX_HOST":            true,
	"INVOICEDOCX_PORT":            true,
	"INVOICEDOCX_RATE_LIMIT":      true,
	"INVOICEDOCX_LOG_LEVEL":       true,
	"INVOICEDOCX_TEMPLATE_DIR":    true,
	"INVOICEDOCX_TEMPLATE_NAME":   true,
	"INVOICEDOCX_STAMP_URL":       true,
	"INVOICEDOCX_SIGNATURE_URL":   true,
	"INVOICEDOCX_STRICT_LATE_FEE": true,
	"INVOICEDOCX_BACKEND":         true,
	"INVOICEDOCX_CONVERTER_BIN":   true,
	"INVOICEDOCX_TIMEOUT":         true,
	"INVOICEDOCX_WORKERS":         true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable values are skipped and reported in warnings.
func loadEnvConfig(getenv func(string) string) (cfg *envConfig, warnings []string) {
	cfg = &envConfig{
		ConfigPath:   getenv("INVOICEDOCX_CONFIG"),
		Host:         getenv("INVOICEDOCX_HOST"),
		LogLevel:     getenv("INVOICEDOCX_LOG_LEVEL"),
		TemplateDir:  getenv("INVOICEDOCX_TEMPLATE_DIR"),
		TemplateName: getenv("INVOICEDOCX_TEMPLATE_NAME"),
		StampURL:     getenv("INVOICEDOCX_STAMP_URL"),
		SignatureURL: getenv("INVOICEDOCX_SIGNATURE_URL"),
		Backend:      getenv("INVOICEDOCX_BACKEND"),
		Binary:       getenv("INVOICEDOCX_CONVERTER_BIN"),
	}
	invalid := func(name, value string) {
		warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: invalid value", name, value))
	}

	// INVOICEDOCX_PORT wins over the platform-provided PORT
	for _, name := range []string{"INVOICEDOCX_PORT", "PORT"} {
		v := getenv(name)
		if v == "" {
			continue
		}
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			cfg.Port = p
			break
		}
		invalid(name, v)
	}

	if v := getenv("INVOICEDOCX_RATE_LIMIT"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps >= 0 {
			cfg.RateLimit = &rps
		} else {
			invalid("INVOICEDOCX_RATE_LIMIT", v)
		}
	}

	if v := getenv("INVOICEDOCX_STRICT_LATE_FEE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictLateFee = &b
		} else {
			invalid("INVOICEDOCX_STRICT_LATE_FEE", v)
		}
	}

	if v := getenv("INVOICEDOCX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			invalid("INVOICEDOCX_TIMEOUT", v)
		}
	}

	if v := getenv("INVOICEDOCX_WORKERS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.Workers = w
		} else {
			invalid("INVOICEDOCX_WORKERS", v)
		}
	}

	return cfg, warnings
}

// warnUnknownEnvVars logs warnings for unrecognized INVOICEDOCX_* variables.
// Helps catch typos like INVOICEDOCX_BACKEDN.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Host != "" {
		cfg.Server.Host = env.Host
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.RateLimit != nil {
		cfg.Server.RateLimit.RPS = *env.RateLimit
		if cfg.Server.RateLimit.RPS > 0 && cfg.Server.RateLimit.Burst < 1 {
			cfg.Server.RateLimit.Burst = 1
		}
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}

	if env.TemplateDir != "" {
		cfg.Template.Dir = env.TemplateDir
	}
	if env.TemplateName != "" {
		cfg.Template.Name = env.TemplateName
	}
	if env.StampURL != "" {
		cfg.Assets.StampURL = env.StampURL
	}
	if env.SignatureURL != "" {
		cfg.Assets.SignatureURL = env.SignatureURL
	}
	if env.StrictLateFee != nil {
		cfg.LateFee.Strict = *env.StrictLateFee
	}

	if env.Backend != "" {
		cfg.Conversion.Backend = env.Backend
	}
	if env.Binary != "" {
		cfg.Conversion.Binary = env.Binary
	}
	if env.Timeout > 0 {
		cfg.Conversion.Timeout = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Conversion.Workers = env.Workers
	}
}
