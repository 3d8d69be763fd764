package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-invoicedocx/internal/fileutil"
	"github.com/alnah/go-invoicedocx/internal/pipeline"
	"github.com/alnah/go-invoicedocx/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxHostLength     = 253  // DNS name
	MaxURLLength      = 2048 // Browser limit
	MaxPathLength     = 4096 // PATH_MAX
	MaxNameLength     = 100  // Template name
	MaxOriginLength   = 2048 // CORS origin
	MaxBackendLength  = 20   // "soffice", "chrome"
	MaxColorLength    = 6    // "D95132"
	MaxLogLevelLength = 10   // "debug", "warn"
)

// Limits for numeric settings.
const (
	MaxWorkers  = 8
	MaxAttempts = 10
	MaxOrigins  = 64
	MinBodySize = 1 << 10
)

// Default values for a fresh configuration.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 10000
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 90 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRateLimitRPS    = 5
	DefaultRateLimitBurst  = 10
	DefaultFetchTimeout    = 15 * time.Second
	DefaultFetchAttempts   = 3
	DefaultFetchBackoff    = 250 * time.Millisecond
	DefaultBackend         = "soffice"
	DefaultConvertTimeout  = 60 * time.Second
	DefaultLogLevel        = "info"
)

// Config holds all configuration for the invoice service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Template   TemplateConfig   `yaml:"template"`
	Assets     AssetsConfig     `yaml:"assets"`
	Conversion ConversionConfig `yaml:"conversion"`
	LateFee    LateFeeConfig    `yaml:"lateFee"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Host            string          `yaml:"host"`
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration   `yaml:"requestTimeout"` // Whole render, conversion included
	MaxBodyBytes    int64           `yaml:"maxBodyBytes"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	CORS            CORSConfig      `yaml:"cors"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig bounds render requests. RPS 0 disables the limiter.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CORSConfig lists allowed origins. "*" allows all.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// TemplateConfig selects the invoice template.
type TemplateConfig struct {
	Dir  string `yaml:"dir"`  // Empty = embedded templates only
	Name string `yaml:"name"` // Empty = "invoice"
}

// AssetsConfig defines where overlay images come from.
type AssetsConfig struct {
	StampURL     string        `yaml:"stampURL"`
	SignatureURL string        `yaml:"signatureURL"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	Attempts     int           `yaml:"attempts"` // Total tries per image, 0 = default
	Backoff      time.Duration `yaml:"backoff"`
}

// ConversionConfig defines the DOCX to PDF backend.
type ConversionConfig struct {
	Backend string        `yaml:"backend"` // soffice, chrome
	Timeout time.Duration `yaml:"timeout"`
	Binary  string        `yaml:"binary"`  // Empty = backend default
	Workers int           `yaml:"workers"` // 0 = auto
}

// LateFeeConfig controls the late fee styling pass.
type LateFeeConfig struct {
	Strict bool   `yaml:"strict"` // Fail when the marker row is missing
	Color  string `yaml:"color"`  // Hex RGB without '#'
}

// LogConfig controls the service logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"` // Console encoder instead of JSON
}

// Validate checks ranges, names and field lengths.
func (c *Config) Validate() error {
	// Server
	if err := validateFieldLength("server.host", c.Server.Host, MaxHostLength); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port: must be between 1 and 65535, got %d", ErrInvalidValue, c.Server.Port)
	}
	for name, d := range map[string]time.Duration{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"server.requestTimeout":  c.Server.RequestTimeout,
		"assets.fetchTimeout":    c.Assets.FetchTimeout,
		"assets.backoff":         c.Assets.Backoff,
		"conversion.timeout":     c.Conversion.Timeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s: must not be negative, got %s", ErrInvalidValue, name, d)
		}
	}
	if c.Server.MaxBodyBytes != 0 && c.Server.MaxBodyBytes < MinBodySize {
		return fmt.Errorf("%w: server.maxBodyBytes: must be at least %d, got %d", ErrInvalidValue, MinBodySize, c.Server.MaxBodyBytes)
	}
	if c.Server.RateLimit.RPS < 0 {
		return fmt.Errorf("%w: server.rateLimit.rps: must not be negative, got %.2f", ErrInvalidValue, c.Server.RateLimit.RPS)
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("%w: server.rateLimit.burst: must be at least 1 when rps is set, got %d", ErrInvalidValue, c.Server.RateLimit.Burst)
	}
	if len(c.Server.CORS.Origins) > MaxOrigins {
		return fmt.Errorf("%w: server.cors.origins: at most %d entries, got %d", ErrInvalidValue, MaxOrigins, len(c.Server.CORS.Origins))
	}
	for i, origin := range c.Server.CORS.Origins {
		if err := validateFieldLength(fmt.Sprintf("server.cors.origins[%d]", i), origin, MaxOriginLength); err != nil {
			return err
		}
		if origin != "*" && !fileutil.IsURL(origin) {
			return fmt.Errorf("%w: server.cors.origins[%d]: must be \"*\" or an http(s) origin, got %q", ErrInvalidValue, i, origin)
		}
	}

	// Template
	if err := validateFieldLength("template.dir", c.Template.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("template.name", c.Template.Name, MaxNameLength); err != nil {
		return err
	}

	// Assets
	if err := validateURL("assets.stampURL", c.Assets.StampURL); err != nil {
		return err
	}
	if err := validateURL("assets.signatureURL", c.Assets.SignatureURL); err != nil {
		return err
	}
	if c.Assets.Attempts < 0 || c.Assets.Attempts > MaxAttempts {
		return fmt.Errorf("%w: assets.attempts: must be between 0 and %d, got %d", ErrInvalidValue, MaxAttempts, c.Assets.Attempts)
	}

	// Conversion
	if err := validateFieldLength("conversion.backend", c.Conversion.Backend, MaxBackendLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Conversion.Backend) {
	case "", "soffice", "chrome":
	default:
		return fmt.Errorf("%w: conversion.backend: must be soffice or chrome, got %q", ErrInvalidValue, c.Conversion.Backend)
	}
	if err := validateFieldLength("conversion.binary", c.Conversion.Binary, MaxPathLength); err != nil {
		return err
	}
	if c.Conversion.Workers < 0 || c.Conversion.Workers > MaxWorkers {
		return fmt.Errorf("%w: conversion.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Conversion.Workers)
	}

	// Late fee
	if err := validateFieldLength("lateFee.color", c.LateFee.Color, MaxColorLength); err != nil {
		return err
	}
	if c.LateFee.Color != "" && !isHexColor(c.LateFee.Color) {
		return fmt.Errorf("%w: lateFee.color: must be 6 hex digits, got %q", ErrInvalidValue, c.LateFee.Color)
	}

	// Log
	if err := validateFieldLength("log.level", c.Log.Level, MaxLogLevelLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level: must be debug, info, warn or error, got %q", ErrInvalidValue, c.Log.Level)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateURL accepts empty values and absolute http(s) URLs.
func validateURL(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxURLLength); err != nil {
		return err
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s: must be an absolute http(s) URL, got %q", ErrInvalidValue, fieldName, value)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// DefaultConfig returns the configuration the service runs with when no
// file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RequestTimeout:  DefaultRequestTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			RateLimit:       RateLimitConfig{RPS: DefaultRateLimitRPS, Burst: DefaultRateLimitBurst},
			CORS:            CORSConfig{Origins: []string{"*"}},
		},
		Assets: AssetsConfig{
			StampURL:     pipeline.DefaultStampURL,
			SignatureURL: pipeline.DefaultSignatureURL,
			FetchTimeout: DefaultFetchTimeout,
			Attempts:     DefaultFetchAttempts,
			Backoff:      DefaultFetchBackoff,
		},
		Conversion: ConversionConfig{
			Backend: DefaultBackend,
			Timeout: DefaultConvertTimeout,
		},
		LateFee: LateFeeConfig{Color: pipeline.LateFeeColor},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-invoicedocx/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-invoicedocx", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
