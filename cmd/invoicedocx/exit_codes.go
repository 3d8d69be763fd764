package main

import (
	"errors"
	"os"

	"github.com/alnah/go-invoicedocx"
	"github.com/alnah/go-invoicedocx/internal/config"
)

// Exit codes for the invoicedocx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Command completed
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or request
	ExitIO         = 3 // File not found, permission denied
	ExitConversion = 4 // PDF conversion failed or timed out
	ExitAssetFetch = 5 // Overlay images could not be fetched
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch invoicedocx.KindOf(err) {
	case invoicedocx.KindAssetFetch:
		return ExitAssetFetch
	case invoicedocx.KindConversion, invoicedocx.KindTimeout:
		return ExitConversion
	case invoicedocx.KindInvalidRequest:
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, invoicedocx.ErrUnsupportedBackend) {
		return ExitUsage
	}

	return ExitGeneral
}
