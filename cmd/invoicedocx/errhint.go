package main

import (
	"errors"
	"os"
	"os/exec"

	"github.com/alnah/go-invoicedocx"
	"github.com/alnah/go-invoicedocx/internal/config"
	"github.com/alnah/go-invoicedocx/internal/hints"
)

// errorHint returns a hint line for errors users can fix themselves,
// or "" when none applies.
func errorHint(err error, getenv func(string) string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, invoicedocx.ErrBrowserConnect):
		return hints.ForBrowserConnect(getenv)
	case invoicedocx.KindOf(err) == invoicedocx.KindTimeout:
		return hints.ForTimeout()
	case invoicedocx.KindOf(err) == invoicedocx.KindConversion &&
		(errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)):
		return hints.ForMissingConverter()
	case invoicedocx.KindOf(err) == invoicedocx.KindAssetFetch:
		return hints.ForAssetFetch()
	case errors.Is(err, config.ErrConfigNotFound):
		dir, _ := os.UserConfigDir()
		return hints.ForConfigNotFound(dir)
	}
	return ""
}
