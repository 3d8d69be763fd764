// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// statDockerenv reports whether /.dockerenv exists. Replaced in tests.
var statDockerenv = func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// InContainer detects a container runtime. The second value names the
// signal that matched.
func InContainer(getenv func(string) string) (bool, string) {
	if getenv("INVOICEDOCX_CONTAINER") == "1" {
		return true, "INVOICEDOCX_CONTAINER=1"
	}
	if statDockerenv() {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// InCI reports whether a CI system is driving the process.
func InCI(getenv func(string) string) bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for Chrome launch failures.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	inContainer, _ := InContainer(getenv)
	if (InCI(getenv) || inContainer) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForMissingConverter returns a hint when a converter binary cannot be run.
func ForMissingConverter() string {
	return format("install LibreOffice (soffice) or pandoc, or set INVOICEDOCX_CONVERTER_BIN; run 'invoicedocx doctor'")
}

// ForTimeout returns a hint about raising the conversion timeout.
func ForTimeout() string {
	return format("raise conversion.timeout or INVOICEDOCX_TIMEOUT")
}

// ForAssetFetch returns a hint for overlay images that could not be fetched.
func ForAssetFetch() string {
	return format("check assets.stampURL and assets.signatureURL are reachable")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the user config directory.
func ForConfigNotFound(userConfigDir string) string {
	hint := "use --config /path/to/file.yaml"
	if userConfigDir != "" {
		hint += " or create " + userConfigDir + "/go-invoicedocx/<name>.yaml"
	}
	return format(hint)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
