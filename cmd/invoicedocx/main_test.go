package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no command", args: []string{"invoicedocx"}, wantCode: ExitUsage, wantStderr: "Usage: invoicedocx"},
		{name: "unknown command", args: []string{"invoicedocx", "convert"}, wantCode: ExitUsage, wantStderr: "unknown command: convert"},
		{name: "version", args: []string{"invoicedocx", "version"}, wantCode: ExitSuccess, wantStdout: "invoicedocx dev"},
		{name: "help", args: []string{"invoicedocx", "help"}, wantCode: ExitSuccess, wantStdout: "Commands:"},
		{name: "help for render", args: []string{"invoicedocx", "help", "render"}, wantCode: ExitSuccess, wantStdout: "Exit codes:"},
		{name: "help for unknown", args: []string{"invoicedocx", "help", "nope"}, wantCode: ExitUsage, wantStderr: "unknown command: nope"},
		{name: "command help flag", args: []string{"invoicedocx", "serve", "--help"}, wantCode: ExitSuccess, wantStdout: "Usage: invoicedocx serve"},
		{name: "bad flag", args: []string{"invoicedocx", "render", "--nope"}, wantCode: ExitUsage, wantStderr: "invoicedocx render:"},
		{name: "missing config", args: []string{"invoicedocx", "config", "-c", "/nonexistent/invoicedocx.yaml"}, wantCode: ExitUsage, wantStderr: "config"},
		{name: "config prints yaml", args: []string{"invoicedocx", "config"}, wantCode: ExitSuccess, wantStdout: "backend: soffice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			if code := runMain(tt.args, env); code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunConfig_EnvOverrides(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(map[string]string{
		"PORT":                "8443",
		"INVOICEDOCX_BACKEND": "chrome",
	})
	if err := runConfig(nil, env); err != nil {
		t.Fatalf("runConfig() error = %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"port: 8443", "backend: chrome"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunConfig_InvalidEnvValue(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(map[string]string{"INVOICEDOCX_BACKEND": "wkhtml"})
	err := runConfig(nil, env)
	if got := exitCodeFor(err); got != ExitUsage {
		t.Errorf("exitCodeFor(%v) = %d, want %d", err, got, ExitUsage)
	}
}
