package main

import (
	"errors"
	"testing"

	flag "github.com/spf13/pflag"
)

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	f, err := parseServeFlags([]string{"--host", "127.0.0.1", "-p", "8080", "--backend", "chrome", "-w", "2", "-c", "prod", "-v"})
	if err != nil {
		t.Fatalf("parseServeFlags() error = %v", err)
	}
	if f.host != "127.0.0.1" || f.port != 8080 {
		t.Errorf("listen = %s:%d", f.host, f.port)
	}
	if f.conversion.backend != "chrome" || f.conversion.workers != 2 {
		t.Errorf("conversion = %+v", f.conversion)
	}
	if f.common.config != "prod" || !f.common.verbose {
		t.Errorf("common = %+v", f.common)
	}
}

func TestParseRenderFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, err := parseRenderFlags(nil)
	if err != nil {
		t.Fatalf("parseRenderFlags() error = %v", err)
	}
	if f.input != "-" {
		t.Errorf("input = %q, want stdin", f.input)
	}
	if f.output != "" || f.format != "" || f.quiet {
		t.Errorf("flags = %+v", f)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		parse    func() error
		wantHelp bool
	}{
		{name: "unknown flag", parse: func() error { _, err := parseServeFlags([]string{"--listen", "x"}); return err }},
		{name: "bad int", parse: func() error { _, err := parseServeFlags([]string{"-p", "http"}); return err }},
		{name: "positional", parse: func() error { _, err := parseConfigFlags([]string{"extra"}); return err }},
		{name: "help", parse: func() error { _, err := parseDoctorFlags([]string{"-h"}); return err }, wantHelp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.parse()
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("error = %v, want ErrUsage", err)
			}
			if got := errors.Is(err, flag.ErrHelp); got != tt.wantHelp {
				t.Errorf("errors.Is(err, ErrHelp) = %v, want %v", got, tt.wantHelp)
			}
		})
	}
}
