package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"
)

// testEnv returns an Environment backed by buffers and a fixed variable map.
// LookPath finds the names in tools; LookChrome reports no browser.
func testEnv(vars map[string]string, tools ...string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		LookPath: func(name string) (string, error) {
			for _, t := range tools {
				if t == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("executable file not found in $PATH")
		},
		LookChrome: func() (string, bool) { return "", false },
	}
	return env, &stdout, &stderr
}

func withStdin(env *Environment, r io.Reader) *Environment {
	env.Stdin = r
	return env
}
