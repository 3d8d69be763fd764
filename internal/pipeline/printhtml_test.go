package pipeline_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-invoicedocx/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestPreparePrintHTML - Media paths and print CSS
// ---------------------------------------------------------------------------

func TestPreparePrintHTML(t *testing.T) {
	t.Parallel()

	mediaDir := t.TempDir()
	absMedia, err := filepath.Abs(mediaDir)
	if err != nil {
		t.Fatalf("filepath.Abs() unexpected error: %v", err)
	}
	mediaURL := "file://" + filepath.ToSlash(absMedia)

	tests := []struct {
		name        string
		input       string
		dir         string
		css         string
		contains    []string
		notContains []string
	}{
		{
			name:     "relative image rewritten",
			input:    `<html><head></head><body><img src="media/image1.png"></body></html>`,
			dir:      mediaDir,
			contains: []string{`src="` + mediaURL + `/media/image1.png"`},
		},
		{
			name:     "data uri untouched",
			input:    `<img src="data:image/png;base64,AAAA">`,
			dir:      mediaDir,
			contains: []string{`src="data:image/png;base64,AAAA"`},
		},
		{
			name:     "remote url untouched",
			input:    `<img src="https://example.com/a.png">`,
			dir:      mediaDir,
			contains: []string{`src="https://example.com/a.png"`},
		},
		{
			name:        "traversal not rewritten",
			input:       `<img src="../../etc/passwd">`,
			dir:         mediaDir,
			contains:    []string{`src="../../etc/passwd"`},
			notContains: []string{"file://"},
		},
		{
			name:        "no media dir",
			input:       `<img src="media/image1.png">`,
			contains:    []string{`src="media/image1.png"`},
			notContains: []string{"file://"},
		},
		{
			name:     "css injected into head",
			input:    `<html><head><title>x</title></head><body><p>hi</p></body></html>`,
			css:      pipeline.PrintCSS,
			contains: []string{"<style>@page { size: A4;", "</style></head>"},
		},
		{
			name:     "css injected into synthesized head",
			input:    `<p>fragment</p>`,
			css:      "p { color: red; }",
			contains: []string{"<head><style>p { color: red; }</style></head>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := pipeline.PreparePrintHTML(tt.input, tt.dir, tt.css)
			if err != nil {
				t.Fatalf("PreparePrintHTML() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot: %s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("output contains %q\ngot: %s", unwanted, got)
				}
			}
		})
	}
}
