package invoicedocx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// mockRunner fakes external commands. onRun may create output files in dir.
type mockRunner struct {
	calls  [][]string
	dirs   []string
	stdout []byte
	stderr string
	err    error
	onRun  func(dir string, args []string) error
}

func (m *mockRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, string, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	m.dirs = append(m.dirs, dir)
	if m.err != nil {
		return nil, m.stderr, m.err
	}
	if m.onRun != nil {
		if err := m.onRun(dir, args); err != nil {
			return nil, m.stderr, err
		}
	}
	return m.stdout, m.stderr, nil
}

// mockRenderer returns canned PDF bytes and captures the printed HTML.
type mockRenderer struct {
	html   string
	out    []byte
	err    error
	closed bool
}

func (m *mockRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	m.html = string(data)
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// TestParseBackend - Backend names
// ---------------------------------------------------------------------------

func TestParseBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Backend
		wantErr error
	}{
		{in: "", want: BackendSoffice},
		{in: "soffice", want: BackendSoffice},
		{in: " Chrome ", want: BackendChrome},
		{in: "wkhtmltopdf", wantErr: ErrUnsupportedBackend},
	}

	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseBackend(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewConverterFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend Backend
		binary  string
		check   func(t *testing.T, conv PDFConverter)
		wantErr error
	}{
		{
			name:    "soffice default binary",
			backend: BackendSoffice,
			check: func(t *testing.T, conv PDFConverter) {
				c, ok := conv.(*sofficeConverter)
				if !ok || c.binary != "soffice" || c.timeout != defaultConversionTimeout {
					t.Errorf("converter = %#v", conv)
				}
			},
		},
		{
			name:    "chrome custom pandoc",
			backend: BackendChrome,
			binary:  "/opt/pandoc",
			check: func(t *testing.T, conv PDFConverter) {
				c, ok := conv.(*chromeConverter)
				if !ok || c.pandoc != "/opt/pandoc" {
					t.Errorf("converter = %#v", conv)
				}
			},
		},
		{
			name:    "empty backend is soffice",
			backend: "",
			check: func(t *testing.T, conv PDFConverter) {
				if _, ok := conv.(*sofficeConverter); !ok {
					t.Errorf("converter = %T, want *sofficeConverter", conv)
				}
			},
		},
		{name: "unknown backend", backend: "gs", wantErr: ErrUnsupportedBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory, err := NewConverterFactory(tt.backend, tt.binary, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewConverterFactory() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			conv, err := factory()
			if err != nil {
				t.Fatalf("factory() unexpected error: %v", err)
			}
			tt.check(t, conv)
		})
	}
}

// ---------------------------------------------------------------------------
// TestSofficeConverter - LibreOffice invocation
// ---------------------------------------------------------------------------

func TestSofficeConverter_ToPDF(t *testing.T) {
	t.Parallel()

	var seenInput []byte
	runner := &mockRunner{onRun: func(dir string, args []string) error {
		var err error
		seenInput, err = os.ReadFile(args[len(args)-1])
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, "invoice.pdf"), []byte("%PDF-1.7"), 0o600)
	}}
	conv := newSofficeConverter(runner, "soffice", time.Minute)

	pdf, err := conv.ToPDF(context.Background(), []byte("PK-docx"))
	if err != nil {
		t.Fatalf("ToPDF() unexpected error: %v", err)
	}
	if string(pdf) != "%PDF-1.7" {
		t.Errorf("ToPDF() = %q", pdf)
	}
	if string(seenInput) != "PK-docx" {
		t.Errorf("soffice input = %q", seenInput)
	}

	args := runner.calls[0]
	if args[0] != "soffice" || !slices.Contains(args, "--headless") {
		t.Errorf("command = %q", args)
	}
	if i := slices.Index(args, "--convert-to"); i < 0 || args[i+1] != "pdf" {
		t.Errorf("command = %q, want --convert-to pdf", args)
	}
	if !slices.ContainsFunc(args, func(a string) bool { return strings.HasPrefix(a, "-env:UserInstallation=file://") }) {
		t.Errorf("command = %q, want private profile", args)
	}

	if _, err := os.Stat(runner.dirs[0]); !os.IsNotExist(err) {
		t.Errorf("workspace %s not removed: %v", runner.dirs[0], err)
	}
}

func TestSofficeConverter_Errors(t *testing.T) {
	t.Parallel()

	errExit := errors.New("soffice exited with code 1")
	tests := []struct {
		name      string
		runner    *mockRunner
		wantErr   error
		wantInMsg string
	}{
		{
			name:      "process failure",
			runner:    &mockRunner{err: errExit, stderr: "Error: source file could not be loaded"},
			wantErr:   errExit,
			wantInMsg: "could not be loaded",
		},
		{
			name:    "timeout",
			runner:  &mockRunner{err: context.DeadlineExceeded},
			wantErr: context.DeadlineExceeded,
		},
		{
			name:      "no output file",
			runner:    &mockRunner{},
			wantErr:   os.ErrNotExist,
			wantInMsg: "reading soffice output",
		},
		{
			name: "empty output file",
			runner: &mockRunner{onRun: func(dir string, _ []string) error {
				return os.WriteFile(filepath.Join(dir, "invoice.pdf"), nil, 0o600)
			}},
			wantInMsg: "empty file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newSofficeConverter(tt.runner, "soffice", time.Minute).ToPDF(context.Background(), []byte("PK"))
			if !errors.Is(err, ErrConversion) {
				t.Fatalf("ToPDF() error = %v, want ErrConversion", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ToPDF() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("ToPDF() error = %q, want to contain %q", err, tt.wantInMsg)
			}
		})
	}
}

func TestConversionError_TimeoutKind(t *testing.T) {
	t.Parallel()

	err := conversionError("soffice", "", context.DeadlineExceeded)
	if KindOf(err) != KindTimeout {
		t.Errorf("KindOf() = %q, want %q", KindOf(err), KindTimeout)
	}
}

func TestConversionError_TruncatesStderr(t *testing.T) {
	t.Parallel()

	err := conversionError("pandoc", strings.Repeat("x", 4*maxStderrInError), errors.New("exit 1"))
	if len(err.Error()) > 2*maxStderrInError {
		t.Errorf("error length = %d, stderr not truncated", len(err.Error()))
	}
}

// ---------------------------------------------------------------------------
// TestChromeConverter - pandoc + headless Chrome
// ---------------------------------------------------------------------------

func TestChromeConverter_ToPDF(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{
		stdout: []byte(`<html><head></head><body><img src="./media/image1.png"></body></html>`),
	}
	renderer := &mockRenderer{out: []byte("%PDF-chrome")}
	conv := &chromeConverter{runner: runner, pandoc: "pandoc", timeout: time.Minute, renderer: renderer}

	pdf, err := conv.ToPDF(context.Background(), []byte("PK"))
	if err != nil {
		t.Fatalf("ToPDF() unexpected error: %v", err)
	}
	if string(pdf) != "%PDF-chrome" {
		t.Errorf("ToPDF() = %q", pdf)
	}

	args := runner.calls[0]
	for _, want := range []string{"pandoc", "docx", "html5", "--extract-media=."} {
		if !slices.Contains(args, want) {
			t.Errorf("pandoc command %q missing %q", args, want)
		}
	}
	if !strings.Contains(renderer.html, "file://") || !strings.Contains(renderer.html, "/media/image1.png") {
		t.Errorf("media not rewritten to file URL: %s", renderer.html)
	}
	if !strings.Contains(renderer.html, "@page") {
		t.Errorf("print CSS not injected: %s", renderer.html)
	}

	if err := conv.Close(); err != nil || !renderer.closed {
		t.Errorf("Close() = %v, renderer closed = %v", err, renderer.closed)
	}
}

func TestChromeConverter_Errors(t *testing.T) {
	t.Parallel()

	errRender := errors.New("chrome crashed")
	tests := []struct {
		name     string
		runner   *mockRunner
		renderer *mockRenderer
		wantErr  error
	}{
		{
			name:     "pandoc failure",
			runner:   &mockRunner{err: errors.New("pandoc exited with code 64")},
			renderer: &mockRenderer{},
		},
		{
			name:     "render failure",
			runner:   &mockRunner{stdout: []byte("<p>x</p>")},
			renderer: &mockRenderer{err: errRender},
			wantErr:  errRender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := &chromeConverter{runner: tt.runner, pandoc: "pandoc", timeout: time.Minute, renderer: tt.renderer}
			_, err := conv.ToPDF(context.Background(), []byte("PK"))
			if !errors.Is(err, ErrConversion) {
				t.Errorf("ToPDF() error = %v, want ErrConversion", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ToPDF() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuildPDFOptions - A4 page
// ---------------------------------------------------------------------------

func TestBuildPDFOptions(t *testing.T) {
	t.Parallel()

	opts := buildPDFOptions()
	if *opts.PaperWidth != paperWidthInches || *opts.PaperHeight != paperHeightInches {
		t.Errorf("paper = %vx%v, want A4", *opts.PaperWidth, *opts.PaperHeight)
	}
	if !opts.PrintBackground {
		t.Error("PrintBackground = false, want true")
	}
}
