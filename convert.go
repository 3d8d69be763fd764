package invoicedocx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-invoicedocx/internal/process"
)

// Backend names a PDF conversion backend.
type Backend string

// Supported backends.
const (
	// BackendSoffice converts with LibreOffice in headless mode. It keeps the
	// exact page layout, including anchored overlays.
	BackendSoffice Backend = "soffice"

	// BackendChrome converts DOCX to HTML with pandoc and prints it with
	// headless Chrome. Anchored images are rendered inline.
	BackendChrome Backend = "chrome"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = BackendSoffice

// ParseBackend parses a backend name. An empty string selects DefaultBackend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return DefaultBackend, nil
	case BackendSoffice, BackendChrome:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q (must be soffice or chrome)", ErrUnsupportedBackend, s)
	}
}

// DefaultBinary returns the executable a backend invokes.
func (b Backend) DefaultBinary() string {
	if b == BackendChrome {
		return "pandoc"
	}
	return "soffice"
}

// PDFConverter converts a serialized DOCX package to PDF.
// Implementations need not be safe for concurrent use; ConverterPool
// hands each instance to one caller at a time.
type PDFConverter interface {
	ToPDF(ctx context.Context, docx []byte) ([]byte, error)
	Close() error
}

// ConverterFactory creates a PDFConverter for a pool slot.
type ConverterFactory func() (PDFConverter, error)

// NewConverterFactory returns a factory for backend b. An empty binary
// uses the backend default; timeout bounds each conversion.
func NewConverterFactory(b Backend, binary string, timeout time.Duration) (ConverterFactory, error) {
	if _, err := ParseBackend(string(b)); err != nil {
		return nil, err
	}
	if b == "" {
		b = DefaultBackend
	}
	if binary == "" {
		binary = b.DefaultBinary()
	}
	if timeout <= 0 {
		timeout = defaultConversionTimeout
	}

	switch b {
	case BackendChrome:
		return func() (PDFConverter, error) {
			return newChromeConverter(&execRunner{}, binary, timeout), nil
		}, nil
	default:
		return func() (PDFConverter, error) {
			return newSofficeConverter(&execRunner{}, binary, timeout), nil
		}, nil
	}
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout []byte, stderr string, err error)
}

// execRunner implements CommandRunner using os/exec. The child runs in its
// own process group, killed as a whole when ctx ends.
type execRunner struct{}

// processWaitDelay bounds how long Wait blocks on pipes after a kill.
const processWaitDelay = 5 * time.Second

func (r *execRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = processWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, stderr.String(), ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, stderr.String(), fmt.Errorf("%s exited with code %d", name, exitErr.ExitCode())
		}
		return nil, stderr.String(), fmt.Errorf("running %s: %w", name, err)
	}
	return stdout.Bytes(), stderr.String(), nil
}

// conversionError wraps a runner failure. Deadline expiry stays
// detectable with errors.Is(err, context.DeadlineExceeded).
func conversionError(step string, stderr string, err error) error {
	stderr = strings.TrimSpace(stderr)
	if len(stderr) > maxStderrInError {
		stderr = stderr[:maxStderrInError] + "..."
	}
	if stderr != "" {
		return fmt.Errorf("%w: %s: %s: %w", ErrConversion, step, stderr, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrConversion, step, err)
}

const maxStderrInError = 512
