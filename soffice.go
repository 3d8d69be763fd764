package invoicedocx

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-invoicedocx/internal/fileutil"
)

// sofficeConverter converts DOCX to PDF with LibreOffice.
type sofficeConverter struct {
	runner  CommandRunner
	binary  string
	timeout time.Duration
}

func newSofficeConverter(runner CommandRunner, binary string, timeout time.Duration) *sofficeConverter {
	return &sofficeConverter{runner: runner, binary: binary, timeout: timeout}
}

// ToPDF writes the document into a private workspace, runs
// soffice --headless --convert-to pdf on it and reads the result back.
// The workspace, including the LibreOffice profile, is removed on return.
func (c *sofficeConverter) ToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	dir, cleanup, err := fileutil.TempDir("invoicedocx-soffice")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	defer cleanup()

	input, err := fileutil.WriteTempFile(dir, "invoice", "docx", docx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// A per-conversion profile lets several soffice processes run at once.
	profile := (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dir, "profile"))}).String()
	_, stderr, err := c.runner.Run(ctx, dir, c.binary,
		"--headless",
		"--norestore",
		"-env:UserInstallation="+profile,
		"--convert-to", "pdf",
		"--outdir", dir,
		input,
	)
	if err != nil {
		return nil, conversionError("soffice", stderr, err)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "invoice.pdf"))
	if err != nil {
		return nil, conversionError("reading soffice output", stderr, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: soffice produced an empty file", ErrConversion)
	}
	return pdf, nil
}

// Close is a no-op; each conversion owns its process.
func (c *sofficeConverter) Close() error {
	return nil
}
