package invoicedocx

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-invoicedocx/internal/fileutil"
	"github.com/alnah/go-invoicedocx/internal/pipeline"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ PDFConverter = (*chromeConverter)(nil)
	_ PDFConverter = (*sofficeConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// PDF page dimensions in inches (A4).
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// newRodRenderer creates a rodRenderer with the given timeout.
func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(buildPDFOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions prints A4 with margins owned by the page CSS.
func buildPDFOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(paperWidthInches),
		PaperHeight:       floatPtr(paperHeightInches),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// chromeConverter converts DOCX to HTML with pandoc, then prints the HTML
// to PDF with headless Chrome via go-rod.
type chromeConverter struct {
	runner   CommandRunner
	pandoc   string
	timeout  time.Duration
	renderer pdfRenderer
}

// newChromeConverter creates a chromeConverter with a production renderer.
func newChromeConverter(runner CommandRunner, pandoc string, timeout time.Duration) *chromeConverter {
	return &chromeConverter{
		runner:   runner,
		pandoc:   pandoc,
		timeout:  timeout,
		renderer: newRodRenderer(timeout),
	}
}

// ToPDF converts a DOCX package to PDF bytes. Embedded media is extracted
// next to the HTML in a private workspace removed on return.
func (c *chromeConverter) ToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	dir, cleanup, err := fileutil.TempDir("invoicedocx-chrome")
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

	htmlOut, stderr, err := c.runner.Run(ctx, dir, c.pandoc,
		input, "-f", "docx", "-t", "html5", "--standalone", "--extract-media=.",
	)
	if err != nil {
		return nil, conversionError("pandoc", stderr, err)
	}

	printable, err := pipeline.PreparePrintHTML(string(htmlOut), dir, pipeline.PrintCSS)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing HTML: %w", ErrConversion, err)
	}
	page, err := fileutil.WriteTempFile(dir, "invoice", "html", []byte(printable))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}

	pdf, err := c.renderer.RenderFromFile(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return pdf, nil
}

// Close releases browser resources.
func (c *chromeConverter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
