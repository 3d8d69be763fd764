package invoicedocx

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alnah/go-invoicedocx/internal/pipeline"
)

// Format is the output document format.
type Format string

// Supported output formats.
const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Content types per format.
const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
)

// ParseFormat parses a format name case-insensitively.
// An empty string selects FormatDOCX.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDOCX, nil
	case FormatDOCX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %w: %q (must be docx or pdf)", ErrInvalidRequest, ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return ContentTypePDF
	}
	return ContentTypeDOCX
}

// LineItem is one billable row of the invoice.
type LineItem = pipeline.LineItem

// Input limits enforced by Validate.
const (
	MaxItems       = 500
	MaxFields      = 200
	MaxFieldLength = 4096
	MaxAmount      = 1e15
)

// InvoiceNumberToken is the invoice-details key used to name output files.
const InvoiceNumberToken = "{{invoice_number}}"

// Late-fee placeholders rewritten by the pipeline.
const (
	LateFeeLabelToken = "{{LATE FEE:}}"
	LateFeeValueToken = "[latefee]"
)

// Input contains render parameters. Map keys are literal placeholder
// tokens as they appear in the template; values replace them verbatim.
type Input struct {
	ClientInfo     map[string]string `json:"client_info"`
	InvoiceDetails map[string]string `json:"invoice_details"`
	Items          []LineItem        `json:"items"`
	Financials     map[string]string `json:"financials"`
	ApplyLateFee   bool              `json:"apply_late_fee"`
	MarkAsPaid     bool              `json:"mark_as_paid"`
	Format         Format            `json:"format"`
}

// Validate checks input limits. It is the trust boundary for data that
// ends up inside document XML.
func (in *Input) Validate() error {
	if _, err := ParseFormat(string(in.Format)); err != nil {
		return err
	}

	fields := len(in.ClientInfo) + len(in.InvoiceDetails) + len(in.Financials)
	if fields > MaxFields {
		return fmt.Errorf("%w: %d placeholder values (max %d)", ErrInvalidRequest, fields, MaxFields)
	}
	for _, m := range []map[string]string{in.ClientInfo, in.InvoiceDetails, in.Financials} {
		for k, v := range m {
			if err := validateText(k); err != nil {
				return err
			}
			if err := validateText(v); err != nil {
				return fmt.Errorf("%w (key %q)", err, k)
			}
		}
	}

	if len(in.Items) > MaxItems {
		return fmt.Errorf("%w: %w: %d (max %d)", ErrInvalidRequest, ErrTooManyItems, len(in.Items), MaxItems)
	}
	for i, item := range in.Items {
		if err := validateText(item.Description); err != nil {
			return fmt.Errorf("%w (item %d)", err, i)
		}
		for _, v := range []float64{item.UnitPrice, item.Quantity, item.Total} {
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxAmount {
				return fmt.Errorf("%w: %w: item %d: %v", ErrInvalidRequest, ErrInvalidAmount, i, v)
			}
		}
	}
	return nil
}

// validateText rejects strings that cannot be stored in WordprocessingML.
func validateText(s string) error {
	if len(s) > MaxFieldLength {
		return fmt.Errorf("%w: %w: %d bytes (max %d)", ErrInvalidRequest, ErrFieldTooLong, len(s), MaxFieldLength)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %w: invalid UTF-8", ErrInvalidRequest, ErrInvalidText)
	}
	for _, r := range s {
		if (r < 0x20 && r != '\t' && r != '\n' && r != '\r') || r == 0xFFFE || r == 0xFFFF {
			return fmt.Errorf("%w: %w: %U", ErrInvalidRequest, ErrInvalidText, r)
		}
	}
	return nil
}

// Replacements merges client info, invoice details and financials (later
// maps win on duplicate keys) and adds the late-fee tokens.
func (in *Input) Replacements() map[string]string {
	repl := make(map[string]string, len(in.ClientInfo)+len(in.InvoiceDetails)+len(in.Financials)+2)
	for _, m := range []map[string]string{in.ClientInfo, in.InvoiceDetails, in.Financials} {
		for k, v := range m {
			repl[k] = v
		}
	}
	if in.ApplyLateFee {
		repl[LateFeeLabelToken] = pipeline.LateFeeMarker
	} else {
		repl[LateFeeLabelToken] = ""
		repl[LateFeeValueToken] = ""
	}
	return repl
}

// Filename returns the attachment name for a document in format f:
// Invoice_<invoice number>.<ext>, with "unknown" when no number is given.
func (in *Input) Filename(f Format) string {
	number, ok := in.InvoiceDetails[InvoiceNumberToken]
	if !ok {
		number = "unknown"
	}
	return "Invoice_" + sanitizeFilename(number) + "." + string(f)
}

// sanitizeFilename replaces path separators and control characters.
func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || r < 0x20 || r == 0x7F {
			return '_'
		}
		return r
	}, s)
}

// Result is a rendered invoice.
type Result struct {
	Data        []byte
	Format      Format
	ContentType string
	Filename    string
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeout          time.Duration
	templateName     string
	templateDir      string
	stampSource      string
	signatureSource  string
	strictLateFee    bool
	lateFeeColor     string
	backend          Backend
	converterBinary  string
	conversionLimit  time.Duration
	workers          int
	converterFactory ConverterFactory
}

// Defaults used when no option overrides them.
const (
	defaultTimeout           = 90 * time.Second
	defaultConversionTimeout = 60 * time.Second
)

// WithTimeout bounds a whole render, including asset fetches and conversion.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("invoicedocx: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithConversionTimeout bounds a single external conversion.
// Panics if d <= 0.
func WithConversionTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("invoicedocx: WithConversionTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.conversionLimit = d
	}
}

// WithLogger sets the logger. Stage transitions are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTemplateLoader replaces the template source.
func WithTemplateLoader(l TemplateLoader) Option {
	return func(r *Renderer) {
		r.templates = l
	}
}

// WithTemplateDir loads templates from dir, falling back to the embedded
// template when a name is not found there.
func WithTemplateDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.templateDir = dir
	}
}

// WithTemplateName selects the template by name (without .docx).
func WithTemplateName(name string) Option {
	return func(r *Renderer) {
		r.cfg.templateName = name
	}
}

// WithImageSource replaces the overlay image fetcher.
func WithImageSource(src ImageSource) Option {
	return func(r *Renderer) {
		r.images = src
	}
}

// WithOverlaySources sets the stamp and signature image locations used when
// an invoice is marked as paid. Empty values keep the defaults.
func WithOverlaySources(stamp, signature string) Option {
	return func(r *Renderer) {
		if stamp != "" {
			r.cfg.stampSource = stamp
		}
		if signature != "" {
			r.cfg.signatureSource = signature
		}
	}
}

// WithStrictLateFee makes a missing late-fee marker a template error
// instead of a silent skip.
func WithStrictLateFee(strict bool) Option {
	return func(r *Renderer) {
		r.cfg.strictLateFee = strict
	}
}

// WithLateFeeColor overrides the late-fee label color (hex RGB).
func WithLateFeeColor(hex string) Option {
	return func(r *Renderer) {
		r.cfg.lateFeeColor = hex
	}
}

// WithBackend selects the PDF conversion backend.
func WithBackend(b Backend) Option {
	return func(r *Renderer) {
		r.cfg.backend = b
	}
}

// WithConverterBinary overrides the executable used by the backend
// (soffice for BackendSoffice, pandoc for BackendChrome).
func WithConverterBinary(path string) Option {
	return func(r *Renderer) {
		r.cfg.converterBinary = path
	}
}

// WithWorkers sets the number of concurrent conversions. Zero sizes the
// pool from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.cfg.workers = n
	}
}

// WithConverterFactory replaces the backend with a custom converter factory.
func WithConverterFactory(f ConverterFactory) Option {
	return func(r *Renderer) {
		r.cfg.converterFactory = f
	}
}
