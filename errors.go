package invoicedocx

import (
	"context"
	"errors"

	"github.com/alnah/go-invoicedocx/internal/assets"
	"github.com/alnah/go-invoicedocx/internal/docx"
	"github.com/alnah/go-invoicedocx/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Request validation errors.
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrTooManyItems      = errors.New("too many line items")
	ErrFieldTooLong      = errors.New("field value too long")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidText       = errors.New("text contains characters not allowed in documents")

	// Asset errors.
	ErrAssetFetch  = errors.New("asset fetch failed")
	ErrAssetDecode = errors.New("asset is not a supported image")
	ErrAssetSource = errors.New("invalid asset source")

	// Template errors.
	ErrTemplate = errors.New("template error")

	// Conversion errors.
	ErrConversion         = errors.New("document conversion failed")
	ErrUnsupportedBackend = errors.New("unsupported conversion backend")
	ErrConverterClosed    = errors.New("converter pool closed")
	ErrBrowserConnect     = errors.New("failed to connect to browser")
	ErrPageCreate         = errors.New("failed to create browser page")
	ErrPageLoad           = errors.New("failed to load page")
	ErrPDFGeneration      = errors.New("PDF generation failed")

	ErrInternal = errors.New("internal error")
)

// Kind classifies a render failure for callers that map errors to
// transport codes (HTTP status, exit code).
type Kind string

// Error kinds.
const (
	KindInvalidRequest Kind = "invalid_request"
	KindAssetFetch     Kind = "asset_fetch"
	KindTemplate       Kind = "template"
	KindConversion     Kind = "conversion"
	KindTimeout        Kind = "timeout"
	KindInternal       Kind = "internal"
)

// KindOf returns the kind of err. A nil error has no kind and returns "".
// Deadline expiry wins over every other classification.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrAssetFetch), errors.Is(err, pipeline.ErrOverlayFetch):
		return KindAssetFetch
	case isTemplateError(err):
		return KindTemplate
	case errors.Is(err, ErrConversion):
		return KindConversion
	default:
		return KindInternal
	}
}

func isTemplateError(err error) bool {
	for _, target := range []error{
		ErrTemplate,
		pipeline.ErrTemplateStructure,
		pipeline.ErrLateFeeMarkerMissing,
		docx.ErrInvalidPackage,
		docx.ErrNoBody,
		docx.ErrPartTooLarge,
		docx.ErrTableNotFound,
		assets.ErrTemplateNotFound,
		assets.ErrInvalidTemplate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
