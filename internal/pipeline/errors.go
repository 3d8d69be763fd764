package pipeline

import "errors"

// Sentinel errors for template rewriting.
var (
	// ErrTemplateStructure reports a template that breaks the table contract:
	// items table first with header and style rows, financial table second
	// with the late-fee line on row 3.
	ErrTemplateStructure = errors.New("template structure violation")

	// ErrLateFeeMarkerMissing is returned in strict mode when the late-fee row
	// no longer carries its marker text.
	ErrLateFeeMarkerMissing = errors.New("late fee marker missing from financial table")

	// ErrOverlayFetch wraps any failure to obtain an overlay image.
	ErrOverlayFetch = errors.New("overlay image unavailable")
)
