// Package pipeline implements the invoice template rewriting stages.
//
// Each stage edits an opened docx.Package in place:
//   - Substitute replaces placeholder tokens in every paragraph and cell
//   - BuildItemsTable regenerates the line-items table from request data
//   - StyleFinancialTable restyles the summary table and the late-fee row
//   - Composite embeds the paid stamp and signature as page overlays
//   - NormalizeFont applies the uniform font to body paragraphs
//
// Stages are independent functions; the root invoicedocx package owns the
// fixed order in which they run. The package also prepares pandoc HTML for
// the Chrome PDF backend (PreparePrintHTML).
package pipeline
