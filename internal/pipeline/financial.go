package pipeline

import (
	"fmt"
	"strings"

	"github.com/alnah/go-invoicedocx/internal/docx"
)

// LateFeeMarker is the text the late-fee row must contain to be recolored.
const LateFeeMarker = "LATE FEE"

// LateFeeOptions controls the late-fee row treatment.
type LateFeeOptions struct {
	// Apply recolors the late-fee row.
	Apply bool
	// Strict fails with ErrLateFeeMarkerMissing instead of skipping when
	// the row lacks LateFeeMarker.
	Strict bool
	// Color overrides LateFeeColor.
	Color string
}

// StyleFinancialTable gives every summary cell white borders and the
// monospaced font, right-aligns the amounts column, and, when opts.Apply is
// set, rewrites the late-fee label in the distinguishing color.
func StyleFinancialTable(pkg *docx.Package, opts LateFeeOptions) error {
	tbl, err := pkg.Table(FinancialTableIndex)
	if err != nil {
		return fmt.Errorf("%w: financial table: %v", ErrTemplateStructure, err)
	}
	rows := tbl.Rows()
	if len(rows) < financialMinRows {
		return fmt.Errorf("%w: financial table has %d rows, need at least %d",
			ErrTemplateStructure, len(rows), financialMinRows)
	}

	for _, row := range rows {
		cells := row.Cells()
		for _, cell := range cells {
			ApplyCellStyle(cell, FinancialCellStyle)
		}
		if len(cells) > 1 {
			for _, p := range cells[1].Paragraphs() {
				p.SetAlignment(docx.AlignRight)
			}
		}
	}

	if !opts.Apply {
		return nil
	}
	return recolorLateFee(rows[lateFeeRow], opts)
}

func recolorLateFee(row docx.Row, opts LateFeeOptions) error {
	cells := row.Cells()
	if len(cells) == 0 {
		return fmt.Errorf("%w: late fee row has no cells", ErrTemplateStructure)
	}
	label := cells[0]
	text := label.Text()
	if !strings.Contains(text, LateFeeMarker) {
		if opts.Strict {
			return fmt.Errorf("%w: row %d reads %q", ErrLateFeeMarkerMissing, lateFeeRow, text)
		}
		return nil
	}

	color := opts.Color
	if color == "" {
		color = LateFeeColor
	}
	run := label.SetText(text)
	docx.SetRunColor(run, color)
	docx.SetRunFont(run, DefaultFont)
	return nil
}
