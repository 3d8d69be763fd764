package pipeline

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-invoicedocx/internal/docx"
)

// Template table positions and minimum row counts.
const (
	ItemsTableIndex     = 0
	FinancialTableIndex = 1

	itemsHeaderRows  = 2 // header + style-template row
	itemsColumns     = 4
	financialMinRows = 4
	lateFeeRow       = 3
	itemBorderSize   = 6
)

const (
	currencyPrefix    = "Rp "
	currencyFormatTwo = "#,###.##"
)

// LineItem is one billable row of the invoice.
type LineItem struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    float64 `json:"quantity"`
	Total       float64 `json:"total"`
}

// itemAlignments is the fixed column alignment of generated rows.
var itemAlignments = [itemsColumns]docx.Alignment{
	docx.AlignLeft, docx.AlignRight, docx.AlignCenter, docx.AlignRight,
}

// FormatCurrency renders an amount in rupiah. Zero renders empty, whole
// amounts without decimals ("Rp 1,000"), others with two ("Rp 1,000.50").
func FormatCurrency(amount float64) string {
	if amount == 0 {
		return ""
	}
	if amount == math.Trunc(amount) {
		return currencyPrefix + humanize.Comma(int64(amount))
	}
	return currencyPrefix + humanize.FormatFloat(currencyFormatTwo, amount)
}

// FormatQuantity renders whole quantities as integers and others in their
// shortest decimal form.
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatInt(int64(q), 10)
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// BuildItemsTable regenerates the line-items table: existing rows get white
// borders, sample rows past the style-template row are purged, one styled
// row is appended per item, and the style-template row is removed. The
// result is the header row followed by exactly len(items) rows.
func BuildItemsTable(pkg *docx.Package, items []LineItem) error {
	tbl, err := pkg.Table(ItemsTableIndex)
	if err != nil {
		return fmt.Errorf("%w: items table: %v", ErrTemplateStructure, err)
	}
	rows := tbl.Rows()
	if len(rows) < itemsHeaderRows {
		return fmt.Errorf("%w: items table has %d rows, need at least %d",
			ErrTemplateStructure, len(rows), itemsHeaderRows)
	}
	if cols := len(tbl.GridWidths()); cols < itemsColumns {
		return fmt.Errorf("%w: items table has %d columns, need %d",
			ErrTemplateStructure, cols, itemsColumns)
	}

	for _, row := range rows {
		for _, cell := range row.Cells() {
			SetBorders(cell, White, itemBorderSize)
		}
	}
	for _, sample := range rows[itemsHeaderRows:] {
		tbl.RemoveRow(sample)
	}

	for _, item := range items {
		appendItemRow(tbl, item)
	}

	tbl.RemoveRow(rows[1])
	return nil
}

func appendItemRow(tbl docx.Table, item LineItem) {
	values := [itemsColumns]string{
		item.Description,
		FormatCurrency(item.UnitPrice),
		FormatQuantity(item.Quantity),
		FormatCurrency(item.Total),
	}

	cells := tbl.AddRow().Cells()
	for i, value := range values {
		cell := cells[i]
		cell.SetText(value)
		ApplyCellStyle(cell, ItemCellStyle)
		for _, p := range cell.Paragraphs() {
			p.SetAlignment(itemAlignments[i])
		}
	}
	// Columns past the fourth still carry the row styling.
	for _, cell := range cells[itemsColumns:] {
		ApplyCellStyle(cell, ItemCellStyle)
	}
}
