package pipeline

import "github.com/alnah/go-invoicedocx/internal/docx"

// Presentation constants shared by the table stages.
const (
	DefaultFont     = "Courier New"
	DefaultFontSize = 10
	White           = "FFFFFF"
	ItemFill        = "DDEFD5"
	LateFeeColor    = "D95132"
)

// CellStyle describes uniform cell presentation. Zero fields are left alone.
type CellStyle struct {
	Fill        string
	BorderColor string
	BorderSize  int // eighths of a point
	Font        string
	FontSize    float64 // points
}

// ItemCellStyle is applied to every generated line-item cell.
var ItemCellStyle = CellStyle{
	Fill:        ItemFill,
	BorderColor: White,
	BorderSize:  6,
	Font:        DefaultFont,
	FontSize:    DefaultFontSize,
}

// FinancialCellStyle is applied to every financial summary cell.
var FinancialCellStyle = CellStyle{
	BorderColor: White,
	BorderSize:  4,
	Font:        DefaultFont,
	FontSize:    DefaultFontSize,
}

// ApplyCellStyle applies s to the cell: fill, then borders on all four
// sides, then font on every run of every paragraph in the cell.
func ApplyCellStyle(c docx.Cell, s CellStyle) {
	if s.Fill != "" {
		docx.SetCellShading(c, s.Fill)
	}
	if s.BorderColor != "" {
		SetBorders(c, s.BorderColor, s.BorderSize)
	}
	if s.Font == "" && s.FontSize == 0 {
		return
	}
	for _, p := range c.Paragraphs() {
		for _, r := range p.Runs() {
			applyRunFont(r, s.Font, s.FontSize)
		}
	}
}

// SetBorders sets a single-line border of the given color and size on all
// four sides of the cell.
func SetBorders(c docx.Cell, hex string, size int) {
	for _, side := range docx.BorderSides {
		docx.SetCellBorder(c, side, hex, size)
	}
}

func applyRunFont(r docx.Run, font string, size float64) {
	if font != "" {
		docx.SetRunFont(r, font)
	}
	if size > 0 {
		docx.SetRunSize(r, size)
	}
}
