package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Schema child orders. Tags missing from an order list sort last.
var (
	paragraphOrder = []string{"w:pPr"}
	runOrder       = []string{"w:rPr"}
	cellOrder      = []string{"w:tcPr"}

	paragraphPropsOrder = []string{
		"w:pStyle", "w:keepNext", "w:keepLines", "w:pageBreakBefore", "w:framePr",
		"w:widowControl", "w:numPr", "w:suppressLineNumbers", "w:pBdr", "w:shd",
		"w:tabs", "w:suppressAutoHyphens", "w:kinsoku", "w:wordWrap",
		"w:overflowPunct", "w:topLinePunct", "w:autoSpaceDE", "w:autoSpaceDN",
		"w:bidi", "w:adjustRightInd", "w:snapToGrid", "w:spacing", "w:ind",
		"w:contextualSpacing", "w:mirrorIndents", "w:suppressOverlap", "w:jc",
		"w:textDirection", "w:textAlignment", "w:textboxTightWrap",
		"w:outlineLvl", "w:divId", "w:cnfStyle", "w:rPr", "w:sectPr", "w:pPrChange",
	}

	runPropsOrder = []string{
		"w:rStyle", "w:rFonts", "w:b", "w:bCs", "w:i", "w:iCs", "w:caps",
		"w:smallCaps", "w:strike", "w:dstrike", "w:outline", "w:shadow",
		"w:emboss", "w:imprint", "w:noProof", "w:snapToGrid", "w:vanish",
		"w:webHidden", "w:color", "w:spacing", "w:w", "w:kern", "w:position",
		"w:sz", "w:szCs", "w:highlight", "w:u", "w:effect", "w:bdr", "w:shd",
		"w:fitText", "w:vertAlign", "w:rtl", "w:cs", "w:em", "w:lang",
		"w:eastAsianLayout", "w:specVanish", "w:oMath",
	}

	cellPropsOrder = []string{
		"w:cnfStyle", "w:tcW", "w:gridSpan", "w:hMerge", "w:vMerge",
		"w:tcBorders", "w:shd", "w:noWrap", "w:tcMar", "w:textDirection",
		"w:tcFitText", "w:vAlign", "w:hideMark",
	}

	borderOrder = []string{
		"w:top", "w:left", "w:start", "w:bottom", "w:right", "w:end",
		"w:insideH", "w:insideV", "w:tl2br", "w:tr2bl",
	}
)

// BorderSides lists the four outer cell borders.
var BorderSides = []string{"top", "left", "bottom", "right"}

// ensureChild returns the first child with tag, inserting a new one at its
// schema position when missing. order lists the known sibling tags in
// sequence; new children go before the first sibling that sorts after them
// or is not listed (content such as w:r after w:pPr).
func ensureChild(parent *etree.Element, tag string, order []string) *etree.Element {
	if existing := parent.SelectElement(tag); existing != nil {
		return existing
	}

	child := etree.NewElement(tag)
	rank := orderIndex(order, tag)
	for _, sibling := range parent.ChildElements() {
		if sibRank := orderIndex(order, sibling.FullTag()); sibRank < 0 || sibRank > rank {
			parent.InsertChildAt(sibling.Index(), child)
			return child
		}
	}
	parent.AddChild(child)
	return child
}

func orderIndex(order []string, tag string) int {
	for i, t := range order {
		if t == tag {
			return i
		}
	}
	return -1
}

func setVal(el *etree.Element, val string) {
	el.CreateAttr("w:val", val)
}

// SetRunFont sets the run's font for ascii, hAnsi, and eastAsia scripts.
func SetRunFont(r Run, name string) {
	fonts := ensureChild(r.Properties(), "w:rFonts", runPropsOrder)
	fonts.CreateAttr("w:ascii", name)
	fonts.CreateAttr("w:hAnsi", name)
	fonts.CreateAttr("w:eastAsia", name)
}

// RunFont returns the run's ascii font, or "" when unset.
func RunFont(r Run) string {
	fonts := r.el.FindElement("./w:rPr/w:rFonts")
	if fonts == nil {
		return ""
	}
	return fonts.SelectAttrValue("w:ascii", "")
}

// SetRunSize sets the run's font size in points.
func SetRunSize(r Run, points float64) {
	halfPoints := strconv.Itoa(int(points * 2))
	setVal(ensureChild(r.Properties(), "w:sz", runPropsOrder), halfPoints)
}

// SetRunColor sets the run's text color as a hex RGB string.
func SetRunColor(r Run, hex string) {
	setVal(ensureChild(r.Properties(), "w:color", runPropsOrder), normalizeHex(hex))
}

// RunColor returns the run's hex color, or "" when unset.
func RunColor(r Run) string {
	color := r.el.FindElement("./w:rPr/w:color")
	if color == nil {
		return ""
	}
	return color.SelectAttrValue("w:val", "")
}

// SetCellShading sets a solid background fill on the cell.
func SetCellShading(c Cell, hex string) {
	shd := ensureChild(c.Properties(), "w:shd", cellPropsOrder)
	shd.CreateAttr("w:val", "clear")
	shd.CreateAttr("w:color", "auto")
	shd.CreateAttr("w:fill", normalizeHex(hex))
}

// CellShading returns the cell's fill color, or "" when unset.
func CellShading(c Cell) string {
	shd := c.el.FindElement("./w:tcPr/w:shd")
	if shd == nil {
		return ""
	}
	return shd.SelectAttrValue("w:fill", "")
}

// SetCellBorder sets a single-line border on one side of the cell.
// size is in eighths of a point. Repeated calls replace the side.
func SetCellBorder(c Cell, side, hex string, size int) {
	borders := ensureChild(c.Properties(), "w:tcBorders", cellPropsOrder)
	border := ensureChild(borders, "w:"+side, borderOrder)
	border.CreateAttr("w:val", "single")
	border.CreateAttr("w:sz", strconv.Itoa(size))
	border.CreateAttr("w:space", "0")
	border.CreateAttr("w:color", normalizeHex(hex))
}

// CellBorder returns the color and size of one side, and whether it is set.
func CellBorder(c Cell, side string) (hex string, size int, ok bool) {
	border := c.el.FindElement("./w:tcPr/w:tcBorders/w:" + side)
	if border == nil {
		return "", 0, false
	}
	size, _ = strconv.Atoi(border.SelectAttrValue("w:sz", "0"))
	return border.SelectAttrValue("w:color", ""), size, true
}

// normalizeHex strips a leading '#' and upper-cases the color.
func normalizeHex(hex string) string {
	return strings.ToUpper(strings.TrimPrefix(hex, "#"))
}
