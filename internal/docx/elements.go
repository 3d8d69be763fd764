package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Alignment is a paragraph justification value (w:jc/@w:val).
type Alignment string

// Paragraph alignments.
const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Paragraph wraps a w:p element.
type Paragraph struct{ el *etree.Element }

// Run wraps a w:r element.
type Run struct{ el *etree.Element }

// Table wraps a w:tbl element.
type Table struct{ el *etree.Element }

// Row wraps a w:tr element.
type Row struct{ el *etree.Element }

// Cell wraps a w:tc element.
type Cell struct{ el *etree.Element }

// Element returns the underlying w:p element.
func (p Paragraph) Element() *etree.Element { return p.el }

// Runs returns the text runs of the paragraph in document order,
// including runs nested in hyperlinks.
func (p Paragraph) Runs() []Run {
	var runs []Run
	for _, child := range p.el.ChildElements() {
		switch child.FullTag() {
		case "w:r":
			runs = append(runs, Run{el: child})
		case "w:hyperlink":
			for _, r := range child.SelectElements("w:r") {
				runs = append(runs, Run{el: r})
			}
		}
	}
	return runs
}

// Text returns the concatenated text of all runs.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// SetText replaces every run with a single run holding text.
// Paragraph properties are kept; run-level formatting is discarded.
func (p Paragraph) SetText(text string) Run {
	p.ClearRuns()
	return p.AddRun(text)
}

// ClearRuns removes all runs and hyperlinks, keeping w:pPr.
func (p Paragraph) ClearRuns() {
	for _, child := range p.el.ChildElements() {
		switch child.FullTag() {
		case "w:r", "w:hyperlink":
			p.el.RemoveChild(child)
		}
	}
}

// AddRun appends a new run holding text.
func (p Paragraph) AddRun(text string) Run {
	r := Run{el: p.el.CreateElement("w:r")}
	if text != "" {
		r.SetText(text)
	}
	return r
}

// SetAlignment sets the paragraph justification.
func (p Paragraph) SetAlignment(a Alignment) {
	pPr := ensureChild(p.el, "w:pPr", paragraphOrder)
	setVal(ensureChild(pPr, "w:jc", paragraphPropsOrder), string(a))
}

// Alignment returns the paragraph justification, or "" when unset.
func (p Paragraph) Alignment() Alignment {
	jc := p.el.FindElement("./w:pPr/w:jc")
	if jc == nil {
		return ""
	}
	return Alignment(jc.SelectAttrValue("w:val", ""))
}

// Element returns the underlying w:r element.
func (r Run) Element() *etree.Element { return r.el }

// Text returns the run text. Tabs and breaks map to "\t" and "\n".
func (r Run) Text() string {
	var sb strings.Builder
	for _, child := range r.el.ChildElements() {
		switch child.FullTag() {
		case "w:t":
			sb.WriteString(child.Text())
		case "w:tab":
			sb.WriteByte('\t')
		case "w:br", "w:cr":
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// SetText replaces the run content, keeping w:rPr and any drawings.
// Tabs become w:tab and line breaks (\n, \r, \r\n) become w:br, so
// SetText(r.Text()) reproduces the run.
func (r Run) SetText(text string) {
	for _, child := range r.el.ChildElements() {
		switch child.FullTag() {
		case "w:t", "w:tab", "w:br", "w:cr":
			r.el.RemoveChild(child)
		}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		r.el.CreateElement("w:t")
		return
	}
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\t':
			r.addText(text[start:i])
			r.el.CreateElement("w:tab")
			start = i + 1
		case '\n', '\r':
			r.addText(text[start:i])
			r.el.CreateElement("w:br")
			start = i + 1
		}
	}
	r.addText(text[start:])
}

func (r Run) addText(s string) {
	if s == "" {
		return
	}
	t := r.el.CreateElement("w:t")
	t.SetText(s)
	if needsPreserve(s) {
		t.CreateAttr("xml:space", "preserve")
	}
}

// needsPreserve reports whether XML whitespace handling could alter s.
func needsPreserve(s string) bool {
	return s != strings.TrimSpace(s) || strings.Contains(s, "  ")
}

// Properties returns the run's w:rPr, creating it when missing.
func (r Run) Properties() *etree.Element {
	return ensureChild(r.el, "w:rPr", runOrder)
}

// Element returns the underlying w:tbl element.
func (t Table) Element() *etree.Element { return t.el }

// Rows returns the table rows.
func (t Table) Rows() []Row {
	trs := t.el.SelectElements("w:tr")
	rows := make([]Row, len(trs))
	for i, tr := range trs {
		rows[i] = Row{el: tr}
	}
	return rows
}

// GridWidths returns the column widths declared in w:tblGrid (twips).
func (t Table) GridWidths() []string {
	var widths []string
	for _, col := range t.el.FindElements("./w:tblGrid/w:gridCol") {
		widths = append(widths, col.SelectAttrValue("w:w", "0"))
	}
	return widths
}

// AddRow appends an empty row with one cell per grid column.
func (t Table) AddRow() Row {
	tr := etree.NewElement("w:tr")
	for _, width := range t.GridWidths() {
		tc := tr.CreateElement("w:tc")
		tcW := tc.CreateElement("w:tcPr").CreateElement("w:tcW")
		tcW.CreateAttr("w:w", width)
		tcW.CreateAttr("w:type", "dxa")
		tc.CreateElement("w:p")
	}

	rows := t.el.SelectElements("w:tr")
	if len(rows) == 0 {
		t.el.AddChild(tr)
	} else {
		t.el.InsertChildAt(rows[len(rows)-1].Index()+1, tr)
	}
	return Row{el: tr}
}

// RemoveRow detaches row from the table.
func (t Table) RemoveRow(row Row) {
	t.el.RemoveChild(row.el)
}

// Element returns the underlying w:tr element.
func (r Row) Element() *etree.Element { return r.el }

// Cells returns the row's cells.
func (r Row) Cells() []Cell {
	tcs := r.el.SelectElements("w:tc")
	cells := make([]Cell, len(tcs))
	for i, tc := range tcs {
		cells[i] = Cell{el: tc}
	}
	return cells
}

// Texts returns the text of every cell in the row.
func (r Row) Texts() []string {
	cells := r.Cells()
	texts := make([]string, len(cells))
	for i, c := range cells {
		texts[i] = c.Text()
	}
	return texts
}

// Element returns the underlying w:tc element.
func (c Cell) Element() *etree.Element { return c.el }

// Paragraphs returns the cell's paragraphs.
func (c Cell) Paragraphs() []Paragraph {
	ps := c.el.SelectElements("w:p")
	paragraphs := make([]Paragraph, len(ps))
	for i, p := range ps {
		paragraphs[i] = Paragraph{el: p}
	}
	return paragraphs
}

// Text returns the cell text, one line per paragraph.
func (c Cell) Text() string {
	ps := c.Paragraphs()
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// SetText replaces the cell content with one paragraph holding text.
// The first paragraph's properties survive; other paragraphs are removed.
func (c Cell) SetText(text string) Run {
	ps := c.Paragraphs()
	var first Paragraph
	if len(ps) == 0 {
		first = Paragraph{el: c.el.CreateElement("w:p")}
	} else {
		first = ps[0]
		for _, extra := range ps[1:] {
			c.el.RemoveChild(extra.el)
		}
	}
	return first.SetText(text)
}

// Properties returns the cell's w:tcPr, creating it when missing.
func (c Cell) Properties() *etree.Element {
	return ensureChild(c.el, "w:tcPr", cellOrder)
}
