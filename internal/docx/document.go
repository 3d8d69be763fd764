package docx

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// ErrTableNotFound is returned when a table index is out of range.
var ErrTableNotFound = errors.New("table not found")

// Paragraphs returns the body-level paragraphs (not those inside tables).
func (p *Package) Paragraphs() []Paragraph {
	return wrapParagraphs(p.Body().SelectElements("w:p"))
}

// AllParagraphs returns every paragraph in the body, including those in
// table cells and nested tables, in document order.
func (p *Package) AllParagraphs() []Paragraph {
	return wrapParagraphs(p.Body().FindElements(".//w:p"))
}

func wrapParagraphs(els []*etree.Element) []Paragraph {
	paragraphs := make([]Paragraph, len(els))
	for i, el := range els {
		paragraphs[i] = Paragraph{el: el}
	}
	return paragraphs
}

// Tables returns the body-level tables in document order.
func (p *Package) Tables() []Table {
	els := p.Body().SelectElements("w:tbl")
	tables := make([]Table, len(els))
	for i, el := range els {
		tables[i] = Table{el: el}
	}
	return tables
}

// Table returns the body-level table at index i.
func (p *Package) Table(i int) (Table, error) {
	tables := p.Tables()
	if i < 0 || i >= len(tables) {
		return Table{}, fmt.Errorf("%w: index %d (document has %d)", ErrTableNotFound, i, len(tables))
	}
	return tables[i], nil
}

// AddParagraph appends an empty paragraph to the body, ahead of the final
// section properties so page setup stays last.
func (p *Package) AddParagraph() Paragraph {
	body := p.Body()
	para := etree.NewElement("w:p")
	if sectPr := body.SelectElement("w:sectPr"); sectPr != nil {
		body.InsertChildAt(sectPr.Index(), para)
	} else {
		body.AddChild(para)
	}
	return Paragraph{el: para}
}
