package pipeline

import "github.com/alnah/go-invoicedocx/internal/docx"

// NormalizeFont sets font on every run of every body-level paragraph.
// Table cells keep the fonts applied by the table stages. It must run after
// all text-mutating stages since those can introduce unstyled runs.
func NormalizeFont(pkg *docx.Package, font string) {
	if font == "" {
		font = DefaultFont
	}
	for _, p := range pkg.Paragraphs() {
		for _, r := range p.Runs() {
			docx.SetRunFont(r, font)
		}
	}
}
