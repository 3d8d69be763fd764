package docx_test

import (
	"slices"
	"testing"

	"github.com/alnah/go-invoicedocx/internal/docx"
	"github.com/alnah/go-invoicedocx/internal/docx/docxtest"
)

// ---------------------------------------------------------------------------
// TestParagraph - Run access and text editing
// ---------------------------------------------------------------------------

func TestParagraph_Text(t *testing.T) {
	t.Parallel()

	pkg := mustOpen(t, docxtest.Build(t, docxtest.Paragraph("{{client", "_name", "}}")))
	p := pkg.Paragraphs()[0]

	if got := len(p.Runs()); got != 3 {
		t.Fatalf("len(Runs()) = %d, want 3", got)
	}
	if got := p.Text(); got != "{{client_name}}" {
		t.Errorf("Text() = %q, want %q", got, "{{client_name}}")
	}
}

func TestParagraph_SetTextKeepsProperties(t *testing.T) {
	t.Parallel()

	body := `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>a</w:t></w:r><w:r><w:t>b</w:t></w:r></w:p>`
	pkg := mustOpen(t, docxtest.Build(t, body))
	p := pkg.Paragraphs()[0]

	p.SetText("replaced")

	if got := len(p.Runs()); got != 1 {
		t.Errorf("len(Runs()) = %d, want 1", got)
	}
	if got := p.Text(); got != "replaced" {
		t.Errorf("Text() = %q, want %q", got, "replaced")
	}
	if got := p.Alignment(); got != docx.AlignCenter {
		t.Errorf("Alignment() = %q, want %q", got, docx.AlignCenter)
	}
}

func TestParagraph_SetAlignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no properties", body: `<w:p><w:r><w:t>x</w:t></w:r></w:p>`},
		{name: "existing properties", body: `<w:p><w:pPr><w:spacing w:after="0"/><w:rPr/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`},
		{name: "existing alignment", body: `<w:p><w:pPr><w:jc w:val="left"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pkg := mustOpen(t, docxtest.Build(t, tt.body))
			p := pkg.Paragraphs()[0]
			p.SetAlignment(docx.AlignRight)

			if got := p.Alignment(); got != docx.AlignRight {
				t.Errorf("Alignment() = %q, want %q", got, docx.AlignRight)
			}
			children := p.Element().ChildElements()
			if got := children[0].FullTag(); got != "w:pPr" {
				t.Errorf("first child = %s, want w:pPr", got)
			}
			assertOrder(t, children[0], "w:spacing", "w:jc", "w:rPr")
			if got := len(children[0].SelectElements("w:jc")); got != 1 {
				t.Errorf("w:jc count = %d, want 1", got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRun - Text semantics
// ---------------------------------------------------------------------------

func TestRun_Text(t *testing.T) {
	t.Parallel()

	body := `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>`
	pkg := mustOpen(t, docxtest.Build(t, body))

	if got := pkg.Paragraphs()[0].Runs()[0].Text(); got != "a\tb\nc" {
		t.Errorf("Text() = %q, want %q", got, "a\tb\nc")
	}
}

func TestRun_SetTextPreservesSpaces(t *testing.T) {
	t.Parallel()

	pkg := mustOpen(t, docxtest.Build(t, docxtest.Paragraph("x")))
	r := pkg.Paragraphs()[0].Runs()[0]
	r.SetText("  padded ")

	reopened := roundTrip(t, pkg)
	if got := reopened.Paragraphs()[0].Text(); got != "  padded " {
		t.Errorf("Text() after round trip = %q, want %q", got, "  padded ")
	}
}

func TestRun_SetTextControlCharacters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantTags []string
		wantText string
	}{
		{name: "tab", text: "Name:\tAlice", wantTags: []string{"w:t", "w:tab", "w:t"}, wantText: "Name:\tAlice"},
		{name: "newline", text: "Jl. Sudirman 1\nJakarta", wantTags: []string{"w:t", "w:br", "w:t"}, wantText: "Jl. Sudirman 1\nJakarta"},
		{name: "crlf is one break", text: "a\r\nb", wantTags: []string{"w:t", "w:br", "w:t"}, wantText: "a\nb"},
		{name: "lone cr", text: "a\rb", wantTags: []string{"w:t", "w:br", "w:t"}, wantText: "a\nb"},
		{name: "leading and trailing breaks", text: "\tx\n", wantTags: []string{"w:tab", "w:t", "w:br"}, wantText: "\tx\n"},
		{name: "consecutive tabs", text: "\t\t", wantTags: []string{"w:tab", "w:tab"}, wantText: "\t\t"},
		{name: "empty", text: "", wantTags: []string{"w:t"}, wantText: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pkg := mustOpen(t, docxtest.Build(t, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>x</w:t></w:r></w:p>`))
			pkg.Paragraphs()[0].Runs()[0].SetText(tt.text)

			r := roundTrip(t, pkg).Paragraphs()[0].Runs()[0]
			var tags []string
			for _, child := range r.Element().ChildElements() {
				if child.FullTag() != "w:rPr" {
					tags = append(tags, child.FullTag())
				}
			}
			if !slices.Equal(tags, tt.wantTags) {
				t.Errorf("children = %v, want %v", tags, tt.wantTags)
			}
			if got := r.Text(); got != tt.wantText {
				t.Errorf("Text() = %q, want %q", got, tt.wantText)
			}
			if r.Element().FindElement("./w:rPr/w:b") == nil {
				t.Error("run properties lost")
			}
		})
	}
}

func TestRun_SetTextPreserveAttr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{text: "plain", want: false},
		{text: "one space", want: false},
		{text: "A  B", want: true},
		{text: " lead", want: true},
		{text: "trail ", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			pkg := mustOpen(t, docxtest.Build(t, docxtest.Paragraph("x")))
			r := pkg.Paragraphs()[0].Runs()[0]
			r.SetText(tt.text)

			wt := r.Element().FindElement("./w:t")
			got := wt.SelectAttrValue("xml:space", "") == "preserve"
			if got != tt.want {
				t.Errorf("xml:space=preserve set = %v, want %v", got, tt.want)
			}
			if text := roundTrip(t, pkg).Paragraphs()[0].Text(); text != tt.text {
				t.Errorf("Text() after round trip = %q, want %q", text, tt.text)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTable - Row editing
// ---------------------------------------------------------------------------

func TestTable_AddRemoveRow(t *testing.T) {
	t.Parallel()

	body := docxtest.Table(3, []string{"h1", "h2", "h3"}, []string{"r1", "r2", "r3"}) + docxtest.Paragraph("after")
	pkg := mustOpen(t, docxtest.Build(t, body))
	tbl := pkg.Tables()[0]

	row := tbl.AddRow()
	cells := row.Cells()
	if len(cells) != 3 {
		t.Fatalf("new row has %d cells, want 3", len(cells))
	}
	cells[0].SetText("new")

	rows := tbl.Rows()
	if len(rows) != 3 {
		t.Fatalf("len(Rows()) = %d, want 3", len(rows))
	}
	if got := rows[2].Texts(); got[0] != "new" || got[1] != "" {
		t.Errorf("last row texts = %q, want [new  ]", got)
	}

	tbl.RemoveRow(rows[1])
	rows = tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(Rows()) after remove = %d, want 2", len(rows))
	}
	if got := rows[1].Texts()[0]; got != "new" {
		t.Errorf("row 1 text = %q, want %q", got, "new")
	}

	reopened := roundTrip(t, pkg)
	if got := reopened.Tables()[0].Rows()[1].Cells()[0].Text(); got != "new" {
		t.Errorf("round-trip cell text = %q, want %q", got, "new")
	}
}

func TestCell_SetTextCollapsesParagraphs(t *testing.T) {
	t.Parallel()

	body := `<w:tbl><w:tblGrid><w:gridCol w:w="100"/></w:tblGrid><w:tr><w:tc>` +
		`<w:tcPr/><w:p><w:r><w:t>one</w:t></w:r></w:p><w:p><w:r><w:t>two</w:t></w:r></w:p>` +
		`</w:tc></w:tr></w:tbl>`
	pkg := mustOpen(t, docxtest.Build(t, body))
	cell := pkg.Tables()[0].Rows()[0].Cells()[0]

	if got := cell.Text(); got != "one\ntwo" {
		t.Errorf("Text() = %q, want %q", got, "one\ntwo")
	}
	cell.SetText("only")
	if got := len(cell.Paragraphs()); got != 1 {
		t.Errorf("len(Paragraphs()) = %d, want 1", got)
	}
	if got := cell.Text(); got != "only" {
		t.Errorf("Text() = %q, want %q", got, "only")
	}
}
