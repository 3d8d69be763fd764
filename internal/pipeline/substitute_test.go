package pipeline_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-invoicedocx/internal/docx"
	"github.com/alnah/go-invoicedocx/internal/docx/docxtest"
	"github.com/alnah/go-invoicedocx/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestSubstitute - Placeholder replacement
// ---------------------------------------------------------------------------

func TestSubstitute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		runs      []string
		repl      map[string]string
		want      string
		wantCount int
	}{
		{
			name:      "single run token",
			runs:      []string{"Hello {{name}}!"},
			repl:      map[string]string{"{{name}}": "Alice"},
			want:      "Hello Alice!",
			wantCount: 1,
		},
		{
			name:      "token split across runs",
			runs:      []string{"Hi {{na", "me}}", " bye"},
			repl:      map[string]string{"{{name}}": "Bob"},
			want:      "Hi Bob bye",
			wantCount: 1,
		},
		{
			name:      "repeated token",
			runs:      []string{"{{x}}-{{x}}"},
			repl:      map[string]string{"{{x}}": "1"},
			want:      "1-1",
			wantCount: 2,
		},
		{
			name: "longest key wins over prefix",
			runs: []string{"{{total}} / {{total_due}}"},
			repl: map[string]string{
				"{{total":       "WRONG",
				"{{total}}":     "100",
				"{{total_due}}": "250",
			},
			want:      "100 / 250",
			wantCount: 2,
		},
		{
			name:      "value containing key is not rescanned",
			runs:      []string{"{{a}}"},
			repl:      map[string]string{"{{a}}": "{{a}}{{a}}"},
			want:      "{{a}}{{a}}",
			wantCount: 1,
		},
		{
			name:      "missing token stays literal",
			runs:      []string{"Dear {{unknown}}"},
			repl:      map[string]string{"{{name}}": "Alice"},
			want:      "Dear {{unknown}}",
			wantCount: 0,
		},
		{
			name:      "case sensitive",
			runs:      []string{"{{Name}}"},
			repl:      map[string]string{"{{name}}": "Alice"},
			want:      "{{Name}}",
			wantCount: 0,
		},
		{
			name:      "empty value deletes token",
			runs:      []string{"fee: [latefee]"},
			repl:      map[string]string{"[latefee]": ""},
			want:      "fee: ",
			wantCount: 1,
		},
		{
			name:      "empty key ignored",
			runs:      []string{"abc"},
			repl:      map[string]string{"": "X"},
			want:      "abc",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pkg, err := docx.Open(docxtest.Build(t, docxtest.Paragraph(tt.runs...)))
			if err != nil {
				t.Fatalf("Open() unexpected error: %v", err)
			}

			count := pipeline.Substitute(pkg, tt.repl)
			if count != tt.wantCount {
				t.Errorf("Substitute() count = %d, want %d", count, tt.wantCount)
			}
			if got := roundTrip(t, pkg).Paragraphs()[0].Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstitute_PreservesUntouchedRunFormatting(t *testing.T) {
	t.Parallel()

	body := `<w:p>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t>Bold </w:t></w:r>` +
		`<w:r><w:t>{{name}}</w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve"> italic</w:t></w:r>` +
		`</w:p>`
	pkg, err := docx.Open(docxtest.Build(t, body))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}

	pipeline.Substitute(pkg, map[string]string{"{{name}}": "Alice"})

	runs := pkg.Paragraphs()[0].Runs()
	if len(runs) != 3 {
		t.Fatalf("len(Runs()) = %d, want 3", len(runs))
	}
	if runs[0].Element().FindElement("./w:rPr/w:b") == nil {
		t.Error("bold formatting lost on first run")
	}
	if runs[2].Element().FindElement("./w:rPr/w:i") == nil {
		t.Error("italic formatting lost on last run")
	}
	if got := runs[1].Text(); got != "Alice" {
		t.Errorf("middle run = %q, want %q", got, "Alice")
	}
}

func TestSubstitute_ReachesTablesAndNestedCells(t *testing.T) {
	t.Parallel()

	nested := `<w:tbl><w:tblGrid><w:gridCol w:w="100"/></w:tblGrid><w:tr><w:tc>` +
		docxtest.Table(1, []string{"inner {{token}}"}) + `<w:p/>` +
		`</w:tc></w:tr></w:tbl>`
	pkg, err := docx.Open(docxtest.Build(t, nested+docxtest.Paragraph("body {{token}}")))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}

	if got := pipeline.Substitute(pkg, map[string]string{"{{token}}": "ok"}); got != 2 {
		t.Errorf("Substitute() count = %d, want 2", got)
	}
	texts := allText(pkg)
	for _, want := range []string{"inner ok", "body ok"} {
		if !slices.Contains(texts, want) {
			t.Errorf("paragraph texts %q missing %q", texts, want)
		}
	}
}

func TestSubstitute_EmptyMapLeavesDocumentUnchanged(t *testing.T) {
	t.Parallel()

	pkg := openInvoice(t)
	before, err := pkg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() unexpected error: %v", err)
	}

	if got := pipeline.Substitute(pkg, map[string]string{}); got != 0 {
		t.Errorf("Substitute() count = %d, want 0", got)
	}
	if got := pipeline.Substitute(pkg, nil); got != 0 {
		t.Errorf("Substitute(nil) count = %d, want 0", got)
	}

	after, err := pkg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() unexpected error: %v", err)
	}
	if string(before) != string(after) {
		t.Error("document changed after substituting an empty map")
	}
}

func TestSubstitute_KeepsTabsAndBreaks(t *testing.T) {
	t.Parallel()

	body := `<w:p><w:r><w:t>Name:</w:t><w:tab/><w:t>{{client_name}}</w:t></w:r></w:p>` +
		docxtest.Paragraph("{{client_address}}")
	pkg, err := docx.Open(docxtest.Build(t, body))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}

	pipeline.Substitute(pkg, map[string]string{
		"{{client_name}}":    "Alice",
		"{{client_address}}": "Jl. Sudirman 1\nJakarta",
	})

	paras := roundTrip(t, pkg).Paragraphs()

	name := paras[0].Runs()[0].Element()
	if name.FindElement("./w:tab") == nil {
		t.Error("w:tab lost from substituted run")
	}
	if got := paras[0].Text(); got != "Name:\tAlice" {
		t.Errorf("name paragraph = %q, want %q", got, "Name:\tAlice")
	}

	address := paras[1].Runs()[0].Element()
	if address.FindElement("./w:br") == nil {
		t.Error("newline in value not written as w:br")
	}
	for _, wt := range address.SelectElements("w:t") {
		if strings.ContainsAny(wt.Text(), "\t\n\r") {
			t.Errorf("w:t holds raw control characters: %q", wt.Text())
		}
	}
	if got := paras[1].Text(); got != "Jl. Sudirman 1\nJakarta" {
		t.Errorf("address paragraph = %q, want %q", got, "Jl. Sudirman 1\nJakarta")
	}
}
