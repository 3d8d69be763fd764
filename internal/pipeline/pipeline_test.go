package pipeline_test

import (
	"testing"

	"github.com/alnah/go-invoicedocx/internal/docx"
	"github.com/alnah/go-invoicedocx/internal/docx/docxtest"
)

// invoiceBody mirrors the shape of the production template: a title
// paragraph, the items table (header, style row, two samples) and the
// financial summary with the late-fee line on row 3.
func invoiceBody() string {
	return docxtest.Paragraph("Invoice ", "{{invoice_number}}") +
		docxtest.Paragraph("Bill to: {{client_name}}") +
		docxtest.Table(4,
			[]string{"Description", "Unit Price", "Qty", "Total"},
			[]string{"style", "style", "style", "style"},
			[]string{"Sample A", "Rp 1", "1", "Rp 1"},
			[]string{"Sample B", "Rp 2", "2", "Rp 4"},
		) +
		docxtest.Table(2,
			[]string{"SUBTOTAL", "{{subtotal}}"},
			[]string{"TAX", "{{tax}}"},
			[]string{"TOTAL", "{{total}}"},
			[]string{"{{LATE FEE:}}", "[latefee]"},
		)
}

func openInvoice(t *testing.T) *docx.Package {
	t.Helper()
	pkg, err := docx.Open(docxtest.Build(t, invoiceBody()))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	return pkg
}

func roundTrip(t *testing.T, pkg *docx.Package) *docx.Package {
	t.Helper()
	out, err := pkg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() unexpected error: %v", err)
	}
	reopened, err := docx.Open(out)
	if err != nil {
		t.Fatalf("Open() after Bytes() unexpected error: %v", err)
	}
	return reopened
}

func allText(pkg *docx.Package) []string {
	var texts []string
	for _, p := range pkg.AllParagraphs() {
		texts = append(texts, p.Text())
	}
	return texts
}

func mustTable(t *testing.T, pkg *docx.Package, i int) docx.Table {
	t.Helper()
	tbl, err := pkg.Table(i)
	if err != nil {
		t.Fatalf("Table(%d) unexpected error: %v", i, err)
	}
	return tbl
}
