// Package invoicedocx renders invoices from a DOCX template.
//
// # Quick Start
//
// Create a renderer, render an invoice, and close when done:
//
//	r, err := invoicedocx.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	result, err := r.Render(ctx, invoicedocx.Input{
//	    InvoiceDetails: map[string]string{"{{invoice_number}}": "INV-001"},
//	    Items: []invoicedocx.LineItem{
//	        {Description: "Design work", UnitPrice: 500000, Quantity: 2, Total: 1000000},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.Data, 0644)
//
// # Render Pipeline
//
// Every render runs the same fixed sequence on a private copy of the
// template:
//
//  1. Placeholder substitution in every paragraph, including table cells
//  2. Items table rebuild: one styled row per line item
//  3. Financial summary styling and optional late-fee highlight
//  4. Paid stamp and signature overlays, when the invoice is marked as paid
//  5. Uniform font pass over body paragraphs
//  6. Serialization, then optional PDF conversion
//
// Overlay images are fetched before the document is touched, so a failed
// fetch never leaves a half-stamped invoice.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := invoicedocx.NewRenderer(
//	    invoicedocx.WithTimeout(2 * time.Minute),
//	    invoicedocx.WithTemplateDir("/etc/invoicedocx/templates"),
//	    invoicedocx.WithBackend(invoicedocx.BackendChrome),
//	    invoicedocx.WithStrictLateFee(true),
//	)
//
// # Errors
//
// Failures wrap package sentinels. KindOf maps any error to a Kind
// (invalid request, asset fetch, template, conversion, timeout, internal)
// for transport-level status codes.
//
// # PDF Conversion
//
// BackendSoffice (default) runs LibreOffice headless and keeps the exact
// layout. BackendChrome converts through pandoc and headless Chrome.
// Conversions run on a ConverterPool sized by ResolvePoolSize.
package invoicedocx
