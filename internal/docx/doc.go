// Package docx reads, edits, and writes WordprocessingML packages.
//
// A DOCX file is a zip container of XML parts. This package keeps every part
// as raw bytes and parses only the parts it edits into mutable etree trees:
//
//	word/document.xml              body content (paragraphs, tables, drawings)
//	word/_rels/document.xml.rels   relationships from the body to media
//	[Content_Types].xml            content type registry
//
// Edits happen in place on the trees; Bytes re-serializes the edited parts
// and copies all other parts through untouched, preserving part order.
//
// # Element Accessors
//
// Paragraph, Run, Table, Row and Cell are thin value wrappers around
// *etree.Element. They never cache derived state, so a wrapper stays valid
// as long as its element remains attached to the tree.
//
// # Property Ordering
//
// The WordprocessingML schema fixes the order of children inside property
// elements (w:pPr, w:rPr, w:tcPr, w:tcBorders). Word rejects files that
// violate it, so every setter inserts new children at their schema position.
package docx
