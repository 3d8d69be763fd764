package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// Part names edited by this package.
const (
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartContentTypes = "[Content_Types].xml"
)

// MaxPartSize caps the uncompressed size of a single part (zip bomb guard).
var MaxPartSize int64 = 64 << 20

// Sentinel errors for package operations.
var (
	ErrInvalidPackage = errors.New("invalid docx package")
	ErrPartNotFound   = errors.New("docx part not found")
	ErrNoBody         = errors.New("document has no body")
	ErrPartTooLarge   = errors.New("docx part exceeds maximum size")
)

// Package is an opened DOCX container.
// It is not safe for concurrent use; open one Package per render.
type Package struct {
	order []string
	parts map[string][]byte

	document     *etree.Document
	rels         *etree.Document
	contentTypes *etree.Document
}

// Open parses a DOCX package from bytes. The input slice is never modified,
// so callers may share one template buffer across concurrent renders.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	p := &Package{
		order: make([]string, 0, len(zr.File)),
		parts: make(map[string][]byte, len(zr.File)),
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		content, err := readPart(f)
		if err != nil {
			return nil, err
		}
		if _, dup := p.parts[f.Name]; !dup {
			p.order = append(p.order, f.Name)
		}
		p.parts[f.Name] = content
	}

	if p.document, err = p.parseRequired(PartDocument); err != nil {
		return nil, err
	}
	if p.contentTypes, err = p.parseRequired(PartContentTypes); err != nil {
		return nil, err
	}
	if p.rels, err = p.parseOptional(PartDocumentRels, emptyRelationships); err != nil {
		return nil, err
	}

	if p.document.FindElement("./w:document/w:body") == nil {
		return nil, ErrNoBody
	}
	return p, nil
}

func readPart(f *zip.File) ([]byte, error) {
	if int64(f.UncompressedSize64) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidPackage, f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidPackage, f.Name, err)
	}
	if int64(len(content)) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, f.Name)
	}
	return content, nil
}

func (p *Package) parseRequired(name string) (*etree.Document, error) {
	raw, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	return parseXML(name, raw)
}

func (p *Package) parseOptional(name, fallback string) (*etree.Document, error) {
	raw, ok := p.parts[name]
	if !ok {
		p.order = append(p.order, name)
		raw = []byte(fallback)
	}
	return parseXML(name, raw)
}

func parseXML(name string, raw []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidPackage, name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s has no root element", ErrInvalidPackage, name)
	}
	return doc, nil
}

// Body returns the w:body element of the main document part.
func (p *Package) Body() *etree.Element {
	return p.document.FindElement("./w:document/w:body")
}

// Part returns the raw bytes of a part that is not edited through a tree.
func (p *Package) Part(name string) ([]byte, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// HasPart reports whether the package contains the named part.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Bytes serializes the package, re-encoding the edited XML trees.
func (p *Package) Bytes() ([]byte, error) {
	trees := map[string]*etree.Document{
		PartDocument:     p.document,
		PartDocumentRels: p.rels,
		PartContentTypes: p.contentTypes,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range p.order {
		content := p.parts[name]
		if tree, ok := trees[name]; ok {
			encoded, err := tree.WriteToBytes()
			if err != nil {
				return nil, fmt.Errorf("encoding %s: %w", name, err)
			}
			content = encoded
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return buf.Bytes(), nil
}

const emptyRelationships = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
