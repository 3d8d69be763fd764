package assets

import (
	"archive/zip"
	"bytes"
	"embed"
	"fmt"
	"sync"
)

//go:embed templates
var templates embed.FS

// embeddedPart maps a file under templates/{name}/ to its package part name.
// Part names like _rels/.rels cannot be embedded directly.
type embeddedPart struct {
	file string
	part string
}

var embeddedParts = []embeddedPart{
	{file: "content_types.xml", part: "[Content_Types].xml"},
	{file: "rels.xml", part: "_rels/.rels"},
	{file: "document.xml", part: "word/document.xml"},
	{file: "document_rels.xml", part: "word/_rels/document.xml.rels"},
	{file: "styles.xml", part: "word/styles.xml"},
}

// EmbeddedLoader serves templates built from embedded XML parts.
// Each template is assembled once and cached. Safe for concurrent use.
// Implements TemplateLoader interface.
type EmbeddedLoader struct {
	mu    sync.Mutex
	cache map[string][]byte
}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{cache: make(map[string][]byte)}
}

// LoadTemplate returns the DOCX bytes of an embedded template.
func (e *EmbeddedLoader) LoadTemplate(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if data, ok := e.cache[name]; ok {
		return data, nil
	}
	data, err := assemble(name)
	if err != nil {
		return nil, err
	}
	e.cache[name] = data
	return data, nil
}

// assemble zips templates/{name}/ into a DOCX package.
func assemble(name string) ([]byte, error) {
	if _, err := templates.ReadDir("templates/" + name); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range embeddedParts {
		content, err := templates.ReadFile("templates/" + name + "/" + p.file)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAssetRead, p.file, err)
		}
		w, err := zw.Create(p.part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ TemplateLoader = (*EmbeddedLoader)(nil)
