package docx

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Relationship and namespace URIs used when embedding media.
const (
	RelTypeImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	NSWordprocessing = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSRelationships  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSDrawingWP      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NSDrawingMain    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSPicture        = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// ErrInvalidMedia is returned for empty media or unsafe extensions.
var ErrInvalidMedia = errors.New("invalid media")

// AddMedia stores data as a new word/media part and links it from the main
// document. It returns the relationship id to reference from drawings.
func (p *Package) AddMedia(data []byte, ext, contentType string) (string, error) {
	if err := ValidateMedia(data, ext); err != nil {
		return "", err
	}
	ext = normalizeExt(ext)

	name := p.nextMediaName(ext)
	p.parts[name] = data
	p.order = append(p.order, name)

	p.ensureDefaultContentType(ext, contentType)

	relID := p.nextRelationshipID()
	rel := p.rels.Root().CreateElement("Relationship")
	rel.CreateAttr("Id", relID)
	rel.CreateAttr("Type", RelTypeImage)
	rel.CreateAttr("Target", strings.TrimPrefix(name, "word/"))
	return relID, nil
}

// ValidateMedia reports whether AddMedia would accept data and ext.
func ValidateMedia(data []byte, ext string) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty data", ErrInvalidMedia)
	}
	ext = normalizeExt(ext)
	if ext == "" || strings.ContainsAny(ext, "/\\.\x00") {
		return fmt.Errorf("%w: extension %q", ErrInvalidMedia, ext)
	}
	return nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// nextMediaName returns an unused word/media/imageN.ext part name.
func (p *Package) nextMediaName(ext string) string {
	for n := 1; ; n++ {
		name := path.Join("word", "media", "image"+strconv.Itoa(n)+"."+ext)
		if _, taken := p.parts[name]; !taken {
			return name
		}
	}
}

// nextRelationshipID returns rIdN with N one past the highest numeric id.
func (p *Package) nextRelationshipID() string {
	highest := 0
	for _, rel := range p.rels.Root().SelectElements("Relationship") {
		id := strings.TrimPrefix(rel.SelectAttrValue("Id", ""), "rId")
		if n, err := strconv.Atoi(id); err == nil && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

// ensureDefaultContentType registers ext in [Content_Types].xml.
func (p *Package) ensureDefaultContentType(ext, contentType string) {
	root := p.contentTypes.Root()
	for _, def := range root.SelectElements("Default") {
		if strings.EqualFold(def.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := root.CreateElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
}

// Relationship returns the target of relationship id, if present.
func (p *Package) Relationship(id string) (string, bool) {
	for _, rel := range p.rels.Root().SelectElements("Relationship") {
		if rel.SelectAttrValue("Id", "") == id {
			return rel.SelectAttrValue("Target", ""), true
		}
	}
	return "", false
}

// ensureNamespace declares prefix on the document root when missing.
func (p *Package) ensureNamespace(prefix, uri string) {
	root := p.document.Root()
	if root.SelectAttr("xmlns:"+prefix) == nil {
		root.CreateAttr("xmlns:"+prefix, uri)
	}
}
