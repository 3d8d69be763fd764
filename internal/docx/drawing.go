package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Anchor places an embedded image at a fixed position on the page.
// Offsets are measured from the page's top-left corner.
type Anchor struct {
	RelID   string
	Name    string
	Width   Length
	Height  Length
	OffsetX Length
	OffsetY Length
	ZOrder  int
}

// AddAnchoredImage appends a paragraph holding a page-anchored picture that
// references an image added with AddMedia. Text wraps above and below it.
func (p *Package) AddAnchoredImage(a Anchor) Paragraph {
	p.ensureNamespace("w", NSWordprocessing)
	p.ensureNamespace("r", NSRelationships)
	p.ensureNamespace("wp", NSDrawingWP)
	p.ensureNamespace("a", NSDrawingMain)
	p.ensureNamespace("pic", NSPicture)

	id := strconv.Itoa(p.nextDrawingID())
	para := p.AddParagraph()
	drawing := para.el.CreateElement("w:r").CreateElement("w:drawing")

	anchor := drawing.CreateElement("wp:anchor")
	for _, attr := range [][2]string{
		{"distT", "0"}, {"distB", "0"}, {"distL", "0"}, {"distR", "0"},
		{"simplePos", "0"},
		{"relativeHeight", strconv.Itoa(a.ZOrder)},
		{"behindDoc", "0"}, {"locked", "0"}, {"layoutInCell", "1"}, {"allowOverlap", "1"},
	} {
		anchor.CreateAttr(attr[0], attr[1])
	}

	simplePos := anchor.CreateElement("wp:simplePos")
	simplePos.CreateAttr("x", "0")
	simplePos.CreateAttr("y", "0")

	positionElement(anchor, "wp:positionH", a.OffsetX)
	positionElement(anchor, "wp:positionV", a.OffsetY)

	extent := anchor.CreateElement("wp:extent")
	extent.CreateAttr("cx", a.Width.String())
	extent.CreateAttr("cy", a.Height.String())

	effect := anchor.CreateElement("wp:effectExtent")
	for _, side := range []string{"l", "t", "r", "b"} {
		effect.CreateAttr(side, "0")
	}

	anchor.CreateElement("wp:wrapTopAndBottom")

	docPr := anchor.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", a.Name)

	anchor.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").
		CreateAttr("noChangeAspect", "1")

	graphicData := anchor.CreateElement("a:graphic").CreateElement("a:graphicData")
	graphicData.CreateAttr("uri", NSPicture)
	pic := graphicData.CreateElement("pic:pic")

	nvPicPr := pic.CreateElement("pic:nvPicPr")
	cNvPr := nvPicPr.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", id)
	cNvPr.CreateAttr("name", a.Name)
	nvPicPr.CreateElement("pic:cNvPicPr")

	blipFill := pic.CreateElement("pic:blipFill")
	blipFill.CreateElement("a:blip").CreateAttr("r:embed", a.RelID)
	blipFill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", a.Width.String())
	ext.CreateAttr("cy", a.Height.String())
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	return para
}

func positionElement(anchor *etree.Element, tag string, offset Length) {
	pos := anchor.CreateElement(tag)
	pos.CreateAttr("relativeFrom", "page")
	pos.CreateElement("wp:posOffset").SetText(offset.String())
}

// nextDrawingID returns one past the highest drawing object id in the main
// document and every other word/*.xml part, since ids are unique package-wide.
func (p *Package) nextDrawingID() int {
	highest := maxDocPrID(p.document.Root(), 0)
	for name, raw := range p.parts {
		if name == PartDocument || !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		doc := etree.NewDocument()
		if doc.ReadFromBytes(raw) != nil || doc.Root() == nil {
			continue
		}
		highest = maxDocPrID(doc.Root(), highest)
	}
	return highest + 1
}

func maxDocPrID(root *etree.Element, highest int) int {
	for _, docPr := range root.FindElements(".//wp:docPr") {
		if n, err := strconv.Atoi(docPr.SelectAttrValue("id", "")); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// Anchors returns the page-anchored drawings in the body.
func (p *Package) Anchors() []Anchor {
	var anchors []Anchor
	for _, el := range p.Body().FindElements(".//wp:anchor") {
		a := Anchor{ZOrder: atoi(el.SelectAttrValue("relativeHeight", ""))}
		if docPr := el.SelectElement("wp:docPr"); docPr != nil {
			a.Name = docPr.SelectAttrValue("name", "")
		}
		if extent := el.SelectElement("wp:extent"); extent != nil {
			a.Width = Length(atoi(extent.SelectAttrValue("cx", "")))
			a.Height = Length(atoi(extent.SelectAttrValue("cy", "")))
		}
		if off := el.FindElement("./wp:positionH/wp:posOffset"); off != nil {
			a.OffsetX = Length(atoi(off.Text()))
		}
		if off := el.FindElement("./wp:positionV/wp:posOffset"); off != nil {
			a.OffsetY = Length(atoi(off.Text()))
		}
		if blip := el.FindElement(".//a:blip"); blip != nil {
			a.RelID = blip.SelectAttrValue("r:embed", "")
		}
		anchors = append(anchors, a)
	}
	return anchors
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
