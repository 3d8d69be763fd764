package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PrintCSS is the page setup injected into HTML before Chrome prints it.
const PrintCSS = `@page { size: A4; margin: 0; }
body { font-family: "Courier New", monospace; font-size: 10pt; margin: 0.75in; }
table { border-collapse: collapse; width: 100%; }
img { max-width: 100%; }`

// PreparePrintHTML readies pandoc output for printing: relative image paths
// are resolved against mediaDir into file:// URLs, and css is injected as a
// <style> element at the end of <head>. Paths escaping mediaDir are left
// untouched. An empty mediaDir disables rewriting.
func PreparePrintHTML(htmlContent, mediaDir, css string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	if mediaDir != "" {
		absDir, err := filepath.Abs(mediaDir)
		if err != nil {
			return "", err
		}
		walk(doc, func(n *html.Node) {
			if n.DataAtom == atom.Img {
				rewriteSrc(n, absDir)
			}
		})
	}

	if css != "" {
		injectStyle(doc, css)
	}

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// injectStyle appends a <style> element to <head>. html.Parse always
// synthesizes a head, so one is found for any input.
func injectStyle(doc *html.Node, css string) {
	var head *html.Node
	walk(doc, func(n *html.Node) {
		if head == nil && n.DataAtom == atom.Head {
			head = n
		}
	})
	if head == nil {
		return
	}
	style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.AppendChild(style)
}

func rewriteSrc(n *html.Node, dir string) {
	for i, attr := range n.Attr {
		if attr.Key != "src" || !isLocalRelative(attr.Val) {
			continue
		}
		abs := filepath.Join(dir, filepath.FromSlash(attr.Val))
		if !isUnder(abs, dir) {
			continue
		}
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
}

// isLocalRelative reports whether p is a relative filesystem path rather
// than a URL, data URI, anchor or absolute path.
func isLocalRelative(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return false
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(p)
}

func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
