package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/pagefit/internal/content"
)

// Parser converts HTML into content trees
type Parser struct {
	// KeepWhitespace keeps white-space-only text between block elements
	KeepWhitespace bool
}

// Document represents a parsed HTML document
type Document struct {
	// Root is the body element
	Root *content.Node
	// Styles holds the text of every <style> element in document order
	Styles []string
	// Links holds the href of every <link rel="stylesheet"> in document order
	Links []string
	Title string
}

// Nodes returns the top-level content nodes of the body
func (d *Document) Nodes() []*content.Node {
	if d.Root == nil {
		return nil
	}
	return d.Root.Children()
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(src string) (*Document, error) {
	return p.Parse(strings.NewReader(src))
}

// Parse parses HTML from an io.Reader. Fragments are accepted; the parser
// supplies the missing html, head and body elements.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Style:
				doc.Styles = append(doc.Styles, textOf(n))
			case atom.Link:
				if href := attr(n, "href"); href != "" && strings.Contains(strings.ToLower(attr(n, "rel")), "stylesheet") {
					doc.Links = append(doc.Links, href)
				}
			case atom.Title:
				if doc.Title == "" {
					doc.Title = strings.TrimSpace(textOf(n))
				}
			case atom.Body:
				if body == nil {
					body = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	if body == nil {
		doc.Root = content.NewElement("body", nil)
		return doc, nil
	}
	doc.Root = p.convertNode(body, false)
	return doc, nil
}

// ParseFragment parses markup as the content of a body element and returns
// its top-level nodes
func (p *Parser) ParseFragment(src string) ([]*content.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, err
	}
	parent := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return p.convertNode(parent, false).Children(), nil
}

// skipped elements never carry page content
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Head:     true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Title:    true,
}

// convertNode converts an html.Node element to a content node
func (p *Parser) convertNode(n *html.Node, pre bool) *content.Node {
	pre = pre || n.DataAtom == atom.Pre || n.DataAtom == atom.Textarea

	var children []*content.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if !pre && !p.KeepWhitespace && isWhitespace(c.Data) && !betweenInline(c) {
				continue
			}
			children = append(children, content.NewText(c.Data))
		case html.ElementNode:
			if skipped[c.DataAtom] {
				continue
			}
			children = append(children, p.convertNode(c, pre))
		}
	}

	attrs := make([]content.Attr, 0, len(n.Attr))
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		attrs = append(attrs, content.Attr{Key: a.Key, Val: a.Val})
	}
	return content.NewElement(n.Data, attrs, children...)
}

// betweenInline reports whether a text node separates two inline siblings,
// where its white space is significant
func betweenInline(n *html.Node) bool {
	return inlineSibling(n.PrevSibling) && inlineSibling(n.NextSibling)
}

func inlineSibling(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.TextNode:
		return !isWhitespace(n.Data)
	case html.ElementNode:
		k := content.KindForTag(n.Data)
		return k.IsInlineLevel() || (k == content.KindOpaque && n.DataAtom != atom.Hr)
	}
	return false
}

// isWhitespace reports whether s holds only HTML white space
func isWhitespace(s string) bool {
	return strings.Trim(s, " \t\n\r\f") == ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
