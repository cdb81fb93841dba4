package html

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/pagefit/internal/content"
)

// ToHTML converts a content node back to an html.Node tree
func ToHTML(n *content.Node) *html.Node {
	if n.IsText() {
		if n.IsRaw() {
			return &html.Node{Type: html.RawNode, Data: n.Text()}
		}
		return &html.Node{Type: html.TextNode, Data: n.Text()}
	}

	node := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag(),
		DataAtom: atom.Lookup([]byte(n.Tag())),
	}
	for _, a := range n.Attrs() {
		node.Attr = append(node.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children() {
		node.AppendChild(ToHTML(c))
	}
	return node
}

// Render renders a content node as HTML
func Render(w io.Writer, n *content.Node) error {
	return html.Render(w, ToHTML(n))
}

// RenderDocument writes a standalone HTML document holding the given pages,
// with styles copied into its head
func RenderDocument(w io.Writer, title string, styles []string, pages []*content.Node) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	if title != "" {
		t := element(atom.Title)
		t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		head.AppendChild(t)
	}
	for _, s := range styles {
		st := element(atom.Style)
		st.AppendChild(&html.Node{Type: html.RawNode, Data: s})
		head.AppendChild(st)
	}

	body := element(atom.Body)
	for _, p := range pages {
		body.AppendChild(ToHTML(p))
	}

	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)
	return html.Render(w, doc)
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}
