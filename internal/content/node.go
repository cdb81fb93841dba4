package content

import (
	"strings"

	"golang.org/x/net/html"
)

// Kind classifies a content node for splitting purposes
type Kind int

const (
	KindText Kind = iota
	KindParagraph
	KindHeading
	KindContainer
	KindPreformatted
	KindUnorderedList
	KindOrderedList
	KindListItem
	KindTable
	KindTableHead
	KindTableBody
	KindTableFoot
	KindTableRow
	KindTableCell
	KindDefinitionList
	KindDefinitionTerm
	KindDefinitionDescription
	KindInline
	KindOpaque
)

// Kinds lists every kind, in declaration order
var Kinds = []Kind{
	KindText, KindParagraph, KindHeading, KindContainer, KindPreformatted,
	KindUnorderedList, KindOrderedList, KindListItem,
	KindTable, KindTableHead, KindTableBody, KindTableFoot, KindTableRow, KindTableCell,
	KindDefinitionList, KindDefinitionTerm, KindDefinitionDescription,
	KindInline, KindOpaque,
}

var kindNames = map[Kind]string{
	KindText:                  "text",
	KindParagraph:             "paragraph",
	KindHeading:               "heading",
	KindContainer:             "container",
	KindPreformatted:          "preformatted",
	KindUnorderedList:         "unordered-list",
	KindOrderedList:           "ordered-list",
	KindListItem:              "list-item",
	KindTable:                 "table",
	KindTableHead:             "table-head",
	KindTableBody:             "table-body",
	KindTableFoot:             "table-foot",
	KindTableRow:              "table-row",
	KindTableCell:             "table-cell",
	KindDefinitionList:        "definition-list",
	KindDefinitionTerm:        "definition-term",
	KindDefinitionDescription: "definition-description",
	KindInline:                "inline",
	KindOpaque:                "opaque",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Attr is a single element attribute
type Attr struct {
	Key string
	Val string
}

// Node is one immutable element of a content tree. A node is either a text
// run or an element with an ordered list of children. Nodes are never mutated
// after construction, so subtrees may be shared between trees.
type Node struct {
	kind     Kind
	tag      string
	text     string
	attrs    []Attr
	children []*Node
}

// NewText creates a text node
func NewText(text string) *Node {
	return &Node{kind: KindText, text: text}
}

// NewElement creates an element node whose kind is derived from its tag
func NewElement(tag string, attrs []Attr, children ...*Node) *Node {
	tag = strings.ToLower(tag)
	return newElement(KindForTag(tag), tag, attrs, children)
}

func newElement(kind Kind, tag string, attrs []Attr, children []*Node) *Node {
	n := &Node{kind: kind, tag: tag}
	if len(attrs) > 0 {
		n.attrs = append([]Attr(nil), attrs...)
	}
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

// Kind returns the node's kind
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element name; empty for text nodes
func (n *Node) Tag() string {
	if n.kind == KindText {
		return ""
	}
	return n.tag
}

// Text returns the text of a text node
func (n *Node) Text() string { return n.text }

// IsText reports whether n is a text node
func (n *Node) IsText() bool { return n.kind == KindText }

// Attrs returns a copy of the element's attributes
func (n *Node) Attrs() []Attr { return append([]Attr(nil), n.attrs...) }

// Attr returns the value of the named attribute
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute key is set to val
func (n *Node) HasAttr(key, val string) bool {
	v, ok := n.Attr(key)
	return ok && v == val
}

// Len returns the number of children
func (n *Node) Len() int { return len(n.children) }

// Child returns the i-th child
func (n *Node) Child(i int) *Node { return n.children[i] }

// Children returns a copy of the child list
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// WithChildren returns a same-kind shallow clone of n holding children
func (n *Node) WithChildren(children ...*Node) *Node {
	return newElement(n.kind, n.tag, n.attrs, children)
}

// Append returns a copy of n with children appended after the existing ones
func (n *Node) Append(children ...*Node) *Node {
	all := make([]*Node, 0, len(n.children)+len(children))
	all = append(all, n.children...)
	all = append(all, children...)
	return n.WithChildren(all...)
}

// Empty reports whether n carries no content: an empty text run or an
// element without children. Opaque elements are never empty.
func (n *Node) Empty() bool {
	switch n.kind {
	case KindText:
		return n.text == ""
	case KindOpaque:
		return false
	}
	return len(n.children) == 0
}

// TextContent concatenates all text below n
func TextContent(n *Node) string {
	var b strings.Builder
	Walk(n, func(c *Node) bool {
		if c.IsText() {
			b.WriteString(c.text)
		}
		return true
	})
	return b.String()
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// Find returns the first node in document order matching pred
func Find(n *Node, pred func(*Node) bool) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if found != nil {
			return false
		}
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// Markup serializes n as HTML. The output is deterministic and doubles as the
// structural signature used for measurement caching.
func (n *Node) Markup() string {
	var b strings.Builder
	n.writeMarkup(&b)
	return b.String()
}

// MarkupAll serializes a node sequence
func MarkupAll(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		n.writeMarkup(&b)
	}
	return b.String()
}

func (n *Node) writeMarkup(b *strings.Builder) {
	if n.kind == KindText {
		if n.rawText() {
			b.WriteString(n.text)
		} else {
			b.WriteString(html.EscapeString(n.text))
		}
		return
	}
	b.WriteByte('<')
	b.WriteString(n.tag)
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[n.tag] {
		return
	}
	for _, c := range n.children {
		c.writeMarkup(b)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}

// rawText marks text nodes created from already escaped entities such as
// the column placeholder's &nbsp;
func (n *Node) rawText() bool { return n.tag == rawTextTag }

// IsRaw reports whether n is a text node holding markup that is written
// without escaping
func (n *Node) IsRaw() bool { return n.kind == KindText && n.rawText() }

const rawTextTag = "#raw"

// NewRawText creates a text node whose content is emitted without escaping
func NewRawText(markup string) *Node {
	return &Node{kind: KindText, tag: rawTextTag, text: markup}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
