package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

// fakeHeight is a deterministic layout: a data-h attribute fixes an
// element's height, text costs one pixel per character, and any other
// element stacks its children.
func fakeHeight(n *content.Node) float64 {
	if n.IsText() {
		return float64(utf8.RuneCountInString(n.Text()))
	}
	if v, ok := n.Attr("data-h"); ok {
		h, _ := strconv.ParseFloat(v, 64)
		return h
	}
	var h float64
	for _, c := range n.Children() {
		h += fakeHeight(c)
	}
	return h
}

func fakeOracle() measure.Oracle {
	return measure.OracleFunc(func(n *content.Node, width, padding float64) (float64, error) {
		return fakeHeight(n) + 2*padding, nil
	})
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Padding = 0
	return opts
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := NewEngine(fakeOracle())
	e.SetOptions(opts)
	return e
}

func newTestSplitter(opts Options) (*splitter, *[]Warning) {
	var warnings []Warning
	s := &splitter{
		opts: opts,
		mctx: measure.NewContext(fakeOracle(), opts.Width, opts.Padding),
		warn: func(kind WarningKind, msg string) {
			warnings = append(warnings, Warning{Kind: kind, Message: msg})
		},
	}
	return s, &warnings
}

// el builds an element with a fixed height, or a stacking one when h is 0
func el(tag string, h float64, kids ...*content.Node) *content.Node {
	var attrs []content.Attr
	if h > 0 {
		attrs = append(attrs, content.Attr{Key: "data-h", Val: strconv.FormatFloat(h, 'f', -1, 64)})
	}
	return content.NewElement(tag, attrs, kids...)
}

func txt(s string) *content.Node {
	return content.NewText(s)
}

func items(tag string, n int, h float64, prefix string) []*content.Node {
	out := make([]*content.Node, n)
	for i := range out {
		out[i] = el(tag, h, txt(fmt.Sprintf("%s%d;", prefix, i+1)))
	}
	return out
}

func rows(n int, h float64) []*content.Node {
	out := make([]*content.Node, n)
	for i := range out {
		out[i] = el("tr", h, el("td", 0, txt(fmt.Sprintf("r%d;", i+1))))
	}
	return out
}

func paginate(t *testing.T, opts Options, nodes ...*content.Node) *Result {
	t.Helper()
	res, err := newTestEngine(t, opts).Paginate(nodes)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	return res
}

// pageText concatenates the text of every page in order
func pageText(pages []*Page) string {
	var b strings.Builder
	for _, p := range pages {
		for _, n := range p.Nodes {
			b.WriteString(content.TextContent(n))
		}
	}
	return b.String()
}

func nodesText(nodes []*content.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(content.TextContent(n))
	}
	return b.String()
}

func hasWarning(ws []Warning, kind WarningKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func countTag(n *content.Node, tag string) int {
	count := 0
	content.Walk(n, func(c *content.Node) bool {
		if c.Tag() == tag {
			count++
		}
		return true
	})
	return count
}

// reassembles reports whether pieces, read in order, rebuild wants exactly:
// every wanted node appears whole or divided over consecutive clones with
// its tag and attributes. Header sections repeated on continuation parts of
// a table are skipped.
func reassembles(wants, pieces []*content.Node) bool {
	for _, want := range wants {
		n, ok := matchPieces(want, pieces)
		if !ok {
			return false
		}
		pieces = pieces[n:]
	}
	return len(pieces) == 0
}

// matchPieces returns how many leading pieces rebuild want
func matchPieces(want *content.Node, pieces []*content.Node) (int, bool) {
	var (
		text strings.Builder
		kids []*content.Node
	)
	for i, p := range pieces {
		if !sameShell(want, p) {
			return 0, false
		}
		if want.IsText() {
			text.WriteString(p.Text())
			if text.String() == want.Text() {
				return i + 1, true
			}
			if !strings.HasPrefix(want.Text(), text.String()) {
				return 0, false
			}
			continue
		}

		for _, c := range p.Children() {
			if i > 0 && want.Kind() == content.KindTable && repeatedHeader(c) {
				continue
			}
			kids = append(kids, c)
		}
		if reassembles(want.Children(), kids) {
			return i + 1, true
		}
	}
	return 0, false
}

func sameShell(a, b *content.Node) bool {
	if a.IsText() || b.IsText() {
		return a.IsText() && b.IsText() && a.IsRaw() == b.IsRaw()
	}
	if a.Tag() != b.Tag() {
		return false
	}
	aa, ba := a.Attrs(), b.Attrs()
	if len(aa) != len(ba) {
		return false
	}
	for i := range aa {
		if aa[i] != ba[i] {
			return false
		}
	}
	return true
}

func repeatedHeader(n *content.Node) bool {
	return n.Kind() == content.KindTableHead || n.Tag() == "caption" || n.Tag() == "colgroup"
}

func checkSplitStructure(t *testing.T, original *content.Node, res SplitResult) {
	t.Helper()
	var pieces []*content.Node
	for _, n := range []*content.Node{res.Left, res.Right} {
		if n != nil {
			pieces = append(pieces, n)
		}
	}
	if !reassembles([]*content.Node{original}, pieces) {
		t.Errorf("split parts do not rebuild the original\noriginal: %s\n    left: %v\n   right: %v",
			original.Markup(), markupOf(res.Left), markupOf(res.Right))
	}
}

func checkPageStructure(t *testing.T, original []*content.Node, pages []*Page) {
	t.Helper()
	var pieces []*content.Node
	for _, p := range pages {
		pieces = append(pieces, p.Nodes...)
	}
	if !reassembles(original, pieces) {
		t.Errorf("pages do not rebuild the input\n input: %s\n pages: %s",
			content.MarkupAll(original), content.MarkupAll(pieces))
	}
}

func markupOf(n *content.Node) string {
	if n == nil {
		return "<absent>"
	}
	return n.Markup()
}
