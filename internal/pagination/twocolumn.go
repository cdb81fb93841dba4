package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
	"github.com/gompdf/pagefit/internal/parser/css"
)

// Marker attributes of the two-column protocol
const (
	AttrTwoColumns = "data-two-columns"
	AttrColumn     = "data-column"
	AttrWrapper    = "data-wrapper"

	ColumnLeft  = "left"
	ColumnRight = "right"
)

// ErrNoColumns is returned when a two-column container lacks one of its columns
var ErrNoColumns = errors.New("pagination: two-column container without left and right columns")

// Layout is a detected two-column document: the container and its two
// column elements
type Layout struct {
	Container *content.Node
	Left      *content.Node
	Right     *content.Node
}

// DetectColumns finds the first element marked as a two-column root. It
// returns nil without error when the document is single-column.
func DetectColumns(nodes []*content.Node) (*Layout, error) {
	var container *content.Node
	for _, n := range nodes {
		container = content.Find(n, func(c *content.Node) bool {
			return c.HasAttr(AttrTwoColumns, "true")
		})
		if container != nil {
			break
		}
	}
	if container == nil {
		return nil, nil
	}

	l := &Layout{Container: container}
	for _, c := range container.Children() {
		switch {
		case l.Left == nil && c.HasAttr(AttrColumn, ColumnLeft):
			l.Left = c
		case l.Right == nil && c.HasAttr(AttrColumn, ColumnRight):
			l.Right = c
		}
	}
	if l.Left == nil || l.Right == nil {
		return nil, ErrNoColumns
	}
	return l, nil
}

// SpliceWrappers replaces every wrapper-marked element with its children,
// recursively, so wrapped blocks become top-level nodes of the stream
func SpliceWrappers(nodes []*content.Node) []*content.Node {
	out := make([]*content.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.HasAttr(AttrWrapper, "true") {
			out = append(out, SpliceWrappers(n.Children())...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// ColumnWidths resolves the rendering widths of both columns. Configured
// widths win; otherwise a fixed width is read from the column's inline style
// (width or flex-basis in px) and the other column receives what is left of
// pageWidth after the gap.
func ColumnWidths(l *Layout, pageWidth, gap, leftWidth, rightWidth float64) (float64, float64) {
	if leftWidth <= 0 {
		leftWidth = fixedWidth(l.Left)
	}
	if rightWidth <= 0 {
		rightWidth = fixedWidth(l.Right)
	}
	rest := pageWidth - gap
	switch {
	case leftWidth <= 0 && rightWidth <= 0:
		leftWidth = rest / 2
		rightWidth = rest - leftWidth
	case leftWidth <= 0:
		leftWidth = rest - rightWidth
	case rightWidth <= 0:
		rightWidth = rest - leftWidth
	}
	return leftWidth, rightWidth
}

func fixedWidth(col *content.Node) float64 {
	style, ok := col.Attr("style")
	if !ok {
		return 0
	}
	decls := css.ParseInline(style)
	if v, ok := css.Lookup(decls, "flex"); ok {
		parts := strings.Fields(v)
		if len(parts) == 3 {
			if w := pixels(parts[2]); w > 0 {
				return w
			}
		}
	}
	if v, ok := css.Lookup(decls, "flex-basis"); ok {
		if w := pixels(v); w > 0 {
			return w
		}
	}
	if v, ok := css.Lookup(decls, "width"); ok {
		return pixels(v)
	}
	return 0
}

func pixels(v string) float64 {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, "px") {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

// Column is one stream of a two-column pagination
type Column struct {
	Name  string
	Shell *content.Node
	Nodes []*content.Node
	Width float64
}

// CombinedPage pairs the pages of both columns at one index. A column that
// ran out of content holds a placeholder page.
type CombinedPage struct {
	Left  *Page
	Right *Page
}

// TwoColumnResult is the output of a two-column pagination
type TwoColumnResult struct {
	Pages    []*CombinedPage
	Left     *Result
	Right    *Result
	Report   []Overflow
	Warnings []Warning
	Stats    measure.Stats
}

// HasOverflow reports whether any column page still exceeds the budget
func (r *TwoColumnResult) HasOverflow() bool {
	return len(r.Report) > 0
}

// PlaceholderNode is the content rendered in an empty column slot
func PlaceholderNode() *content.Node {
	return content.NewElement("div",
		[]content.Attr{{Key: "style", Val: "min-height: 20px;"}},
		content.NewRawText("&nbsp;"))
}

// PaginateTwoColumn paginates both columns independently and pairs their
// pages by index. Each column gets its own measurement context, so the
// columns run concurrently.
func (e *Engine) PaginateTwoColumn(left, right Column) (*TwoColumnResult, error) {
	if e.oracle == nil {
		return nil, ErrNoOracle
	}
	if err := e.options.Validate(); err != nil {
		return nil, err
	}

	cols := [2]Column{left, right}
	var (
		results [2]*Result
		errs    [2]error
		wg      sync.WaitGroup
	)
	for i := range cols {
		col := cols[i]
		opts := e.options
		if col.Width > 0 {
			opts.Width = col.Width
		}
		mctx := measure.NewContext(e.oracle, opts.Width, opts.Padding).WithShell(col.Shell)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = newPacker(opts, mctx, col.Name).run(SpliceWrappers(col.Nodes))
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("paginating %s column: %w", cols[i].Name, err)
		}
	}

	return combine(results[0], results[1]), nil
}

func combine(left, right *Result) *TwoColumnResult {
	n := len(left.Pages)
	if len(right.Pages) > n {
		n = len(right.Pages)
	}
	out := &TwoColumnResult{
		Pages: make([]*CombinedPage, n),
		Left:  left,
		Right: right,
	}
	for i := 0; i < n; i++ {
		out.Pages[i] = &CombinedPage{
			Left:  pageOrPlaceholder(left.Pages, i),
			Right: pageOrPlaceholder(right.Pages, i),
		}
	}
	out.Report = append(append(out.Report, left.Report...), right.Report...)
	out.Warnings = append(append(out.Warnings, left.Warnings...), right.Warnings...)
	out.Stats = measure.Stats{
		Hits:        left.Stats.Hits + right.Stats.Hits,
		Misses:      left.Stats.Misses + right.Stats.Misses,
		OracleCalls: left.Stats.OracleCalls + right.Stats.OracleCalls,
	}
	return out
}

func pageOrPlaceholder(pages []*Page, i int) *Page {
	if i < len(pages) {
		return pages[i]
	}
	return &Page{Placeholder: true}
}

// Node assembles the combined page inside a clone of the layout container,
// each column in its own column shell and in document order
func (cp *CombinedPage) Node(l *Layout) *content.Node {
	var kids []*content.Node
	for _, c := range l.Container.Children() {
		switch c {
		case l.Left:
			kids = append(kids, columnNode(c, cp.Left))
		case l.Right:
			kids = append(kids, columnNode(c, cp.Right))
		}
	}
	return l.Container.WithChildren(kids...)
}

func columnNode(shell *content.Node, p *Page) *content.Node {
	if p.Placeholder || len(p.Nodes) == 0 {
		return shell.WithChildren(PlaceholderNode())
	}
	return shell.WithChildren(p.Nodes...)
}
