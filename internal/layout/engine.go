package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/style"
)

// engine lays out content trees with a fixed set of stylesheets. It holds no
// per-call state and may be used from several goroutines.
type engine struct {
	styles *style.StyleEngine
}

// resolve computes the effective style of an element from its parent's
// effective style. Font sizes and length line heights are stored in px so
// children inherit computed values.
func (e *engine) resolve(n *content.Node, parent style.ComputedStyle, ancestors []*content.Node) style.ComputedStyle {
	own := e.styles.ComputeStyle(n, ancestors)
	eff := style.Inherit(parent, own)

	parentSize := fontSizeOf(parent)
	size := parentSize
	if v := own.Get("font-size"); v != "" && v != "inherit" {
		size = parseFontSize(v, parentSize)
	}
	eff.Set("font-size", px(size))

	if v := own.Get("line-height"); v != "" && v != "normal" && v != "inherit" {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			eff.Set("line-height", px(parseLength(v, size, size, 1.2*size)))
		}
	}
	return eff
}

func displayOf(n *content.Node, st style.ComputedStyle) string {
	if d := strings.ToLower(st.Get("display")); d != "" {
		return d
	}
	switch n.Kind() {
	case content.KindListItem:
		return "list-item"
	case content.KindTable:
		return "table"
	}
	return "block"
}

// inlineLevel reports whether n flows inside a line box
func inlineLevel(n *content.Node) bool {
	if n.Kind().IsInlineLevel() {
		return true
	}
	return n.Kind() == content.KindOpaque && !isBlockReplaced(n)
}

// block lays out a block-level element at the origin for an available width
func (e *engine) block(n *content.Node, parent style.ComputedStyle, ancestors []*content.Node, avail float64) *Box {
	st := e.resolve(n, parent, ancestors)
	b := &Box{Node: n, Style: st}
	display := displayOf(n, st)
	if display == "none" {
		return b
	}

	fs := fontSizeOf(st)
	b.Margin = boxEdges(st, "margin", avail, fs)
	b.Padding = boxEdges(st, "padding", avail, fs)
	b.Border = borderEdges(st, fs)
	hEdges := b.Padding.Left + b.Padding.Right + b.Border.Left + b.Border.Right
	vEdges := b.Padding.Top + b.Padding.Bottom + b.Border.Top + b.Border.Bottom

	b.Width = avail - b.Margin.Left - b.Margin.Right
	if w := parseLength(st.Get("width"), avail, fs, -1); w >= 0 && n.Kind() != content.KindOpaque {
		b.Width = w + hEdges
		if strings.EqualFold(st.Get("box-sizing"), "border-box") {
			b.Width = w
		}
	}
	if mw := parseLength(st.Get("max-width"), avail, fs, -1); mw >= 0 && b.Width > mw+hEdges {
		b.Width = mw + hEdges
	}
	if b.Width < hEdges {
		b.Width = hEdges
	}
	cw := b.Width - hEdges

	var contentHeight float64
	childAncestors := append(append([]*content.Node(nil), ancestors...), n)
	switch {
	case n.Kind() == content.KindOpaque:
		b.Replaced = true
		if !isBlockReplaced(n) {
			w, h := replacedSize(n, st, avail, fs)
			b.Width = w + hEdges
			contentHeight = h
		}
	case n.Kind() == content.KindTable && display == "table":
		contentHeight = e.table(b, n, st, childAncestors, cw)
	case display == "flex" && !strings.HasPrefix(st.Get("flex-direction"), "column"):
		contentHeight = e.flexRow(b, n, st, childAncestors, cw)
	default:
		declared := st.Get("height") != "" || st.Get("min-height") != ""
		collapseTop := b.Border.Top == 0 && b.Padding.Top == 0
		collapseBottom := b.Border.Bottom == 0 && b.Padding.Bottom == 0 && !declared
		res := e.flow(b, n.Children(), st, childAncestors, cw, collapseTop, collapseBottom)
		b.Margin.Top = collapse(b.Margin.Top, res.topMargin)
		b.Margin.Bottom = collapse(b.Margin.Bottom, res.bottomMargin)
		contentHeight = res.height
	}

	if h := parseLength(st.Get("height"), 0, fs, -1); h >= 0 {
		contentHeight = h
		if strings.EqualFold(st.Get("box-sizing"), "border-box") {
			contentHeight = maxf(h-vEdges, 0)
		}
	}
	if mh := parseLength(st.Get("min-height"), 0, fs, 0); mh > contentHeight {
		contentHeight = mh
	}
	b.Height = contentHeight + vEdges

	for _, c := range b.Children {
		c.shift(b.contentLeft(), b.contentTop())
	}
	for i := range b.Lines {
		b.Lines[i].Y += b.contentTop()
		for j := range b.Lines[i].Runs {
			b.Lines[i].Runs[j].X += b.contentLeft()
			b.Lines[i].Runs[j].Y += b.contentTop()
		}
	}
	return b
}

type flowResult struct {
	height float64
	// margins of the first and last children that collapsed through the
	// parent's edges
	topMargin    float64
	bottomMargin float64
}

// flow stacks block children and line boxes in the content box of b
func (e *engine) flow(b *Box, children []*content.Node, st style.ComputedStyle, ancestors []*content.Node, cw float64, collapseTop, collapseBottom bool) flowResult {
	var res flowResult
	y, pending := 0.0, 0.0
	atTop := true

	advance := func(m float64) {
		if atTop && collapseTop {
			res.topMargin = m
		} else {
			y += m
		}
		atTop = false
	}

	for i := 0; i < len(children); {
		if inlineLevel(children[i]) {
			j := i
			for j < len(children) && inlineLevel(children[j]) {
				j++
			}
			lines := e.lines(children[i:j], st, ancestors, cw)
			i = j
			if len(lines) == 0 {
				continue
			}
			advance(pending)
			pending = 0
			for _, ln := range lines {
				ln.Y += y
				for k := range ln.Runs {
					ln.Runs[k].Y += y
				}
				b.Lines = append(b.Lines, ln)
				y += ln.Height
			}
			continue
		}

		c := e.block(children[i], st, ancestors, cw)
		i++
		b.Children = append(b.Children, c)
		if collapsesThrough(c) {
			pending = collapse(pending, c.Margin.Top, c.Margin.Bottom)
			c.shift(c.Margin.Left, y)
			continue
		}
		advance(collapse(pending, c.Margin.Top))
		c.shift(c.Margin.Left, y)
		y += c.Height
		pending = c.Margin.Bottom
	}

	if collapseBottom {
		res.bottomMargin = pending
	} else {
		y += pending
	}
	res.height = y
	return res
}

// collapsesThrough reports whether a box is empty so its margins join those
// of its neighbours
func collapsesThrough(b *Box) bool {
	return b.Height == 0 && len(b.Lines) == 0 && !b.Replaced &&
		b.Border.Top == 0 && b.Border.Bottom == 0 &&
		b.Padding.Top == 0 && b.Padding.Bottom == 0
}

// collapse combines adjoining vertical margins: the largest positive margin
// plus the most negative one
func collapse(margins ...float64) float64 {
	pos, neg := 0.0, 0.0
	for _, m := range margins {
		if m > pos {
			pos = m
		}
		if m < neg {
			neg = m
		}
	}
	return pos + neg
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
