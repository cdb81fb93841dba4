package layout

import (
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/style"
)

// flexRow places element children side by side. Items with a fixed basis
// keep it; the others share what is left. The row is as tall as its tallest
// item.
func (e *engine) flexRow(b *Box, n *content.Node, st style.ComputedStyle, ancestors []*content.Node, cw float64) float64 {
	fs := fontSizeOf(st)
	gap := parseLength(st.Get("column-gap"), cw, fs, parseLength(firstField(st.Get("gap")), cw, fs, 0))

	type item struct {
		node  *content.Node
		st    style.ComputedStyle
		basis float64
	}
	var items []item
	fixed, free := 0.0, 0
	for _, c := range n.Children() {
		if c.IsText() {
			continue
		}
		cst := e.styles.ComputeStyle(c, ancestors)
		if strings.EqualFold(cst.Get("display"), "none") {
			continue
		}
		basis := flexBasis(cst, cw, fs)
		if basis > 0 {
			fixed += basis
		} else {
			free++
		}
		items = append(items, item{c, cst, basis})
	}
	if len(items) == 0 {
		return 0
	}

	share := 0.0
	if free > 0 {
		share = maxf(cw-fixed-gap*float64(len(items)-1), 0) / float64(free)
	}

	x, height := 0.0, 0.0
	for _, it := range items {
		w := it.basis
		if w <= 0 {
			w = share
		}
		cb := e.block(it.node, st, ancestors, w)
		cb.shift(x+cb.Margin.Left, cb.Margin.Top)
		b.Children = append(b.Children, cb)
		if h := cb.OuterHeight(); h > height {
			height = h
		}
		x += w + gap
	}
	return height
}

// flexBasis reads a fixed item size from flex, flex-basis or width
func flexBasis(st style.ComputedStyle, cw, fs float64) float64 {
	if parts := strings.Fields(st.Get("flex")); len(parts) == 3 {
		if w := parseLength(parts[2], cw, fs, 0); w > 0 {
			return w
		}
	}
	if w := parseLength(st.Get("flex-basis"), cw, fs, 0); w > 0 {
		return w
	}
	return parseLength(st.Get("width"), cw, fs, 0)
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
