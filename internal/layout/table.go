package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/style"
)

// tableRow is a tr together with the style context it is laid out in
type tableRow struct {
	node      *content.Node
	parent    style.ComputedStyle
	ancestors []*content.Node
}

// table lays out captions, then header, body and footer rows. Columns share
// the table's content width; the first row's declared widths are honoured
// and the rest is split evenly.
func (e *engine) table(b *Box, n *content.Node, st style.ComputedStyle, ancestors []*content.Node, cw float64) float64 {
	var captions []*content.Node
	var head, body, foot []tableRow

	for _, c := range n.Children() {
		switch c.Kind() {
		case content.KindTableHead, content.KindTableBody, content.KindTableFoot:
			gst := e.resolve(c, st, ancestors)
			ganc := append(append([]*content.Node(nil), ancestors...), c)
			var rows []tableRow
			for _, r := range c.Children() {
				if r.Kind() == content.KindTableRow {
					rows = append(rows, tableRow{r, gst, ganc})
				}
			}
			switch c.Kind() {
			case content.KindTableHead:
				head = append(head, rows...)
			case content.KindTableFoot:
				foot = append(foot, rows...)
			default:
				body = append(body, rows...)
			}
		case content.KindTableRow:
			body = append(body, tableRow{c, st, ancestors})
		case content.KindText:
		default:
			if c.Tag() == "caption" {
				captions = append(captions, c)
			}
		}
	}
	rows := append(append(head, body...), foot...)

	y := 0.0
	for _, c := range captions {
		cb := e.block(c, st, ancestors, cw)
		y += cb.Margin.Top
		cb.shift(cb.Margin.Left, y)
		y += cb.Height + cb.Margin.Bottom
		b.Children = append(b.Children, cb)
	}
	if len(rows) == 0 {
		return y
	}

	spacing := 2.0
	if v := st.Get("border-spacing"); v != "" {
		spacing = parseLength(strings.Fields(v)[0], 0, fontSizeOf(st), spacing)
	}
	if strings.EqualFold(st.Get("border-collapse"), "collapse") {
		spacing = 0
	}

	cols := 0
	for _, r := range rows {
		if c := columnCount(r.node); c > cols {
			cols = c
		}
	}
	if cols == 0 {
		return y
	}
	widths := e.columnWidths(rows[0], cols, maxf(cw-spacing*float64(cols+1), 0))

	y += spacing
	for _, r := range rows {
		rb := e.row(r, widths, spacing)
		rb.shift(0, y)
		b.Children = append(b.Children, rb)
		y += rb.Height + spacing
	}
	return y
}

// row lays out one tr; every cell is stretched to the tallest one
func (e *engine) row(r tableRow, widths []float64, spacing float64) *Box {
	st := e.resolve(r.node, r.parent, r.ancestors)
	rb := &Box{Node: r.node, Style: st}
	anc := append(append([]*content.Node(nil), r.ancestors...), r.node)

	x, col := spacing, 0
	for _, c := range r.node.Children() {
		if c.Kind() != content.KindTableCell {
			continue
		}
		span := colspan(c)
		w := 0.0
		for k := 0; k < span && col < len(widths); k++ {
			w += widths[col]
			if k > 0 {
				w += spacing
			}
			col++
		}
		cb := e.block(c, st, anc, w)
		cb.Margin = Edges{}
		cb.Width = w
		cb.shift(x, 0)
		rb.Children = append(rb.Children, cb)
		if cb.Height > rb.Height {
			rb.Height = cb.Height
		}
		x += w + spacing
	}
	if h := parseLength(st.Get("height"), 0, fontSizeOf(st), 0); h > rb.Height {
		rb.Height = h
	}
	for _, cb := range rb.Children {
		cb.Height = rb.Height
	}
	rb.Width = x
	return rb
}

func (e *engine) columnWidths(first tableRow, cols int, avail float64) []float64 {
	widths := make([]float64, cols)
	st := e.resolve(first.node, first.parent, first.ancestors)
	anc := append(append([]*content.Node(nil), first.ancestors...), first.node)

	fixed, free := 0.0, cols
	col := 0
	for _, c := range first.node.Children() {
		if c.Kind() != content.KindTableCell {
			continue
		}
		span := colspan(c)
		if span == 1 && col < cols {
			cst := e.resolve(c, st, anc)
			w := parseLength(cst.Get("width"), avail, fontSizeOf(cst), 0)
			if v, ok := c.Attr("width"); ok && w == 0 {
				w = parseLength(v, avail, fontSizeOf(cst), 0)
			}
			if w > 0 {
				widths[col] = w
				fixed += w
				free--
			}
		}
		col += span
	}

	if fixed > avail && fixed > 0 {
		scale := avail / fixed
		for i := range widths {
			widths[i] *= scale
		}
		fixed = avail
	}
	if free > 0 {
		share := (avail - fixed) / float64(free)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func columnCount(tr *content.Node) int {
	n := 0
	for _, c := range tr.Children() {
		if c.Kind() == content.KindTableCell {
			n += colspan(c)
		}
	}
	return n
}

func colspan(cell *content.Node) int {
	if v, ok := cell.Attr("colspan"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
			return n
		}
	}
	return 1
}
