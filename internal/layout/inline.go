package layout

import (
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/style"
	"github.com/gompdf/pagefit/internal/text"
)

// piece is one word, space, break or replaced element of an inline run
type piece struct {
	text       string
	st         style.ComputedStyle
	fontSize   float64
	width      float64
	height     float64
	node       *content.Node
	space, brk bool
	replaced   bool
}

// lines breaks a run of inline-level nodes into line boxes of width cw. A run
// holding nothing but collapsible white space yields no lines.
func (e *engine) lines(nodes []*content.Node, st style.ComputedStyle, ancestors []*content.Node, cw float64) []Line {
	var pieces []piece
	for _, n := range nodes {
		e.collect(n, st, ancestors, cw, &pieces)
	}

	visible := false
	for _, p := range pieces {
		if !p.space {
			visible = true
			break
		}
	}
	if !visible {
		return nil
	}

	items := make([]text.Item, len(pieces))
	for i, p := range pieces {
		items[i] = text.Item{Width: p.width, Space: p.space, Break: p.brk}
	}

	strut := lineHeight(st, fontSizeOf(st))
	align := strings.ToLower(st.Get("text-align"))

	var out []Line
	y := 0.0
	for _, idx := range text.BreakLines(items, cw) {
		ln := Line{Y: y, Height: strut}
		for _, i := range idx {
			if pieces[i].height > ln.Height {
				ln.Height = pieces[i].height
			}
		}

		x := 0.0
		switch align {
		case "center":
			x = (cw - text.Width(items, idx)) / 2
		case "right", "end":
			x = cw - text.Width(items, idx)
		}
		if x < 0 {
			x = 0
		}

		for _, i := range idx {
			p := pieces[i]
			if !p.space {
				ry := y + (ln.Height-p.height)/2
				if p.replaced {
					ry = y + ln.Height - p.height
				}
				ln.Runs = append(ln.Runs, Run{
					X:        x,
					Y:        ry,
					Width:    p.width,
					Height:   p.height,
					Text:     p.text,
					FontSize: p.fontSize,
					Style:    p.st,
					Node:     p.node,
				})
			}
			x += p.width
		}
		out = append(out, ln)
		y += ln.Height
	}
	return out
}

// collect flattens an inline-level node into pieces
func (e *engine) collect(n *content.Node, parent style.ComputedStyle, ancestors []*content.Node, cw float64, out *[]piece) {
	if n.IsText() {
		e.textPieces(n, parent, out)
		return
	}

	st := e.resolve(n, parent, ancestors)
	if displayOf(n, st) == "none" {
		return
	}
	fs := fontSizeOf(st)

	switch {
	case n.Tag() == "br":
		*out = append(*out, piece{brk: true, st: st, node: n})
		return
	case n.Kind() == content.KindOpaque:
		w, h := replacedSize(n, st, cw, fs)
		m := boxEdges(st, "margin", cw, fs)
		*out = append(*out, piece{
			st:       st,
			node:     n,
			width:    w + m.Left + m.Right,
			height:   h + m.Top + m.Bottom,
			replaced: true,
		})
		return
	}

	inner := append(append([]*content.Node(nil), ancestors...), n)
	// blocks nested in inline elements are flattened into the run
	for _, c := range n.Children() {
		e.collect(c, st, inner, cw, out)
	}
}

// textPieces tokenizes a text node according to white-space handling
func (e *engine) textPieces(n *content.Node, st style.ComputedStyle, out *[]piece) {
	s := n.Text()
	if s == "" {
		return
	}
	fs := fontSizeOf(st)
	lh := lineHeight(st, fs)
	s = transform(s, st.Get("text-transform"))

	word := func(w string) piece {
		return piece{text: w, st: st, fontSize: fs, width: measureTextWidth(w, fs, st), height: lh, node: n}
	}
	space := piece{text: " ", st: st, fontSize: fs, width: measureTextWidth(" ", fs, st), height: lh, node: n, space: true}

	switch ws := strings.ToLower(st.Get("white-space")); ws {
	case "pre", "pre-wrap", "pre-line", "break-spaces":
		for i, line := range strings.Split(s, "\n") {
			if i > 0 {
				*out = append(*out, piece{brk: true, st: st, height: lh})
			}
			if ws == "pre" {
				if line != "" {
					*out = append(*out, word(strings.ReplaceAll(line, "\t", "        ")))
				}
				continue
			}
			for _, tok := range text.Tokenize(line) {
				if tok == " " {
					*out = append(*out, space)
				} else {
					*out = append(*out, word(tok))
				}
			}
		}
	default:
		for _, tok := range text.Tokenize(s) {
			if tok == " " {
				*out = append(*out, space)
			} else {
				*out = append(*out, word(tok))
			}
		}
	}
}

func transform(s, mode string) string {
	switch strings.ToLower(mode) {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	case "capitalize":
		var b strings.Builder
		start := true
		for _, r := range s {
			if start && !text.IsSpace(string(r)) {
				b.WriteString(strings.ToUpper(string(r)))
				start = false
				continue
			}
			if text.IsSpace(string(r)) {
				start = true
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	return s
}
