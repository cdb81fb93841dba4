package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/style"
)

// Edges holds the four sides of a margin, padding or border
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Box is a laid out block. X and Y are the top-left corner of the border box;
// Width and Height are border box dimensions. Anonymous line boxes have no Node.
type Box struct {
	Node     *content.Node
	Style    style.ComputedStyle
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Margin   Edges
	Padding  Edges
	Border   Edges
	Lines    []Line
	Children []*Box
	// Replaced marks images and other atomic elements
	Replaced bool
}

// Line is one line box of inline content
type Line struct {
	Y      float64
	Height float64
	Runs   []Run
}

// Run is a word, space or replaced element placed on a line
type Run struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Text     string
	FontSize float64
	Style    style.ComputedStyle
	Node     *content.Node
}

// OuterHeight returns the height including vertical margins
func (b *Box) OuterHeight() float64 {
	return b.Margin.Top + b.Height + b.Margin.Bottom
}

// contentTop returns the offset of the content box from the border box top
func (b *Box) contentTop() float64 {
	return b.Border.Top + b.Padding.Top
}

func (b *Box) contentLeft() float64 {
	return b.Border.Left + b.Padding.Left
}

// shift moves the box and everything inside it
func (b *Box) shift(dx, dy float64) {
	b.X += dx
	b.Y += dy
	for i := range b.Lines {
		b.Lines[i].Y += dy
		for j := range b.Lines[i].Runs {
			b.Lines[i].Runs[j].X += dx
			b.Lines[i].Runs[j].Y += dy
		}
	}
	for _, c := range b.Children {
		c.shift(dx, dy)
	}
}

// parseBoxShorthand parses CSS shorthand like:
//   - "10px"
//   - "10px 20px"
//   - "10px 15px 8px"
//   - "10px 12px 8px 6px"
//
// and returns (top, right, bottom, left) values.
func parseBoxShorthand(value string, containerSize, fontSize float64) (float64, float64, float64, float64) {
	parts := strings.Fields(value)
	to := func(s string) float64 { return parseLength(s, containerSize, fontSize, 0) }
	switch len(parts) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		a := to(parts[0])
		return a, a, a, a
	case 2:
		vtb := to(parts[0])
		vrl := to(parts[1])
		return vtb, vrl, vtb, vrl
	case 3:
		t := to(parts[0])
		r := to(parts[1])
		b := to(parts[2])
		return t, r, b, r
	default:
		return to(parts[0]), to(parts[1]), to(parts[2]), to(parts[3])
	}
}

// boxEdges reads a margin or padding shorthand and its longhands
func boxEdges(st style.ComputedStyle, prop string, containerSize, fontSize float64) Edges {
	var e Edges
	if v := st.Get(prop); v != "" {
		e.Top, e.Right, e.Bottom, e.Left = parseBoxShorthand(v, containerSize, fontSize)
	}
	sides := []struct {
		name string
		ptr  *float64
	}{{"top", &e.Top}, {"right", &e.Right}, {"bottom", &e.Bottom}, {"left", &e.Left}}
	for _, s := range sides {
		if v := st.Get(prop + "-" + s.name); v != "" {
			*s.ptr = parseLength(v, containerSize, fontSize, 0)
		}
	}
	return e
}

// borderEdges reads border widths. A border only takes space when a line
// style is set, as in CSS.
func borderEdges(st style.ComputedStyle, fontSize float64) Edges {
	var e Edges
	if v := st.Get("border"); v != "" {
		w := borderWidth(v, fontSize)
		e = Edges{w, w, w, w}
	}
	if v := st.Get("border-width"); v != "" && borderStyled(st.Get("border-style")) {
		e.Top, e.Right, e.Bottom, e.Left = parseBoxShorthand(v, 0, fontSize)
	}
	sides := []struct {
		name string
		ptr  *float64
	}{{"top", &e.Top}, {"right", &e.Right}, {"bottom", &e.Bottom}, {"left", &e.Left}}
	for _, s := range sides {
		if v := st.Get("border-" + s.name); v != "" {
			*s.ptr = borderWidth(v, fontSize)
		}
		if v := st.Get("border-" + s.name + "-width"); v != "" {
			*s.ptr = parseLength(v, 0, fontSize, 0)
		}
	}
	return e
}

func borderStyled(v string) bool {
	for _, tok := range strings.Fields(v) {
		switch tok {
		case "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset":
			return true
		}
	}
	return false
}

// borderWidth extracts the width of a border shorthand such as "1px solid #ddd"
func borderWidth(v string, fontSize float64) float64 {
	width := 3.0
	styled := false
	for _, tok := range strings.Fields(strings.ToLower(v)) {
		switch tok {
		case "none", "hidden":
			return 0
		case "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset":
			styled = true
		case "thin":
			width = 1
		case "medium":
			width = 3
		case "thick":
			width = 5
		default:
			if isLength(tok) {
				width = parseLength(tok, 0, fontSize, width)
			}
		}
	}
	if !styled {
		return 0
	}
	return width
}

func isLength(s string) bool {
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.')
}

// parseLength parses a CSS length value. Percentages resolve against
// containerSize and em units against fontSize.
func parseLength(value string, containerSize, fontSize, defaultValue float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" || value == "none" || value == "normal" {
		return defaultValue
	}

	unit := func(suffix string, scale float64) (float64, bool) {
		if !strings.HasSuffix(value, suffix) {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(value[:len(value)-len(suffix)]), 64)
		if err != nil {
			return defaultValue, true
		}
		return n * scale, true
	}

	if v, ok := unit("%", containerSize/100); ok {
		return v
	}
	if v, ok := unit("px", 1); ok {
		return v
	}
	if v, ok := unit("rem", 16); ok {
		return v
	}
	if v, ok := unit("em", fontSize); ok {
		return v
	}
	if v, ok := unit("pt", 4.0/3.0); ok {
		return v
	}
	if v, ok := unit("mm", 96/25.4); ok {
		return v
	}
	if v, ok := unit("cm", 96/2.54); ok {
		return v
	}
	if v, ok := unit("in", 96); ok {
		return v
	}

	pixels, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return pixels
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// parseFontSize resolves a font-size declaration against the parent size
func parseFontSize(value string, parentSize float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if v, ok := fontSizeKeywords[value]; ok {
		return v
	}
	switch value {
	case "smaller":
		return parentSize / 1.2
	case "larger":
		return parentSize * 1.2
	}
	if fs := parseLength(value, parentSize, parentSize, parentSize); fs > 0 {
		return fs
	}
	return parentSize
}

// lineHeight resolves line-height for a font size; "normal" is 1.2em
func lineHeight(st style.ComputedStyle, fontSize float64) float64 {
	v := st.Get("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fontSize
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n * fontSize
	}
	return parseLength(v, fontSize, fontSize, 1.2*fontSize)
}

// fontSizeOf returns the resolved font size stored on an effective style
func fontSizeOf(st style.ComputedStyle) float64 {
	return parseLength(st.Get("font-size"), 16, 16, 16)
}

func px(v float64) string {
	return fmt.Sprintf("%.6gpx", v)
}
