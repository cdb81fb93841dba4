package text

import (
	"strings"
	"unicode"
)

// Tokenize splits text into words and single-space separators. Runs of
// whitespace collapse to one " " token; leading and trailing whitespace is
// kept as a separator so adjacent runs can be joined.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	var cur strings.Builder
	inSpace := false

	for _, r := range s {
		isSp := unicode.IsSpace(r)
		switch {
		case isSp && !inSpace:
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			tokens = append(tokens, " ")
			inSpace = true
		case isSp:
		default:
			cur.WriteRune(r)
			inSpace = false
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// CollapseSpace preserves single spaces but collapses multiple consecutive spaces
// into a single space. Unlike strings.TrimSpace, it doesn't remove leading/trailing spaces.
func CollapseSpace(s string) string {
	var b strings.Builder
	lastWasSpace := false

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}

	return b.String()
}

// IsSpace reports whether s is empty or holds only whitespace
func IsSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Item is one unit of inline content handed to the line breaker
type Item struct {
	Width float64
	// Space items may be dropped at the start and end of a line
	Space bool
	// Break items end the current line
	Break bool
}

// BreakLines assigns items to lines no wider than maxWidth and returns the
// item indices of every line. Items wider than maxWidth get a line of their
// own. Spaces at line boundaries are dropped.
func BreakLines(items []Item, maxWidth float64) [][]int {
	var lines [][]int
	var line []int
	width := 0.0
	pending := -1

	emit := func() {
		lines = append(lines, line)
		line = nil
		width = 0
		pending = -1
	}

	for i, it := range items {
		switch {
		case it.Break:
			emit()
		case it.Space:
			if len(line) > 0 {
				pending = i
			}
		default:
			spw := 0.0
			if pending >= 0 {
				spw = items[pending].Width
			}
			if len(line) > 0 && width+spw+it.Width > maxWidth {
				emit()
				spw = 0
			}
			if pending >= 0 {
				line = append(line, pending)
				width += spw
				pending = -1
			}
			line = append(line, i)
			width += it.Width
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// Width sums the widths of the given items
func Width(items []Item, idx []int) float64 {
	w := 0.0
	for _, i := range idx {
		w += items[i].Width
	}
	return w
}
