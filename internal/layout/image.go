package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/style"
)

// default size of a replaced element without declared dimensions
const defaultReplacedSize = 40.0

// replacedSize sizes images and other atomic elements from CSS width/height,
// then from their width/height attributes, else a default square
func replacedSize(n *content.Node, st style.ComputedStyle, containerWidth, fontSize float64) (float64, float64) {
	w, h := defaultReplacedSize, defaultReplacedSize
	if v, ok := n.Attr("width"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil && f > 0 {
			w = f
		}
	}
	if v, ok := n.Attr("height"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil && f > 0 {
			h = f
		}
	}
	if v := parseLength(st.Get("width"), containerWidth, fontSize, 0); v > 0 {
		w = v
	}
	if v := parseLength(st.Get("height"), containerWidth, fontSize, 0); v > 0 {
		h = v
	}
	if mw := parseLength(st.Get("max-width"), containerWidth, fontSize, 0); mw > 0 && w > mw {
		h = h * mw / w
		w = mw
	}
	return w, h
}

// isBlockReplaced reports whether an atomic element sits on its own rather
// than inside a line box
func isBlockReplaced(n *content.Node) bool {
	return n.Tag() == "hr"
}
