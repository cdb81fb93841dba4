package layout

import (
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/pagefit/internal/style"
)

// Singleton PDF instance for text measurement using go-pdf/fpdf metrics
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureMu   sync.Mutex
	toCP1252    func(string) string
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "", "")
	measurePDF.SetFont("Helvetica", "", 12)
	toCP1252 = measurePDF.UnicodeTranslatorFromDescriptor("")
}

// measureTextWidth returns a font-aware width using fpdf core font metrics.
// Sizes are passed through unchanged, so a size in px yields a width in px.
func measureTextWidth(text string, fontSize float64, st style.ComputedStyle) float64 {
	if text == "" || fontSize <= 0 {
		return 0
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	fam, sty := ResolveFont(st)
	measurePDF.SetFont(fam, sty, fontSize)
	return measurePDF.GetStringWidth(toCP1252(text))
}

// ResolveFont maps CSS-like style to core PDF font family and style
func ResolveFont(st style.ComputedStyle) (string, string) {
	family := "Helvetica"
	if ff := st.Get("font-family"); ff != "" {
		first := strings.Split(ff, ",")[0]
		first = strings.TrimSpace(strings.Trim(first, "'\""))
		switch strings.ToLower(first) {
		case "times", "times new roman", "georgia", "serif":
			family = "Times"
		case "courier", "courier new", "consolas", "menlo", "monospace":
			family = "Courier"
		}
	}
	styleStr := ""
	switch st.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		styleStr += "B"
	}
	switch st.Get("font-style") {
	case "italic", "oblique":
		styleStr += "I"
	}
	return family, styleStr
}
