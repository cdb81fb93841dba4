package pagination

import (
	"fmt"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

// Page represents a single closed page: its top-level content and the height
// measured when it was closed.
type Page struct {
	Nodes  []*content.Node
	Height float64
	// Placeholder marks an empty column slot of a combined page
	Placeholder bool
}

// Fill returns the page's fill ratio against maxHeight
func (p *Page) Fill(maxHeight float64) float64 {
	if maxHeight <= 0 {
		return 0
	}
	return p.Height / maxHeight
}

// Markup serializes the page content
func (p *Page) Markup() string {
	return content.MarkupAll(p.Nodes)
}

// WarningKind classifies a soft pagination problem
type WarningKind string

const (
	WarnNonConvergent    WarningKind = "non-convergent-split"
	WarnOversizedLeft    WarningKind = "oversized-left"
	WarnStructural       WarningKind = "structural-anomaly"
	WarnForcedPlacement  WarningKind = "forced-placement"
	WarnForceSplit       WarningKind = "force-split"
	WarnResidualOverflow WarningKind = "residual-overflow"
)

// Warning is a non-fatal diagnostic raised while paginating
type Warning struct {
	Kind    WarningKind
	Column  string
	Page    int
	Message string
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s (%s column, page %d): %s", w.Kind, w.Column, w.Page+1, w.Message)
	}
	return fmt.Sprintf("%s (page %d): %s", w.Kind, w.Page+1, w.Message)
}

// Result is the output of one pagination run
type Result struct {
	Pages    []*Page
	Report   []Overflow
	Warnings []Warning
	Stats    measure.Stats
}

// HasOverflow reports whether any page still exceeds the height budget
func (r *Result) HasOverflow() bool {
	return len(r.Report) > 0
}
