package pagination

import (
	"fmt"

	"github.com/gompdf/pagefit/internal/measure"
)

// Overflow describes a page whose content is taller than the height budget
type Overflow struct {
	PageIndex      int
	Column         string
	MeasuredHeight float64
	OverflowAmount float64
}

func (o Overflow) String() string {
	if o.Column != "" {
		return fmt.Sprintf("%s column page %d: %.1fpx (+%.1fpx)", o.Column, o.PageIndex+1, o.MeasuredHeight, o.OverflowAmount)
	}
	return fmt.Sprintf("page %d: %.1fpx (+%.1fpx)", o.PageIndex+1, o.MeasuredHeight, o.OverflowAmount)
}

// Audit re-measures every page and reports those exceeding maxHeight. Pages
// are not modified.
func Audit(mctx *measure.Context, pages []*Page, maxHeight float64) ([]Overflow, error) {
	var report []Overflow
	for i, page := range pages {
		if page.Placeholder {
			continue
		}
		h, err := mctx.MeasurePage(page.Nodes)
		if err != nil {
			return nil, fmt.Errorf("auditing page %d: %w", i+1, err)
		}
		if h > maxHeight {
			report = append(report, Overflow{
				PageIndex:      i,
				MeasuredHeight: h,
				OverflowAmount: h - maxHeight,
			})
		}
	}
	return report, nil
}
