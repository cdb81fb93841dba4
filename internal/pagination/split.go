package pagination

import (
	"fmt"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

// SplitResult divides a node into a part that fits the remaining page space
// and a remainder. Reading Left's content followed by Right's reproduces the
// original node; a splitter never returns both halves absent.
type SplitResult struct {
	Left  *content.Node
	Right *content.Node
}

// frame places a candidate subtree where it would sit on the page being
// filled and returns the resulting top-level page content.
type frame func(candidate *content.Node) []*content.Node

// pageFrame appends candidates after the nodes already on the page
func pageFrame(page []*content.Node) frame {
	base := append([]*content.Node(nil), page...)
	return func(candidate *content.Node) []*content.Node {
		out := make([]*content.Node, 0, len(base)+1)
		out = append(out, base...)
		return append(out, candidate)
	}
}

// within nests candidates as the last child of shell before placing them
func (f frame) within(shell *content.Node) frame {
	return func(candidate *content.Node) []*content.Node {
		return f(shell.Append(candidate))
	}
}

type splitter struct {
	opts Options
	mctx *measure.Context
	warn func(kind WarningKind, msg string)
}

// fits measures candidate in place and compares it to the page limit
func (s *splitter) fits(f frame, candidate *content.Node) (bool, float64, error) {
	h, err := s.mctx.MeasurePage(f(candidate))
	if err != nil {
		return false, 0, err
	}
	return h <= s.opts.limit(), h, nil
}

// split dispatches n to the splitter of its kind
func (s *splitter) split(n *content.Node, f frame) (SplitResult, error) {
	var (
		res SplitResult
		err error
	)
	switch n.Kind() {
	case content.KindText:
		res, err = s.splitText(n, f)
	case content.KindUnorderedList, content.KindOrderedList:
		res, err = s.splitList(n, f)
	case content.KindTable:
		res, err = s.splitTable(n, f)
	case content.KindDefinitionList:
		res, err = s.splitDefinitionList(n, f)
	case content.KindParagraph, content.KindContainer, content.KindPreformatted,
		content.KindListItem, content.KindDefinitionTerm, content.KindDefinitionDescription,
		content.KindTableCell:
		res, err = s.splitBlock(n, f)
	case content.KindHeading, content.KindInline, content.KindOpaque,
		content.KindTableHead, content.KindTableBody, content.KindTableFoot, content.KindTableRow:
		res = SplitResult{Right: n}
	default:
		panic(fmt.Sprintf("pagination: no splitter for kind %v", n.Kind()))
	}
	if err != nil {
		return SplitResult{}, err
	}
	if res.Left == nil && res.Right == nil {
		res.Right = n
	}
	if res.Left != nil {
		ok, h, err := s.fits(f, res.Left)
		if err != nil {
			return SplitResult{}, err
		}
		if !ok {
			s.warn(WarnOversizedLeft, fmt.Sprintf("<%s> prefix measures %.1fpx, budget %.1fpx", tagOf(n), h, s.opts.limit()))
		}
	}
	return res, nil
}

// splittable reports whether an element kind has a finer-grained splitter
func splittable(k content.Kind) bool {
	switch k {
	case content.KindHeading, content.KindInline, content.KindOpaque,
		content.KindTableHead, content.KindTableBody, content.KindTableFoot, content.KindTableRow:
		return false
	}
	return true
}

func tagOf(n *content.Node) string {
	if n.IsText() {
		return "#text"
	}
	return n.Tag()
}
