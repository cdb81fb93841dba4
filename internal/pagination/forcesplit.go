package pagination

import (
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

// ForceSplit divides the content of an overflowing page into a prefix that
// fits and the rest. Children are added whole until one overflows; that child
// gets a single text split pass if it is text-like and moves to the rest
// otherwise. Lists, tables and definition lists are never entered.
func ForceSplit(mctx *measure.Context, nodes []*content.Node, opts Options) (left, right []*content.Node, err error) {
	s := &splitter{opts: opts, mctx: mctx, warn: func(WarningKind, string) {}}
	return s.forceSplit(nodes)
}

func (s *splitter) forceSplit(nodes []*content.Node) (left, right []*content.Node, err error) {
	for i, n := range nodes {
		f := pageFrame(left)
		ok, _, err := s.fits(f, n)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			left = append(left, n)
			continue
		}

		res, err := s.forceText(n, f)
		if err != nil {
			return nil, nil, err
		}
		if res.Left != nil {
			left = append(left, res.Left)
		}
		if res.Right != nil {
			right = append(right, res.Right)
		}
		right = append(right, nodes[i+1:]...)
		return left, right, nil
	}
	return left, nil, nil
}

// forceText applies one text split to text nodes and to text-only
// paragraph-like blocks and headings
func (s *splitter) forceText(n *content.Node, f frame) (SplitResult, error) {
	if n.IsText() {
		return s.splitText(n, f)
	}
	if !textLike(n) {
		return SplitResult{Right: n}, nil
	}

	var b strings.Builder
	for _, c := range n.Children() {
		b.WriteString(c.Text())
	}
	res, err := s.splitText(content.NewText(b.String()), f.within(n.WithChildren()))
	if err != nil {
		return SplitResult{}, err
	}
	var out SplitResult
	if res.Left != nil {
		out.Left = n.WithChildren(res.Left)
	}
	if res.Right != nil {
		out.Right = n.WithChildren(res.Right)
	}
	if out.Left == nil {
		out.Right = n
	}
	return out, nil
}

// textLike reports whether n is a paragraph-like block or a heading holding
// only text
func textLike(n *content.Node) bool {
	switch n.Kind() {
	case content.KindParagraph, content.KindPreformatted, content.KindHeading:
	case content.KindContainer:
		if n.Tag() != "blockquote" {
			return false
		}
	default:
		return false
	}
	if n.Len() == 0 {
		return false
	}
	for _, c := range n.Children() {
		if !c.IsText() {
			return false
		}
	}
	return true
}
