package pagination

import (
	"github.com/gompdf/pagefit/internal/content"
)

// splitUnits fills a clone of shell with units one at a time and stops at the
// first unit that would overflow the page. Units are never divided.
func (s *splitter) splitUnits(shell *content.Node, units []*content.Node, f frame) (SplitResult, error) {
	left := shell.WithChildren()
	for i, u := range units {
		candidate := left.Append(u)
		ok, _, err := s.fits(f, candidate)
		if err != nil {
			return SplitResult{}, err
		}
		if !ok {
			var res SplitResult
			if left.Len() > 0 {
				res.Left = left
			}
			res.Right = shell.WithChildren(units[i:]...)
			return res, nil
		}
		left = candidate
	}
	if left.Len() == 0 {
		return SplitResult{Right: shell}, nil
	}
	return SplitResult{Left: left}, nil
}

// splitList divides ordered and unordered lists between items
func (s *splitter) splitList(list *content.Node, f frame) (SplitResult, error) {
	return s.splitUnits(list, list.Children(), f)
}

// splitDefinitionList divides a dl between its dt/dd children
func (s *splitter) splitDefinitionList(dl *content.Node, f frame) (SplitResult, error) {
	return s.splitUnits(dl, dl.Children(), f)
}

// tableRow is one body row with the body section it belongs to. Rows placed
// directly in the table have no section.
type tableRow struct {
	body *content.Node
	row  *content.Node
}

// splitTable divides a table between body rows. The header section (thead,
// caption, colgroup) is repeated on both parts and tfoot travels with the
// last part. Each part holds one clone per body section it has rows of.
func (s *splitter) splitTable(table *content.Node, f frame) (SplitResult, error) {
	var (
		header []*content.Node
		footer []*content.Node
		rows   []tableRow
		bodies int
	)
	for _, c := range table.Children() {
		switch {
		case c.Kind() == content.KindTableBody:
			bodies++
			if c.Len() == 0 {
				rows = append(rows, tableRow{body: c})
			}
			for _, r := range c.Children() {
				rows = append(rows, tableRow{body: c, row: r})
			}
		case c.Kind() == content.KindTableFoot:
			footer = append(footer, c)
		case c.Kind() == content.KindTableHead, c.Tag() == "caption", c.Tag() == "colgroup":
			header = append(header, c)
		case c.IsText() && c.Empty():
		default:
			rows = append(rows, tableRow{row: c})
		}
	}
	if bodies == 0 || len(rows) == 0 {
		s.warn(WarnStructural, "table has no body rows; kept whole")
		return SplitResult{Right: table}, nil
	}

	build := func(part []tableRow, last bool) *content.Node {
		kids := make([]*content.Node, 0, len(header)+len(footer)+len(part))
		kids = append(kids, header...)
		kids = append(kids, regroupRows(part)...)
		if last {
			kids = append(kids, footer...)
		}
		return table.WithChildren(kids...)
	}

	n := 0
	for i := range rows {
		ok, _, err := s.fits(f, build(rows[:i+1], false))
		if err != nil {
			return SplitResult{}, err
		}
		if !ok {
			break
		}
		n = i + 1
	}

	switch {
	case n == 0:
		return SplitResult{Right: table}, nil
	case n == len(rows) && len(footer) == 0:
		return SplitResult{Left: table}, nil
	case n == len(rows):
		return SplitResult{Left: build(rows, false), Right: build(nil, true)}, nil
	}
	return SplitResult{Left: build(rows[:n], false), Right: build(rows[n:], true)}, nil
}

// regroupRows wraps consecutive rows of the same body section in a clone of
// that section
func regroupRows(rows []tableRow) []*content.Node {
	var out []*content.Node
	for i := 0; i < len(rows); {
		body := rows[i].body
		if body == nil {
			out = append(out, rows[i].row)
			i++
			continue
		}
		var kids []*content.Node
		for ; i < len(rows) && rows[i].body == body; i++ {
			if rows[i].row != nil {
				kids = append(kids, rows[i].row)
			}
		}
		out = append(out, body.WithChildren(kids...))
	}
	return out
}

// splitBlock divides generic containers. Text children are cut at character
// granularity; element children that overflow are split by their own kind's
// splitter with the in-progress left part as context. Everything after the
// first overflowing child moves to the right part.
func (s *splitter) splitBlock(block *content.Node, f frame) (SplitResult, error) {
	children := block.Children()
	left := block.WithChildren()
	for i, child := range children {
		inner := f.within(left)
		if child.IsText() {
			res, err := s.splitText(child, inner)
			if err != nil {
				return SplitResult{}, err
			}
			if res.Left != nil {
				left = left.Append(res.Left)
			}
			if res.Right != nil {
				return blockResult(block, left, res.Right, children[i+1:]), nil
			}
			continue
		}

		ok, _, err := s.fits(inner, child)
		if err != nil {
			return SplitResult{}, err
		}
		if ok {
			left = left.Append(child)
			continue
		}

		rest := child
		if splittable(child.Kind()) {
			res, err := s.split(child, inner)
			if err != nil {
				return SplitResult{}, err
			}
			if res.Left != nil {
				left = left.Append(res.Left)
			}
			rest = res.Right
		}
		return blockResult(block, left, rest, children[i+1:]), nil
	}
	if left.Len() == 0 {
		return SplitResult{Right: block}, nil
	}
	return SplitResult{Left: left}, nil
}

func blockResult(block, left, head *content.Node, tail []*content.Node) SplitResult {
	var res SplitResult
	if left.Len() > 0 {
		res.Left = left
	}
	rest := make([]*content.Node, 0, len(tail)+1)
	if head != nil {
		rest = append(rest, head)
	}
	rest = append(rest, tail...)
	if len(rest) > 0 {
		res.Right = block.WithChildren(rest...)
	}
	return res
}
