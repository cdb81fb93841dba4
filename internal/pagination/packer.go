package pagination

import (
	"fmt"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

// packState is the state of the placement loop for one top-level node
type packState int

const (
	stateFitting packState = iota
	stateSplitting
	stateForcedPlacement
	stateDone
)

func (s packState) String() string {
	switch s {
	case stateFitting:
		return "fitting"
	case stateSplitting:
		return "splitting"
	case stateForcedPlacement:
		return "forced-placement"
	case stateDone:
		return "done"
	}
	return fmt.Sprintf("packState(%d)", int(s))
}

// packer greedily fills pages for one column
type packer struct {
	opts   Options
	mctx   *measure.Context
	column string
	split  *splitter

	pages    []*Page
	current  []*content.Node
	warnings []Warning
}

func newPacker(opts Options, mctx *measure.Context, column string) *packer {
	p := &packer{
		opts:   opts,
		mctx:   mctx,
		column: column,
	}
	p.split = &splitter{opts: opts, mctx: mctx, warn: p.warn}
	return p
}

func (p *packer) run(nodes []*content.Node) (*Result, error) {
	for i, n := range nodes {
		if err := p.place(n); err != nil {
			return nil, fmt.Errorf("placing node %d <%s>: %w", i, tagOf(n), err)
		}
	}
	if len(p.current) > 0 {
		if err := p.push(); err != nil {
			return nil, err
		}
	}

	report, err := p.audit()
	if err != nil {
		return nil, err
	}
	if len(report) > 0 {
		if err := p.repair(report); err != nil {
			return nil, err
		}
		if report, err = p.audit(); err != nil {
			return nil, err
		}
		for _, o := range report {
			p.warnAt(WarnResidualOverflow, o.PageIndex,
				fmt.Sprintf("page measures %.1fpx, %.1fpx over budget", o.MeasuredHeight, o.OverflowAmount))
		}
	}

	return &Result{
		Pages:    p.pages,
		Report:   report,
		Warnings: p.warnings,
		Stats:    p.mctx.Cache().Stats(),
	}, nil
}

// place runs the fitting/splitting state machine for one top-level node
func (p *packer) place(n *content.Node) error {
	state := stateFitting
	remaining := n
	attempts := 0

	for state != stateDone {
		switch state {
		case stateFitting:
			ok, err := p.tryAppend(remaining)
			if err != nil {
				return err
			}
			if ok {
				state = stateDone
				continue
			}
			if len(p.current) > 0 {
				h, err := p.mctx.MeasurePage(p.current)
				if err != nil {
					return err
				}
				if IsValidFill(h, p.opts.MaxHeight, p.opts) {
					p.opts.logf("[%s] page %d full at %.1f%%, starting a new page", p.label(), len(p.pages)+1, 100*h/p.opts.MaxHeight)
					if err := p.push(); err != nil {
						return err
					}
					if ok, err = p.tryAppend(remaining); err != nil {
						return err
					}
					if ok {
						state = stateDone
						continue
					}
				}
			}
			state = stateSplitting

		case stateSplitting:
			if attempts >= p.opts.MaxSplitAttempts {
				p.warn(WarnNonConvergent, fmt.Sprintf("<%s> still overflows after %d split attempts", tagOf(remaining), attempts))
				state = stateForcedPlacement
				continue
			}
			attempts++

			res, err := p.split.split(remaining, pageFrame(p.current))
			if err != nil {
				return err
			}
			p.opts.logf("[%s] split <%s> (attempt %d): left=%t right=%t", p.label(), tagOf(remaining), attempts, res.Left != nil, res.Right != nil)

			switch {
			case res.Left != nil:
				p.current = append(p.current, res.Left)
				if err := p.push(); err != nil {
					return err
				}
			case len(p.current) > 0:
				if err := p.push(); err != nil {
					return err
				}
			default:
				// nothing fits even on an empty page
				head, rest := peel(remaining)
				if head == nil {
					state = stateForcedPlacement
					continue
				}
				p.warn(WarnForcedPlacement, fmt.Sprintf("leading child of <%s> placed on its own page despite overflow", tagOf(remaining)))
				p.current = []*content.Node{head}
				if err := p.push(); err != nil {
					return err
				}
				res.Right = rest
			}

			if res.Right == nil {
				state = stateDone
				continue
			}
			remaining = res.Right
			ok, err := p.tryAppend(remaining)
			if err != nil {
				return err
			}
			if ok {
				state = stateDone
			}

		case stateForcedPlacement:
			if len(p.current) > 0 {
				if err := p.push(); err != nil {
					return err
				}
			}
			p.warn(WarnForcedPlacement, fmt.Sprintf("<%s> placed on its own page despite overflow", tagOf(remaining)))
			p.current = []*content.Node{remaining}
			if err := p.push(); err != nil {
				return err
			}
			state = stateDone
		}
	}
	return nil
}

// peel divides a container whose leading child overflows an empty page into
// a clone holding only that child and a clone holding the rest, so the later
// siblings are not stuck on the overflowing page. The leading child is peeled
// in turn when it is a container itself. It returns nils when n has nothing
// after its leading child.
func peel(n *content.Node) (head, rest *content.Node) {
	if n.IsText() || n.Len() == 0 || !peelable(n.Kind()) {
		return nil, nil
	}
	kids := n.Children()
	first, tail := kids[0], kids[1:]
	if h, r := peel(first); h != nil {
		first = h
		tail = append([]*content.Node{r}, tail...)
	}
	if len(tail) == 0 {
		return nil, nil
	}
	return n.WithChildren(first), n.WithChildren(tail...)
}

func peelable(k content.Kind) bool {
	switch k {
	case content.KindParagraph, content.KindContainer, content.KindPreformatted,
		content.KindListItem, content.KindDefinitionTerm, content.KindDefinitionDescription,
		content.KindTableCell, content.KindUnorderedList, content.KindOrderedList,
		content.KindDefinitionList:
		return true
	}
	return false
}

// tryAppend adds n to the current page when the result stays within the limit
func (p *packer) tryAppend(n *content.Node) (bool, error) {
	candidate := make([]*content.Node, 0, len(p.current)+1)
	candidate = append(candidate, p.current...)
	candidate = append(candidate, n)
	h, err := p.mctx.MeasurePage(candidate)
	if err != nil {
		return false, err
	}
	if h > p.opts.limit() {
		return false, nil
	}
	p.current = candidate
	return true, nil
}

// push closes the current page
func (p *packer) push() error {
	page, err := p.newPage(p.current)
	if err != nil {
		return err
	}
	p.pages = append(p.pages, page)
	p.current = nil
	p.opts.logf("[%s] closed page %d: %.1fpx (%.1f%%)", p.label(), len(p.pages), page.Height, 100*page.Fill(p.opts.MaxHeight))
	return nil
}

func (p *packer) newPage(nodes []*content.Node) (*Page, error) {
	h, err := p.mctx.MeasurePage(nodes)
	if err != nil {
		return nil, err
	}
	return &Page{Nodes: nodes, Height: h}, nil
}

func (p *packer) audit() ([]Overflow, error) {
	report, err := Audit(p.mctx, p.pages, p.opts.MaxHeight)
	if err != nil {
		return nil, err
	}
	for i := range report {
		report[i].Column = p.column
	}
	return report, nil
}

// repair replaces every overflowing page with the pages force splitting it
// produces. A leading child that cannot be shrunk is emitted alone.
func (p *packer) repair(report []Overflow) error {
	flagged := make(map[int]bool, len(report))
	for _, o := range report {
		flagged[o.PageIndex] = true
	}

	var out []*Page
	for i, page := range p.pages {
		if !flagged[i] {
			out = append(out, page)
			continue
		}
		rest := page.Nodes
		for len(rest) > 0 {
			left, right, err := p.split.forceSplit(rest)
			if err != nil {
				return err
			}
			if len(left) == 0 {
				left, right = rest[:1], rest[1:]
				p.warnAt(WarnForceSplit, len(out), fmt.Sprintf("<%s> cannot be reduced below the page height", tagOf(left[0])))
			} else if len(right) > 0 {
				p.warnAt(WarnForceSplit, len(out), fmt.Sprintf("overflowing page %d divided", i+1))
			}
			np, err := p.newPage(left)
			if err != nil {
				return err
			}
			out = append(out, np)
			rest = right
		}
	}
	p.opts.logf("[%s] force split: %d pages -> %d pages", p.label(), len(p.pages), len(out))
	p.pages = out
	return nil
}

func (p *packer) warn(kind WarningKind, msg string) {
	p.warnAt(kind, len(p.pages), msg)
}

func (p *packer) warnAt(kind WarningKind, page int, msg string) {
	w := Warning{Kind: kind, Column: p.column, Page: page, Message: msg}
	p.warnings = append(p.warnings, w)
	p.opts.logf("[%s] warning: %s", p.label(), w)
}

func (p *packer) label() string {
	if p.column == "" {
		return "pagination"
	}
	return p.column
}
