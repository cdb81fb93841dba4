package pagination

import (
	"errors"
	"strings"
	"testing"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

func TestSplitTextToFit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  int
	}{
		{"empty", "", 5, 0},
		{"nothing fits", "hello", 0, 0},
		{"everything fits", "hello", 10, 5},
		{"exact", "hello world", 7, 7},
		{"combining marks stay with base", "e\u0301e\u0301e\u0301", 4, 3},
		{"multibyte", "h\u00e9llo", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitTextToFit(tt.text, func(prefix string) (bool, error) {
				return len(prefix) <= tt.limit, nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("SplitTextToFit(%q, %d) = %d, want %d", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

func TestSplitTextToFitBoundary(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	for limit := 0; limit <= len(text)+1; limit++ {
		fits := func(prefix string) (bool, error) {
			return len(prefix) <= limit, nil
		}
		k, err := SplitTextToFit(text, fits)
		if err != nil {
			t.Fatal(err)
		}
		if ok, _ := fits(text[:k]); !ok {
			t.Errorf("limit %d: prefix of %d does not fit", limit, k)
		}
		if k < len(text) {
			if ok, _ := fits(text[:k+1]); ok {
				t.Errorf("limit %d: prefix of %d also fits", limit, k+1)
			}
		}
	}
}

func TestSplitTextToFitPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := SplitTextToFit("abc", func(string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestSplitTableKeepsFooterWithLastPart(t *testing.T) {
	s, _ := newTestSplitter(testOptions())
	table := el("table", 0,
		el("thead", 0, el("tr", 100, el("th", 0, txt("h;")))),
		el("tbody", 0, rows(10, 100)...),
		el("tfoot", 0, el("tr", 50, el("td", 0, txt("f;")))),
	)
	res, err := s.split(table, pageFrame(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left == nil || res.Right == nil {
		t.Fatalf("expected both halves, got %+v", res)
	}
	if countTag(res.Left, "tfoot") != 0 {
		t.Errorf("left part carries the footer")
	}
	if got := countTag(res.Left, "tr") - 1; got != 7 {
		t.Errorf("left part holds %d rows, want 7", got)
	}
	last := res.Right.Child(res.Right.Len() - 1)
	if last.Tag() != "tfoot" {
		t.Errorf("right part ends with <%s>, want <tfoot>", last.Tag())
	}
	if res.Right.Child(0).Tag() != "thead" {
		t.Errorf("right part does not repeat the header")
	}
}

func TestSplitTableWithoutBodyIsAtomic(t *testing.T) {
	s, warnings := newTestSplitter(testOptions())
	table := el("table", 0, rows(50, 40)...)
	res, err := s.split(table, pageFrame(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left != nil || res.Right != table {
		t.Errorf("table without tbody was split: %+v", res)
	}
	if !hasWarning(*warnings, WarnStructural) {
		t.Errorf("warnings = %v", *warnings)
	}
}

func TestSplitDefinitionList(t *testing.T) {
	s, _ := newTestSplitter(testOptions())
	var kids []*content.Node
	for i := 0; i < 5; i++ {
		kids = append(kids, el("dt", 100, txt("t;")), el("dd", 100, txt("d;")))
	}
	dl := el("dl", 0, kids...)
	res, err := s.split(dl, pageFrame(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left.Len() != 8 || res.Right.Len() != 2 {
		t.Errorf("split %d/%d, want 8/2", res.Left.Len(), res.Right.Len())
	}
	if res.Left.Tag() != "dl" || res.Right.Tag() != "dl" {
		t.Errorf("halves are not definition lists")
	}
}

func TestSplitUsesPageContext(t *testing.T) {
	s, _ := newTestSplitter(testOptions())
	list := el("ul", 0, items("li", 10, 100, "i")...)
	res, err := s.split(list, pageFrame([]*content.Node{el("p", 500)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left.Len() != 3 {
		t.Errorf("left holds %d items after 500px of context, want 3", res.Left.Len())
	}
}

func TestSplitListWithNothingFitting(t *testing.T) {
	s, _ := newTestSplitter(testOptions())
	list := el("ul", 0, items("li", 3, 100, "i")...)
	res, err := s.split(list, pageFrame([]*content.Node{el("p", 790)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left != nil {
		t.Errorf("left = %s, want absent", res.Left.Markup())
	}
	if res.Right == nil || res.Right.Len() != 3 {
		t.Errorf("right does not hold the whole list")
	}
}

func TestSplitBlockMovesAtomicChildWhole(t *testing.T) {
	s, _ := newTestSplitter(testOptions())
	div := el("div", 0, el("p", 500, txt("a;")), el("img", 400), el("p", 100, txt("b;")))
	res, err := s.split(div, pageFrame(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Left.Len() != 1 || res.Right.Len() != 2 {
		t.Fatalf("split %d/%d, want 1/2", res.Left.Len(), res.Right.Len())
	}
	if res.Right.Child(0).Tag() != "img" {
		t.Errorf("right part starts with <%s>", res.Right.Child(0).Tag())
	}
}

func TestSplitterHandlesEveryKind(t *testing.T) {
	samples := map[content.Kind]*content.Node{
		content.KindText:                  txt(strings.Repeat("t", 900)),
		content.KindParagraph:             el("p", 0, txt(strings.Repeat("p", 900))),
		content.KindHeading:               el("h1", 900, txt("h")),
		content.KindContainer:             el("div", 0, items("p", 9, 100, "d")...),
		content.KindPreformatted:          el("pre", 0, txt(strings.Repeat("c", 900))),
		content.KindUnorderedList:         el("ul", 0, items("li", 9, 100, "u")...),
		content.KindOrderedList:           el("ol", 0, items("li", 9, 100, "o")...),
		content.KindListItem:              el("li", 0, items("p", 9, 100, "l")...),
		content.KindTable:                 el("table", 0, el("tbody", 0, rows(9, 100)...)),
		content.KindTableHead:             el("thead", 0, rows(9, 100)...),
		content.KindTableBody:             el("tbody", 0, rows(9, 100)...),
		content.KindTableFoot:             el("tfoot", 0, rows(9, 100)...),
		content.KindTableRow:              el("tr", 900),
		content.KindTableCell:             el("td", 0, txt(strings.Repeat("c", 900))),
		content.KindDefinitionList:        el("dl", 0, items("dt", 9, 100, "t")...),
		content.KindDefinitionTerm:        el("dt", 0, txt(strings.Repeat("t", 900))),
		content.KindDefinitionDescription: el("dd", 0, txt(strings.Repeat("d", 900))),
		content.KindInline:                el("span", 900),
		content.KindOpaque:                el("img", 900),
	}
	for _, kind := range content.Kinds {
		n, ok := samples[kind]
		if !ok {
			t.Errorf("no sample for kind %v", kind)
			continue
		}
		if n.Kind() != kind {
			t.Fatalf("sample for %v has kind %v", kind, n.Kind())
		}
		t.Run(kind.String(), func(t *testing.T) {
			s, _ := newTestSplitter(testOptions())
			res, err := s.split(n, pageFrame(nil))
			if err != nil {
				t.Fatal(err)
			}
			if res.Left == nil && res.Right == nil {
				t.Fatalf("both halves absent")
			}
			if splittable(kind) {
				if res.Left == nil || res.Right == nil {
					t.Errorf("divisible %v was not divided", kind)
				}
				got := content.TextContent(res.Left) + content.TextContent(res.Right)
				if got != content.TextContent(n) {
					t.Errorf("content not conserved")
				}
				checkSplitStructure(t, n, res)
			} else if res.Right != n {
				t.Errorf("atomic %v was divided", kind)
			}
		})
	}
}

func TestForceSplit(t *testing.T) {
	mctx := measure.NewContext(fakeOracle(), 595, 0)
	tests := []struct {
		name      string
		nodes     []*content.Node
		wantLeft  int
		wantRight int
	}{
		{
			name:      "fits entirely",
			nodes:     []*content.Node{el("p", 300), el("p", 300)},
			wantLeft:  2,
			wantRight: 0,
		},
		{
			name:      "text paragraph partially recovered",
			nodes:     []*content.Node{el("p", 700), el("p", 0, txt(strings.Repeat("a", 300))), el("p", 10)},
			wantLeft:  2,
			wantRight: 2,
		},
		{
			name:      "list moved whole",
			nodes:     []*content.Node{el("p", 700), el("ul", 0, items("li", 5, 50, "i")...), el("p", 10)},
			wantLeft:  1,
			wantRight: 2,
		},
		{
			name:      "oversized first child",
			nodes:     []*content.Node{el("img", 900), el("p", 10)},
			wantLeft:  0,
			wantRight: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right, err := ForceSplit(mctx, tt.nodes, testOptions())
			if err != nil {
				t.Fatal(err)
			}
			if len(left) != tt.wantLeft || len(right) != tt.wantRight {
				t.Fatalf("split %d/%d, want %d/%d", len(left), len(right), tt.wantLeft, tt.wantRight)
			}
			if nodesText(left)+nodesText(right) != nodesText(tt.nodes) {
				t.Errorf("content not conserved")
			}
		})
	}
}

func TestAudit(t *testing.T) {
	mctx := measure.NewContext(fakeOracle(), 595, 0)
	pages := []*Page{
		{Nodes: []*content.Node{el("p", 820)}},
		{Nodes: []*content.Node{el("p", 830)}},
		{Placeholder: true},
	}
	report, err := Audit(mctx, pages, 820)
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != 1 {
		t.Fatalf("got %d reports, want 1", len(report))
	}
	if report[0].PageIndex != 1 || report[0].OverflowAmount != 10 {
		t.Errorf("report = %+v", report[0])
	}
	if pages[1].Height != 0 {
		t.Errorf("audit modified a page")
	}
}

func TestIsValidFill(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		height float64
		want   bool
	}{
		{400, false},
		{786, false},
		{788, true},
		{820, true},
		{828, true},
		{830, false},
	}
	for _, tt := range tests {
		if got := IsValidFill(tt.height, 820, opts); got != tt.want {
			t.Errorf("IsValidFill(%v) = %t, want %t", tt.height, got, tt.want)
		}
	}
	if IsValidFill(10, 0, opts) {
		t.Errorf("zero max height accepted")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero height", func(o *Options) { o.MaxHeight = 0 }},
		{"negative width", func(o *Options) { o.Width = -1 }},
		{"negative padding", func(o *Options) { o.Padding = -1 }},
		{"buffer too large", func(o *Options) { o.SafetyBuffer = o.MaxHeight }},
		{"zero min usage", func(o *Options) { o.MinUsagePercent = 0 }},
		{"min above max", func(o *Options) { o.MinUsagePercent, o.MaxUsagePercent = 1.0, 0.9 }},
		{"no attempts", func(o *Options) { o.MaxSplitAttempts = 0 }},
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if err := opts.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSplitPartsRebuildOriginal(t *testing.T) {
	var dlKids []*content.Node
	for i := 0; i < 5; i++ {
		dlKids = append(dlKids, el("dt", 100, txt("t;")), el("dd", 100, txt("d;")))
	}
	tests := []struct {
		name string
		node *content.Node
	}{
		{"list", el("ul", 0, items("li", 20, 55, "i")...)},
		{"table with header and footer", el("table", 0,
			el("thead", 0, el("tr", 100, el("th", 0, txt("h;")))),
			el("tbody", 0, rows(10, 100)...),
			el("tfoot", 0, el("tr", 50, el("td", 0, txt("f;")))),
		)},
		{"table with two body sections", el("table", 0,
			el("caption", 20, txt("cap;")),
			el("thead", 0, el("tr", 100, el("th", 0, txt("h;")))),
			el("tbody", 0, rows(5, 100)...),
			content.NewElement("tbody", []content.Attr{{Key: "class", Val: "second"}}, rows(5, 100)...),
		)},
		{"definition list", el("dl", 0, dlKids...)},
		{"nested block", el("div", 0,
			el("h2", 100, txt("Experience;")),
			el("ul", 0, items("li", 10, 100, "job")...),
		)},
		{"paragraph", el("p", 0, txt(strings.Repeat("abcdefghij", 100)))},
		{"mixed block", el("div", 0, txt(strings.Repeat("x", 500)), el("p", 400), el("p", 100, txt("b;")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSplitter(testOptions())
			res, err := s.split(tt.node, pageFrame(nil))
			if err != nil {
				t.Fatal(err)
			}
			if res.Left == nil || res.Right == nil {
				t.Fatalf("expected both halves, got left=%s right=%s", markupOf(res.Left), markupOf(res.Right))
			}
			checkSplitStructure(t, tt.node, res)
		})
	}
}

func TestSplitTableKeepsBodySections(t *testing.T) {
	s, _ := newTestSplitter(testOptions())
	second := content.NewElement("tbody", []content.Attr{{Key: "class", Val: "second"}}, rows(5, 100)...)
	table := el("table", 0,
		el("caption", 20, txt("cap;")),
		el("thead", 0, el("tr", 100, el("th", 0, txt("h;")))),
		el("tbody", 0, rows(5, 100)...),
		second,
	)
	res, err := s.split(table, pageFrame(nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := countTag(res.Left, "tbody"); got != 2 {
		t.Errorf("left part holds %d body sections, want 2", got)
	}
	if got := countTag(res.Right, "tbody"); got != 1 {
		t.Errorf("right part holds %d body sections, want 1", got)
	}
	last := res.Left.Child(res.Left.Len() - 1)
	if !last.HasAttr("class", "second") || last.Len() != 1 {
		t.Errorf("left part ends with %s, want one row of the second section", last.Markup())
	}
	if first := res.Right.Child(2); !first.HasAttr("class", "second") || first.Len() != 4 {
		t.Errorf("right part continues with %s, want four rows of the second section", first.Markup())
	}
}

func TestReassemblesDetectsMergedSections(t *testing.T) {
	a, b := rows(2, 10), rows(2, 10)
	original := []*content.Node{el("table", 0, el("tbody", 0, a...), el("tbody", 0, b...))}
	merged := []*content.Node{
		el("table", 0, el("tbody", 0, a[0], a[1], b[0])),
		el("table", 0, el("tbody", 0, b[1])),
	}
	if reassembles(original, merged) {
		t.Error("merged body sections reported as a faithful split")
	}
	kept := []*content.Node{
		el("table", 0, el("tbody", 0, a...), el("tbody", 0, b[0])),
		el("table", 0, el("tbody", 0, b[1])),
	}
	if !reassembles(original, kept) {
		t.Error("faithful split rejected")
	}
	if reassembles(original, kept[:1]) {
		t.Error("missing row not detected")
	}
}

func TestForceSplitBreaksTallHeading(t *testing.T) {
	mctx := measure.NewContext(fakeOracle(), 595, 0)
	heading := el("h1", 0, txt(strings.Repeat("h", 1000)))
	left, right, err := ForceSplit(mctx, []*content.Node{heading}, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || len(right) != 1 {
		t.Fatalf("split %d/%d, want 1/1", len(left), len(right))
	}
	if left[0].Tag() != "h1" || right[0].Tag() != "h1" {
		t.Errorf("parts are <%s> and <%s>", left[0].Tag(), right[0].Tag())
	}
	if !reassembles([]*content.Node{heading}, append(left, right...)) {
		t.Errorf("heading not rebuilt from its parts")
	}
}
