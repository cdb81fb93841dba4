package pagination

import (
	"errors"
	"strings"
	"testing"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

func TestShortParagraphsShareOnePage(t *testing.T) {
	nodes := items("p", 5, 82, "p")
	res := paginate(t, testOptions(), nodes...)

	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}
	page := res.Pages[0]
	if len(page.Nodes) != 5 {
		t.Fatalf("got %d nodes on the page, want 5", len(page.Nodes))
	}
	for i, n := range page.Nodes {
		if n != nodes[i] {
			t.Errorf("node %d was modified", i)
		}
	}
	if page.Height != 410 {
		t.Errorf("page height = %v, want 410", page.Height)
	}
	if len(res.Warnings) != 0 || res.HasOverflow() {
		t.Errorf("unexpected diagnostics: %v %v", res.Warnings, res.Report)
	}
}

func TestListSplitsBetweenItems(t *testing.T) {
	list := el("ul", 0, items("li", 20, 55, "i")...)
	res := paginate(t, testOptions(), list)

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	first, second := res.Pages[0].Nodes, res.Pages[1].Nodes
	if len(first) != 1 || first[0].Tag() != "ul" || first[0].Len() != 14 {
		t.Fatalf("page 1 = %s, want a list of 14 items", content.MarkupAll(first))
	}
	if len(second) != 1 || second[0].Tag() != "ul" || second[0].Len() != 6 {
		t.Fatalf("page 2 = %s, want a list of 6 items", content.MarkupAll(second))
	}
	if got := content.TextContent(second[0].Child(0)); got != "i15;" {
		t.Errorf("page 2 starts with %q, want item 15", got)
	}
	if pageText(res.Pages) != content.TextContent(list) {
		t.Errorf("list content not conserved")
	}
	checkPageStructure(t, []*content.Node{list}, res.Pages)
}

func TestTableRepeatsHeader(t *testing.T) {
	opts := testOptions()
	opts.SafetyBuffer = 0
	opts.MaxUsagePercent = 1.0

	table := el("table", 0,
		el("thead", 0, el("tr", 100, el("th", 0, txt("head;")))),
		el("tbody", 0, rows(100, 24)...),
	)
	res := paginate(t, opts, table)

	if len(res.Pages) < 2 {
		t.Fatalf("got %d pages, want at least 2", len(res.Pages))
	}
	first := res.Pages[0]
	if first.Height != 820 {
		t.Errorf("page 1 height = %v, want 820", first.Height)
	}
	if got := countTag(first.Nodes[0], "tr") - 1; got != 30 {
		t.Errorf("page 1 holds %d body rows, want 30", got)
	}

	total := 0
	var body strings.Builder
	for i, p := range res.Pages {
		if len(p.Nodes) != 1 || p.Nodes[0].Tag() != "table" {
			t.Fatalf("page %d does not hold a single table", i+1)
		}
		tbl := p.Nodes[0]
		if tbl.Child(0).Tag() != "thead" {
			t.Errorf("page %d does not start with the header", i+1)
		}
		for _, c := range tbl.Children() {
			if c.Tag() == "tbody" {
				total += c.Len()
				body.WriteString(content.TextContent(c))
			}
		}
	}
	if total != 100 {
		t.Errorf("pages hold %d body rows, want 100", total)
	}
	if body.String() != content.TextContent(table.Child(1)) {
		t.Errorf("row order not preserved")
	}
	checkPageStructure(t, []*content.Node{table}, res.Pages)
	if res.HasOverflow() {
		t.Errorf("unexpected overflow: %v", res.Report)
	}
}

func TestOversizedImageGetsItsOwnFlaggedPage(t *testing.T) {
	img := el("img", 1000)
	res := paginate(t, testOptions(), img)

	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}
	if len(res.Pages[0].Nodes) != 1 || res.Pages[0].Nodes[0] != img {
		t.Fatalf("page does not hold the image alone")
	}
	if len(res.Report) != 1 {
		t.Fatalf("got %d overflow reports, want 1", len(res.Report))
	}
	if o := res.Report[0]; o.PageIndex != 0 || o.MeasuredHeight != 1000 || o.OverflowAmount != 180 {
		t.Errorf("report = %+v", o)
	}
	if !hasWarning(res.Warnings, WarnForcedPlacement) || !hasWarning(res.Warnings, WarnResidualOverflow) {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestOversizedImageBetweenParagraphs(t *testing.T) {
	nodes := []*content.Node{el("p", 100, txt("a")), el("img", 900), el("p", 100, txt("b"))}
	res := paginate(t, testOptions(), nodes...)

	if len(res.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(res.Pages))
	}
	if res.Pages[1].Nodes[0].Tag() != "img" || len(res.Pages[1].Nodes) != 1 {
		t.Errorf("image not alone on page 2")
	}
	if len(res.Report) != 1 || res.Report[0].PageIndex != 1 {
		t.Errorf("report = %v", res.Report)
	}
}

func TestLongParagraphSplitsAtCharacters(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)
	res := paginate(t, testOptions(), el("p", 0, txt(text)))

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	if res.Pages[0].Height != 819 {
		t.Errorf("page 1 height = %v, want 819", res.Pages[0].Height)
	}
	for _, p := range res.Pages {
		if p.Nodes[0].Tag() != "p" {
			t.Errorf("split part is <%s>, want <p>", p.Nodes[0].Tag())
		}
	}
	if pageText(res.Pages) != text {
		t.Errorf("text not conserved")
	}
}

func TestUnderfilledPageAbsorbsPartOfNextNode(t *testing.T) {
	res := paginate(t, testOptions(),
		el("p", 400, txt("a")),
		el("p", 0, txt(strings.Repeat("x", 600))),
	)

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	if len(res.Pages[0].Nodes) != 2 {
		t.Fatalf("page 1 holds %d nodes, want the first paragraph and part of the second", len(res.Pages[0].Nodes))
	}
	if fill := res.Pages[0].Fill(820); fill < 0.96 {
		t.Errorf("page 1 closed at %.3f", fill)
	}
}

func TestValidlyFilledPageClosesWithoutSplitting(t *testing.T) {
	next := el("p", 0, txt(strings.Repeat("y", 100)))
	res := paginate(t, testOptions(), el("p", 790, txt("a")), next)

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	if len(res.Pages[0].Nodes) != 1 || len(res.Pages[1].Nodes) != 1 {
		t.Fatalf("unexpected page layout")
	}
	if res.Pages[1].Nodes[0] != next {
		t.Errorf("second paragraph was split although page 1 was full")
	}
}

func TestSplitAttemptBoundForcesPlacement(t *testing.T) {
	opts := testOptions()
	opts.MaxSplitAttempts = 2
	text := strings.Repeat("0123456789", 500)
	res := paginate(t, opts, el("p", 0, txt(text)))

	for _, kind := range []WarningKind{WarnNonConvergent, WarnForcedPlacement, WarnForceSplit} {
		if !hasWarning(res.Warnings, kind) {
			t.Errorf("missing %s warning in %v", kind, res.Warnings)
		}
	}
	if res.HasOverflow() {
		t.Errorf("force split left overflow: %v", res.Report)
	}
	if len(res.Pages) != 7 {
		t.Errorf("got %d pages, want 7", len(res.Pages))
	}
	if pageText(res.Pages) != text {
		t.Errorf("text not conserved")
	}
}

func TestNestedContainerSplitsInnerList(t *testing.T) {
	div := el("div", 0,
		el("h2", 100, txt("Experience;")),
		el("ul", 0, items("li", 10, 100, "job")...),
	)
	res := paginate(t, testOptions(), div)

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	left := res.Pages[0].Nodes[0]
	if left.Tag() != "div" || left.Len() != 2 || left.Child(1).Len() != 7 {
		t.Errorf("page 1 = %s", left.Markup())
	}
	right := res.Pages[1].Nodes[0]
	if right.Tag() != "div" || right.Len() != 1 || right.Child(0).Len() != 3 {
		t.Errorf("page 2 = %s", right.Markup())
	}
	if pageText(res.Pages) != content.TextContent(div) {
		t.Errorf("content not conserved")
	}
	checkPageStructure(t, []*content.Node{div}, res.Pages)
}

func TestContentConservationAndHeightBound(t *testing.T) {
	nodes := []*content.Node{
		el("h1", 60, txt("Jane Doe;")),
		el("p", 0, txt(strings.Repeat("summary ", 50))),
		el("ul", 0, items("li", 12, 40, "skill")...),
		el("dl", 0, items("dt", 9, 45, "term")...),
		el("div", 0,
			el("h3", 30, txt("Projects;")),
			el("p", 0, txt(strings.Repeat("detail ", 80))),
			el("ol", 0, items("li", 6, 70, "project")...),
		),
		el("pre", 0, txt(strings.Repeat("code\n", 90))),
	}
	res := paginate(t, testOptions(), nodes...)

	if got, want := pageText(res.Pages), nodesText(nodes); got != want {
		t.Errorf("content not conserved:\n got %q\nwant %q", got, want)
	}
	checkPageStructure(t, nodes, res.Pages)
	for i, p := range res.Pages {
		if p.Height > 820 {
			t.Errorf("page %d measures %v", i+1, p.Height)
		}
	}
	if res.HasOverflow() {
		t.Errorf("report = %v", res.Report)
	}
}

func TestPaginationIsDeterministic(t *testing.T) {
	build := func() []*content.Node {
		return []*content.Node{
			el("p", 0, txt(strings.Repeat("lorem ", 100))),
			el("ul", 0, items("li", 30, 35, "x")...),
			el("p", 300, txt("tail")),
		}
	}
	a := paginate(t, testOptions(), build()...)
	b := paginate(t, testOptions(), build()...)

	if len(a.Pages) != len(b.Pages) {
		t.Fatalf("page counts differ: %d vs %d", len(a.Pages), len(b.Pages))
	}
	for i := range a.Pages {
		if a.Pages[i].Markup() != b.Pages[i].Markup() {
			t.Errorf("page %d differs", i+1)
		}
	}
}

func TestMeasurementsAreCached(t *testing.T) {
	calls := 0
	oracle := measure.OracleFunc(func(n *content.Node, width, padding float64) (float64, error) {
		calls++
		return fakeHeight(n), nil
	})
	e := NewEngine(oracle)
	e.SetOptions(testOptions())
	res, err := e.Paginate(items("p", 5, 300, "p"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.OracleCalls != calls {
		t.Errorf("stats report %d oracle calls, oracle saw %d", res.Stats.OracleCalls, calls)
	}
	if res.Stats.Hits == 0 {
		t.Errorf("expected cache hits, got %+v", res.Stats)
	}
}

func TestOracleErrorAbortsPagination(t *testing.T) {
	boom := errors.New("renderer crashed")
	e := NewEngine(measure.OracleFunc(func(*content.Node, float64, float64) (float64, error) {
		return 0, boom
	}))
	_, err := e.Paginate([]*content.Node{el("p", 10)})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestEngineWithoutOracle(t *testing.T) {
	_, err := NewEngine(nil).Paginate(nil)
	if !errors.Is(err, ErrNoOracle) {
		t.Fatalf("err = %v, want ErrNoOracle", err)
	}
}

func TestEmptyInputYieldsNoPages(t *testing.T) {
	res := paginate(t, testOptions())
	if len(res.Pages) != 0 {
		t.Fatalf("got %d pages, want 0", len(res.Pages))
	}
}

func TestDebugLogging(t *testing.T) {
	var buf strings.Builder
	opts := testOptions()
	opts.Debug = true
	opts.LogOutput = &buf
	paginate(t, opts, el("ul", 0, items("li", 20, 55, "i")...))

	if !strings.Contains(buf.String(), "closed page 2") {
		t.Errorf("log output missing page close lines:\n%s", buf.String())
	}
}

func TestOversizedLeadingChildDoesNotHoldSiblings(t *testing.T) {
	kids := []*content.Node{el("img", 900)}
	for i := 0; i < 10; i++ {
		kids = append(kids, el("p", 0, txt(strings.Repeat("x", 100))))
	}
	div := el("div", 0, kids...)
	res := paginate(t, testOptions(), div)

	if len(res.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(res.Pages))
	}
	first := res.Pages[0].Nodes
	if len(first) != 1 || first[0].Len() != 1 || first[0].Child(0).Tag() != "img" {
		t.Fatalf("page 1 = %s, want the image alone in its container", content.MarkupAll(first))
	}
	if len(res.Report) != 1 || res.Report[0].PageIndex != 0 || res.Report[0].MeasuredHeight != 900 {
		t.Errorf("report = %v, want only the image page", res.Report)
	}
	for i, p := range res.Pages[1:] {
		if p.Height > 819 {
			t.Errorf("page %d measures %v", i+2, p.Height)
		}
	}
	if !hasWarning(res.Warnings, WarnForcedPlacement) {
		t.Errorf("warnings = %v", res.Warnings)
	}
	checkPageStructure(t, []*content.Node{div}, res.Pages)
}

func TestTableBodySectionsSurvivePagination(t *testing.T) {
	table := el("table", 0, el("tbody", 0, rows(20, 30)...), el("tbody", 0, rows(20, 30)...))
	res := paginate(t, testOptions(), table)

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	for i, want := range []struct{ bodies, rows int }{{2, 27}, {1, 13}} {
		tbl := res.Pages[i].Nodes[0]
		if got := countTag(tbl, "tbody"); got != want.bodies {
			t.Errorf("page %d holds %d body sections, want %d", i+1, got, want.bodies)
		}
		if got := countTag(tbl, "tr"); got != want.rows {
			t.Errorf("page %d holds %d rows, want %d", i+1, got, want.rows)
		}
	}
	checkPageStructure(t, []*content.Node{table}, res.Pages)
}

func TestTallHeadingIsForceSplit(t *testing.T) {
	heading := el("h1", 0, txt(strings.Repeat("h", 1000)))
	res := paginate(t, testOptions(), heading)

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	if res.HasOverflow() {
		t.Errorf("report = %v", res.Report)
	}
	if !hasWarning(res.Warnings, WarnForceSplit) {
		t.Errorf("warnings = %v", res.Warnings)
	}
	checkPageStructure(t, []*content.Node{heading}, res.Pages)
}
