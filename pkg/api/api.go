package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gompdf/pagefit/internal/browser"
	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/layout"
	"github.com/gompdf/pagefit/internal/measure"
	"github.com/gompdf/pagefit/internal/pagination"
	"github.com/gompdf/pagefit/internal/parser/html"
	"github.com/gompdf/pagefit/internal/parser/markdown"
	"github.com/gompdf/pagefit/internal/render/pdf"
	"github.com/gompdf/pagefit/internal/res"
)

type (
	// Node is one element or text run of a content tree
	Node = content.Node
	// Oracle reports the rendered height of a content subtree
	Oracle = measure.Oracle
	// OracleFunc adapts a function to Oracle
	OracleFunc = measure.OracleFunc
	// Stats counts measurement cache traffic
	Stats = measure.Stats
	// Warning is a non-fatal pagination diagnostic
	Warning = pagination.Warning
	// Overflow is one entry of the overflow audit
	Overflow = pagination.Overflow
)

var (
	ErrInvalidConfig = pagination.ErrInvalidConfig
	ErrNoOracle      = pagination.ErrNoOracle
	ErrNoColumns     = pagination.ErrNoColumns
	ErrClosed        = browser.ErrClosed
)

// Paginator is the main API for splitting content into height-bounded pages
type Paginator struct {
	options Options
}

// New creates a new paginator with default options
func New() *Paginator {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new paginator with the specified options
func NewWithOptions(options Options) *Paginator {
	return &Paginator{options: options}
}

// Options returns the paginator's options
func (p *Paginator) Options() Options {
	return p.options
}

// WithOptions returns a new paginator with the specified options
func (p *Paginator) WithOptions(options Options) *Paginator {
	return NewWithOptions(options)
}

// WithOption returns a new paginator with the specified option set
func (p *Paginator) WithOption(option Option) *Paginator {
	newOptions := p.options
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// Page is one output page. Two-column pages hold a single node, the
// two-column container with both column segments.
type Page struct {
	Number int
	Nodes  []*content.Node
	Height float64
	Fill   float64
	// Left and Right are the column segments of a two-column page
	Left  *pagination.Page
	Right *pagination.Page
}

// Markup serializes the page content
func (pg *Page) Markup() string {
	return content.MarkupAll(pg.Nodes)
}

// Result is the output of one pagination run
type Result struct {
	Pages     []*Page
	TwoColumn bool
	Report    []Overflow
	Warnings  []Warning
	Stats     Stats

	// Title and Styles come from the source document
	Title  string
	Styles []string

	columns    *pagination.Layout
	leftWidth  float64
	rightWidth float64
	loader     *res.Loader
}

// HasOverflow reports whether any page still exceeds the height budget
func (r *Result) HasOverflow() bool {
	return len(r.Report) > 0
}

// Markup returns the serialized content of every page
func (r *Result) Markup() []string {
	out := make([]string, len(r.Pages))
	for i, pg := range r.Pages {
		out[i] = pg.Markup()
	}
	return out
}

// Split paginates an HTML document or fragment
func (p *Paginator) Split(markup string) (*Result, error) {
	return p.splitHTML(markup, p.newLoader(""))
}

// SplitMarkdown paginates a Markdown document
func (p *Paginator) SplitMarkdown(src string) (*Result, error) {
	nodes, err := markdown.NewParser().ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Markdown: %w", err)
	}
	return p.split(nodes, nil, "", p.newLoader(""))
}

// SplitNodes paginates a parsed top-level node sequence
func (p *Paginator) SplitNodes(nodes []*content.Node) (*Result, error) {
	return p.split(nodes, nil, "", p.newLoader(""))
}

// SplitFile paginates an HTML or Markdown file
func (p *Paginator) SplitFile(path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return p.splitResource(abs)
}

// SplitURL paginates a document fetched from an http(s) or data URL
func (p *Paginator) SplitURL(url string) (*Result, error) {
	return p.splitResource(url)
}

func (p *Paginator) splitResource(location string) (*Result, error) {
	loader := p.newLoader(location)
	resource, err := loader.LoadDocument(location)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if resource.Type == res.ResourceTypeMarkdown {
		nodes, err := markdown.NewParser().Parse(resource.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Markdown: %w", err)
		}
		return p.split(nodes, nil, "", loader)
	}
	return p.splitHTML(resource.GetString(), loader)
}

func (p *Paginator) splitHTML(markup string, loader *res.Loader) (*Result, error) {
	doc, err := html.NewParser().ParseString(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	styles := p.collectStylesheets(doc, loader)
	return p.split(doc.Nodes(), styles, doc.Title, loader)
}

// collectStylesheets returns the linked and inline stylesheets of a
// document, linked ones first
func (p *Paginator) collectStylesheets(doc *html.Document, loader *res.Loader) []string {
	var styles []string
	for _, href := range doc.Links {
		resrc, err := loader.LoadCSS(href)
		if err != nil {
			p.logf("Failed to load external stylesheet %s: %v", href, err)
			continue
		}
		p.logf("Loaded external stylesheet: %s", href)
		styles = append(styles, resrc.GetString())
	}
	return append(styles, doc.Styles...)
}

func (p *Paginator) newLoader(base string) *res.Loader {
	loader := res.NewLoader(base)
	for _, path := range p.options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return loader
}

func (p *Paginator) split(nodes []*content.Node, styles []string, title string, loader *res.Loader) (*Result, error) {
	if err := p.options.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Title:  title,
		Styles: append(append([]string(nil), p.options.Stylesheets...), styles...),
		loader: loader,
	}

	oracle, closeOracle, err := p.newOracle(styles)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout oracle: %w", err)
	}
	defer closeOracle()

	engine := pagination.NewEngine(oracle)
	engine.SetOptions(p.options.pagination())

	cols, err := pagination.DetectColumns(nodes)
	switch {
	case errors.Is(err, ErrNoColumns):
		p.logf("Two-column container without columns, paginating as a single column")
		result.Warnings = append(result.Warnings, Warning{
			Kind:    pagination.WarnStructural,
			Message: err.Error(),
		})
	case err != nil:
		return nil, err
	case cols != nil:
		return p.splitColumns(engine, nodes, cols, result)
	}

	paged, err := engine.Paginate(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate: %w", err)
	}
	for i, pg := range paged.Pages {
		result.Pages = append(result.Pages, &Page{
			Number: i + 1,
			Nodes:  pg.Nodes,
			Height: pg.Height,
			Fill:   pg.Fill(p.options.MaxHeight),
		})
	}
	result.Report = paged.Report
	result.Warnings = append(result.Warnings, paged.Warnings...)
	result.Stats = paged.Stats

	p.logf("Paginated %d nodes into %d pages (%d oracle calls, %d cache hits)",
		len(nodes), len(result.Pages), result.Stats.OracleCalls, result.Stats.Hits)
	return result, nil
}

func (p *Paginator) splitColumns(engine *pagination.Engine, nodes []*content.Node, cols *pagination.Layout, result *Result) (*Result, error) {
	leftWidth, rightWidth := pagination.ColumnWidths(cols, p.options.PageWidth,
		p.options.ColumnGap, p.options.LeftColumnWidth, p.options.RightColumnWidth)
	p.logf("Two-column layout: left=%.0fpx, right=%.0fpx", leftWidth, rightWidth)

	if dropped := outside(nodes, cols.Container); dropped > 0 {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    pagination.WarnStructural,
			Message: fmt.Sprintf("%d nodes outside the two-column container are not paginated", dropped),
		})
	}
	if extra := extraChildren(cols); extra > 0 {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    pagination.WarnStructural,
			Message: fmt.Sprintf("%d children of the two-column container besides its columns are dropped", extra),
		})
	}

	paged, err := engine.PaginateTwoColumn(
		pagination.Column{Name: pagination.ColumnLeft, Shell: cols.Left, Nodes: cols.Left.Children(), Width: leftWidth},
		pagination.Column{Name: pagination.ColumnRight, Shell: cols.Right, Nodes: cols.Right.Children(), Width: rightWidth},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate columns: %w", err)
	}

	result.TwoColumn = true
	result.columns = cols
	result.leftWidth = leftWidth
	result.rightWidth = rightWidth
	for i, cp := range paged.Pages {
		h := cp.Left.Height
		if cp.Right.Height > h {
			h = cp.Right.Height
		}
		result.Pages = append(result.Pages, &Page{
			Number: i + 1,
			Nodes:  []*content.Node{cp.Node(cols)},
			Height: h,
			Fill:   h / p.options.MaxHeight,
			Left:   cp.Left,
			Right:  cp.Right,
		})
	}
	result.Report = paged.Report
	result.Warnings = append(result.Warnings, paged.Warnings...)
	result.Stats = paged.Stats

	p.logf("Left: %d pages, Right: %d pages, combined: %d",
		len(paged.Left.Pages), len(paged.Right.Pages), len(result.Pages))
	return result, nil
}

// outside counts the non-empty top-level nodes that do not hold container
func outside(nodes []*content.Node, container *content.Node) int {
	n := 0
	for _, node := range nodes {
		if node.Empty() {
			continue
		}
		if content.Find(node, func(c *content.Node) bool { return c == container }) == nil {
			n++
		}
	}
	return n
}

func extraChildren(cols *pagination.Layout) int {
	n := 0
	for _, c := range cols.Container.Children() {
		if c != cols.Left && c != cols.Right && !c.Empty() {
			n++
		}
	}
	return n
}

// newOracle builds the oracle of one invocation and the function releasing it
func (p *Paginator) newOracle(styles []string) (Oracle, func() error, error) {
	noop := func() error { return nil }
	if p.options.Oracle != nil {
		return p.options.Oracle, noop, nil
	}

	sheets := append(append([]string(nil), p.options.Stylesheets...), styles...)
	switch p.options.Engine {
	case OracleLayout, "":
		o, err := layout.NewOracle(layout.Options{
			Stylesheets:         sheets,
			UserAgentStylesheet: p.options.UserAgentStylesheet,
			Debug:               p.options.Debug,
			LogOutput:           p.options.LogOutput,
		})
		if err != nil {
			return nil, nil, err
		}
		return o, noop, nil
	case OracleChrome:
		opts := []browser.Option{browser.WithTimeout(p.options.Timeout)}
		if p.options.ChromePath != "" {
			opts = append(opts, browser.WithChromePath(p.options.ChromePath))
		}
		if p.options.AutoDownload {
			opts = append(opts, browser.WithAutoDownload())
		}
		if p.options.NoSandbox {
			opts = append(opts, browser.WithNoSandbox())
		}
		for _, s := range sheets {
			opts = append(opts, browser.WithStylesheet(s))
		}
		b, err := browser.New(opts...)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown oracle engine %q", ErrInvalidConfig, p.options.Engine)
}

// CreatePages wraps every page in a numbered page container holding a
// content container. On two-column pages the content container holds the
// column container.
func (p *Paginator) CreatePages(r *Result) []*content.Node {
	out := make([]*content.Node, len(r.Pages))
	for i, pg := range r.Pages {
		inner := content.NewElement("div",
			[]content.Attr{{Key: "class", Val: p.options.ContentClass}}, pg.Nodes...)
		out[i] = content.NewElement("div", []content.Attr{
			{Key: "class", Val: p.options.PageClass},
			{Key: "data-page", Val: strconv.Itoa(pg.Number)},
		}, inner)
	}
	return out
}

// WriteHTML writes the wrapped pages as a standalone HTML document
func (p *Paginator) WriteHTML(w io.Writer, r *Result) error {
	title := r.Title
	if title == "" {
		title = p.options.Title
	}
	if err := html.RenderDocument(w, title, r.Styles, p.CreatePages(r)); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}

// WriteHTMLFile writes the wrapped pages to an HTML file
func (p *Paginator) WriteHTMLFile(r *Result, outputPath string) error {
	var buf bytes.Buffer
	if err := p.WriteHTML(&buf, r); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

// RenderPDF draws the pages as a PDF preview, one page per result page,
// laid out with the built-in layout engine
func (p *Paginator) RenderPDF(r *Result, w io.Writer) error {
	pages, err := p.previewPages(r)
	if err != nil {
		return err
	}
	renderer := p.newRenderer(r)
	return renderer.Render(pages, w, p.renderOptions())
}

// RenderPDFFile draws the PDF preview into a file
func (p *Paginator) RenderPDFFile(r *Result, outputPath string) error {
	pages, err := p.previewPages(r)
	if err != nil {
		return err
	}
	renderer := p.newRenderer(r)
	return renderer.RenderFile(pages, outputPath, p.renderOptions())
}

func (p *Paginator) newRenderer(r *Result) *pdf.Renderer {
	renderer := pdf.NewRenderer()
	renderer.Debug = p.options.Debug
	if p.options.LogOutput != nil {
		renderer.LogOutput = p.options.LogOutput
	}
	if r.loader != nil {
		renderer.Images = r.loader
	}
	return renderer
}

func (p *Paginator) renderOptions() pdf.RenderOptions {
	opts := pdf.RenderOptions{
		Title:      p.options.Title,
		Author:     p.options.Author,
		Subject:    p.options.Subject,
		Keywords:   p.options.Keywords,
		Creator:    "pagefit",
		Producer:   "pagefit",
		PageWidth:  p.options.PageWidth + 2*p.options.Padding,
		PageHeight: p.options.MaxHeight,
		Padding:    p.options.Padding,
	}
	if p.options.Debug {
		opts.Limit = p.options.MaxHeight - 2*p.options.Padding
	}
	return opts
}

func (p *Paginator) previewPages(r *Result) ([]pdf.Page, error) {
	lo, err := layout.NewOracle(layout.Options{
		Stylesheets:         r.Styles,
		UserAgentStylesheet: p.options.UserAgentStylesheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create layout engine: %w", err)
	}

	pages := make([]pdf.Page, 0, len(r.Pages))
	for _, pg := range r.Pages {
		var frames []pdf.Frame
		if r.TwoColumn {
			for _, col := range []struct {
				shell *content.Node
				page  *pagination.Page
				x, w  float64
			}{
				{r.columns.Left, pg.Left, 0, r.leftWidth},
				{r.columns.Right, pg.Right, r.leftWidth + p.options.ColumnGap, r.rightWidth},
			} {
				if col.page == nil || col.page.Placeholder {
					continue
				}
				box, err := lo.Layout(col.shell.WithChildren(col.page.Nodes...), col.w)
				if err != nil {
					return nil, fmt.Errorf("failed to lay out page %d: %w", pg.Number, err)
				}
				frames = append(frames, pdf.Frame{X: col.x, Box: box})
			}
		} else {
			box, err := lo.Layout(content.NewElement("div", nil, pg.Nodes...), p.options.PageWidth)
			if err != nil {
				return nil, fmt.Errorf("failed to lay out page %d: %w", pg.Number, err)
			}
			frames = append(frames, pdf.Frame{Box: box})
		}
		pages = append(pages, pdf.Page{Frames: frames})
	}
	return pages, nil
}

func (p *Paginator) logf(format string, args ...interface{}) {
	if !p.options.Debug {
		return
	}
	w := p.options.LogOutput
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\n", args...)
}
