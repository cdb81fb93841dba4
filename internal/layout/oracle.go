// Package layout computes block heights of content trees from the CSS box
// model and core PDF font metrics. It is the built-in Layout Oracle.
package layout

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/parser/css"
	"github.com/gompdf/pagefit/internal/style"
)

// DefaultFontSize is the root font size in px
const DefaultFontSize = 16.0

// ErrNoRoom is returned when there is no width to lay content out in
var ErrNoRoom = errors.New("layout: no content width left")

// Options configures an Oracle
type Options struct {
	// Stylesheets are author CSS sources applied after the user agent sheet
	Stylesheets []string
	// UserAgentStylesheet replaces style.DefaultUserAgentCSS when set
	UserAgentStylesheet string
	// DefaultFontSize is the root font size in px
	DefaultFontSize float64
	// FontFamily is the root font family
	FontFamily string
	Debug      bool
	LogOutput  io.Writer
}

// Oracle measures content with the box model. It is safe for concurrent use.
type Oracle struct {
	opts   Options
	engine *engine
	root   style.ComputedStyle
	body   *content.Node
}

// NewOracle parses the configured stylesheets and returns an Oracle
func NewOracle(opts Options) (*Oracle, error) {
	if opts.DefaultFontSize <= 0 {
		opts.DefaultFontSize = DefaultFontSize
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "Helvetica"
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}

	parser := css.NewParser()
	styles := style.NewStyleEngine()
	if opts.UserAgentStylesheet != "" {
		ua, err := parser.ParseString(opts.UserAgentStylesheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user agent stylesheet: %w", err)
		}
		styles.SetUserAgentStylesheet(ua)
	}
	for i, src := range opts.Stylesheets {
		sheet, err := parser.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stylesheet %d: %w", i, err)
		}
		styles.AddStylesheet(sheet)
	}

	root := make(style.ComputedStyle)
	root.Set("font-size", px(opts.DefaultFontSize))
	root.Set("font-family", opts.FontFamily)

	return &Oracle{
		opts:   opts,
		engine: &engine{styles: styles},
		root:   root,
		body:   content.NewElement("body", nil),
	}, nil
}

// Measure returns the height of node laid out at a content width of width
// inside padding on every side, vertical margins of the outermost element
// included
func (o *Oracle) Measure(node *content.Node, width, padding float64) (float64, error) {
	box, err := o.Layout(node, width)
	if err != nil {
		return 0, err
	}
	h := box.OuterHeight() + 2*padding
	if o.opts.Debug {
		fmt.Fprintf(o.opts.LogOutput, "[layout] <%s> at %.0fpx: %.1fpx\n", tagName(node), width, h)
	}
	return h, nil
}

// Layout lays node out in a content box of the given width and returns its
// box tree with the outer margin edge at the origin. Text and inline roots
// are wrapped in an anonymous div.
func (o *Oracle) Layout(node *content.Node, width float64) (*Box, error) {
	if node == nil {
		return nil, errors.New("layout: nil node")
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %.1f", ErrNoRoom, width)
	}
	if inlineLevel(node) {
		node = content.NewElement("div", nil, node)
	}
	box := o.engine.block(node, o.root, []*content.Node{o.body}, width)
	box.shift(box.Margin.Left, box.Margin.Top)
	return box, nil
}

func tagName(n *content.Node) string {
	if n.IsText() {
		return "#text"
	}
	return n.Tag()
}
