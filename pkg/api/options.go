package api

import (
	"io"
	"time"

	"github.com/gompdf/pagefit/internal/pagination"
	"github.com/gompdf/pagefit/internal/style"
)

// OracleEngine selects the built-in Layout Oracle
type OracleEngine string

const (
	// OracleLayout measures with the box model and core PDF font metrics
	OracleLayout OracleEngine = "fpdf"
	// OracleChrome measures in a headless Chrome tab
	OracleChrome OracleEngine = "chrome"
)

// Options represents configuration options for the paginator
type Options struct {
	// Height budget of one page in px, padding included
	MaxHeight float64
	// Rendering width of page content in px
	PageWidth float64
	// Padding around page content on every side
	Padding float64
	// SafetyBuffer is subtracted from MaxHeight while filling a page
	SafetyBuffer float64

	// Fill-ratio window a split page must land in
	MinUsagePercent float64
	MaxUsagePercent float64
	// Bound of the split-retry loop for one node
	MaxSplitAttempts int

	// Two-column geometry. Zero column widths are read from the column
	// elements' inline styles.
	ColumnGap        float64
	LeftColumnWidth  float64
	RightColumnWidth float64

	// Class names of the page wrappers built by CreatePages
	PageClass    string
	ContentClass string

	// Stylesheets
	UserAgentStylesheet string
	Stylesheets         []string

	// Measurement
	Engine       OracleEngine
	Oracle       Oracle
	ChromePath   string
	AutoDownload bool
	NoSandbox    bool
	Timeout      time.Duration

	Debug     bool
	LogOutput io.Writer

	// Resource paths
	ResourcePaths []string

	// Document metadata of the PDF preview
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options: an 827px resume page less a
// 7px margin, rendered 595px wide with 20px padding
func DefaultOptions() Options {
	p := pagination.DefaultOptions()
	return Options{
		MaxHeight:        p.MaxHeight,
		PageWidth:        p.Width,
		Padding:          p.Padding,
		SafetyBuffer:     p.SafetyBuffer,
		MinUsagePercent:  p.MinUsagePercent,
		MaxUsagePercent:  p.MaxUsagePercent,
		MaxSplitAttempts: p.MaxSplitAttempts,

		ColumnGap: 20,

		PageClass:    "page",
		ContentClass: "column-content",

		UserAgentStylesheet: style.DefaultUserAgentCSS,

		Engine:  OracleLayout,
		Timeout: 30 * time.Second,

		ResourcePaths: []string{},
	}
}

// Validate checks the pagination invariants of the options
func (o Options) Validate() error {
	return o.pagination().Validate()
}

func (o Options) pagination() pagination.Options {
	return pagination.Options{
		MaxHeight:        o.MaxHeight,
		Width:            o.PageWidth,
		Padding:          o.Padding,
		SafetyBuffer:     o.SafetyBuffer,
		MinUsagePercent:  o.MinUsagePercent,
		MaxUsagePercent:  o.MaxUsagePercent,
		MaxSplitAttempts: o.MaxSplitAttempts,
		Debug:            o.Debug,
		LogOutput:        o.LogOutput,
	}
}

// WithMaxHeight sets the height budget of a page
func WithMaxHeight(height float64) Option {
	return func(o *Options) {
		o.MaxHeight = height
	}
}

// WithPageWidth sets the rendering width
func WithPageWidth(width float64) Option {
	return func(o *Options) {
		o.PageWidth = width
	}
}

// WithPadding sets the page padding
func WithPadding(padding float64) Option {
	return func(o *Options) {
		o.Padding = padding
	}
}

// WithSafetyBuffer sets the height kept free while filling a page
func WithSafetyBuffer(buffer float64) Option {
	return func(o *Options) {
		o.SafetyBuffer = buffer
	}
}

// WithUsageWindow sets the accepted fill-ratio window of split pages
func WithUsageWindow(minUsage, maxUsage float64) Option {
	return func(o *Options) {
		o.MinUsagePercent = minUsage
		o.MaxUsagePercent = maxUsage
	}
}

// WithMaxSplitAttempts bounds the split-retry loop
func WithMaxSplitAttempts(n int) Option {
	return func(o *Options) {
		o.MaxSplitAttempts = n
	}
}

// WithColumnGap sets the gap between the two columns
func WithColumnGap(gap float64) Option {
	return func(o *Options) {
		o.ColumnGap = gap
	}
}

// WithColumnWidths fixes the widths of the left and right columns
func WithColumnWidths(left, right float64) Option {
	return func(o *Options) {
		o.LeftColumnWidth = left
		o.RightColumnWidth = right
	}
}

// WithPageClasses sets the class names used by CreatePages
func WithPageClasses(page, content string) Option {
	return func(o *Options) {
		o.PageClass = page
		o.ContentClass = content
	}
}

// WithUserAgentStylesheet sets the user agent stylesheet
func WithUserAgentStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.UserAgentStylesheet = stylesheet
	}
}

// WithStylesheet adds an author stylesheet applied to every document
func WithStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.Stylesheets = append(o.Stylesheets, stylesheet)
	}
}

// WithOracleEngine selects the built-in oracle
func WithOracleEngine(engine OracleEngine) Option {
	return func(o *Options) {
		o.Engine = engine
	}
}

// WithOracle measures with a custom oracle
func WithOracle(oracle Oracle) Option {
	return func(o *Options) {
		o.Oracle = oracle
	}
}

// WithChrome measures in headless Chrome found at path, or in a downloaded
// Chromium when path is empty and download is set
func WithChrome(path string, download bool) Option {
	return func(o *Options) {
		o.Engine = OracleChrome
		o.ChromePath = path
		o.AutoDownload = download
	}
}

// WithNoSandbox disables the Chrome sandbox
func WithNoSandbox() Option {
	return func(o *Options) {
		o.NoSandbox = true
	}
}

// WithTimeout sets the timeout of one browser measurement
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogOutput sets the writer debug lines go to
func WithLogOutput(w io.Writer) Option {
	return func(o *Options) {
		o.LogOutput = w
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}
