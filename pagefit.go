// Package pagefit splits HTML and Markdown documents into pages that fit a
// fixed height budget, splitting lists, tables and text blocks at the page
// boundary instead of clipping them.
package pagefit

import (
	"github.com/gompdf/pagefit/pkg/api"
)

type Paginator = api.Paginator
type Options = api.Options
type Option = api.Option
type Result = api.Result
type Page = api.Page
type Node = api.Node
type Oracle = api.Oracle
type OracleFunc = api.OracleFunc
type OracleEngine = api.OracleEngine
type Warning = api.Warning
type Overflow = api.Overflow
type Stats = api.Stats

func New() *Paginator                           { return api.New() }
func NewWithOptions(options Options) *Paginator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithMaxHeight           = api.WithMaxHeight
	WithPageWidth           = api.WithPageWidth
	WithPadding             = api.WithPadding
	WithSafetyBuffer        = api.WithSafetyBuffer
	WithUsageWindow         = api.WithUsageWindow
	WithMaxSplitAttempts    = api.WithMaxSplitAttempts
	WithColumnGap           = api.WithColumnGap
	WithColumnWidths        = api.WithColumnWidths
	WithPageClasses         = api.WithPageClasses
	WithUserAgentStylesheet = api.WithUserAgentStylesheet
	WithStylesheet          = api.WithStylesheet
	WithOracleEngine        = api.WithOracleEngine
	WithOracle              = api.WithOracle
	WithChrome              = api.WithChrome
	WithNoSandbox           = api.WithNoSandbox
	WithTimeout             = api.WithTimeout
	WithDebug               = api.WithDebug
	WithLogOutput           = api.WithLogOutput
	WithResourcePath        = api.WithResourcePath
	WithTitle               = api.WithTitle
	WithAuthor              = api.WithAuthor
	WithSubject             = api.WithSubject
	WithKeywords            = api.WithKeywords
)

var (
	ErrInvalidConfig = api.ErrInvalidConfig
	ErrNoOracle      = api.ErrNoOracle
	ErrNoColumns     = api.ErrNoColumns
	ErrClosed        = api.ErrClosed
)

const (
	OracleLayout = api.OracleLayout
	OracleChrome = api.OracleChrome
)
