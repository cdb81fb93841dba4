package pagination

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/measure"
)

// ErrInvalidConfig is returned when Options violate their invariants
var ErrInvalidConfig = errors.New("pagination: invalid configuration")

// Options represents options for the pagination engine
type Options struct {
	MaxHeight       float64
	Width           float64
	Padding         float64
	SafetyBuffer    float64
	MinUsagePercent float64
	MaxUsagePercent float64
	// MaxSplitAttempts bounds the split-retry loop for one top-level node
	MaxSplitAttempts int

	Debug     bool
	LogOutput io.Writer
}

// DefaultOptions returns the defaults of the resume templates: an 827px page
// less a 7px margin, rendered 595px wide with 20px padding.
func DefaultOptions() Options {
	return Options{
		MaxHeight:        820,
		Width:            595,
		Padding:          20,
		SafetyBuffer:     1,
		MinUsagePercent:  0.96,
		MaxUsagePercent:  1.01,
		MaxSplitAttempts: 10,
	}
}

// Validate checks the option invariants
func (o Options) Validate() error {
	switch {
	case o.MaxHeight <= 0:
		return fmt.Errorf("%w: max height %.2f must be positive", ErrInvalidConfig, o.MaxHeight)
	case o.Width <= 0:
		return fmt.Errorf("%w: width %.2f must be positive", ErrInvalidConfig, o.Width)
	case o.Padding < 0:
		return fmt.Errorf("%w: padding %.2f is negative", ErrInvalidConfig, o.Padding)
	case o.SafetyBuffer < 0 || o.SafetyBuffer >= o.MaxHeight:
		return fmt.Errorf("%w: safety buffer %.2f outside [0, max height)", ErrInvalidConfig, o.SafetyBuffer)
	case o.MinUsagePercent <= 0 || o.MinUsagePercent > o.MaxUsagePercent:
		return fmt.Errorf("%w: usage window [%.2f, %.2f] requires 0 < min <= max", ErrInvalidConfig, o.MinUsagePercent, o.MaxUsagePercent)
	case o.MaxSplitAttempts < 1:
		return fmt.Errorf("%w: max split attempts must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// limit is the height a page may reach while being filled
func (o Options) limit() float64 {
	return o.MaxHeight - o.SafetyBuffer
}

// Engine handles the pagination process
type Engine struct {
	options Options
	oracle  measure.Oracle
}

// NewEngine creates a new pagination engine measuring through oracle
func NewEngine(oracle measure.Oracle) *Engine {
	return &Engine{
		options: DefaultOptions(),
		oracle:  oracle,
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the engine's options
func (e *Engine) Options() Options {
	return e.options
}

// Paginate breaks a top-level node sequence into pages. Each call uses its
// own measurement cache.
func (e *Engine) Paginate(nodes []*content.Node) (*Result, error) {
	if e.oracle == nil {
		return nil, ErrNoOracle
	}
	if err := e.options.Validate(); err != nil {
		return nil, err
	}
	mctx := measure.NewContext(e.oracle, e.options.Width, e.options.Padding)
	return newPacker(e.options, mctx, "").run(nodes)
}

// ErrNoOracle is returned when an engine has no layout oracle
var ErrNoOracle = errors.New("pagination: no layout oracle configured")

func (o Options) logf(format string, args ...interface{}) {
	if !o.Debug {
		return
	}
	w := o.LogOutput
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\n", args...)
}
