// Package measure wraps a Layout Oracle with a per-invocation height cache.
package measure

import (
	"fmt"
	"sync"

	"github.com/gompdf/pagefit/internal/content"
)

// Oracle reports the rendered height of a content subtree, vertical margins
// of the outermost element included, when rendered at width with padding on
// every side. Implementations must be deterministic for identical inputs.
type Oracle interface {
	Measure(node *content.Node, width, padding float64) (float64, error)
}

// OracleFunc adapts a plain function to the Oracle interface
type OracleFunc func(node *content.Node, width, padding float64) (float64, error)

// Measure calls f
func (f OracleFunc) Measure(node *content.Node, width, padding float64) (float64, error) {
	return f(node, width, padding)
}

// Stats counts cache traffic for one measurement context
type Stats struct {
	Hits        int
	Misses      int
	OracleCalls int
}

// Cache memoizes heights by structural signature. Content is immutable during
// a run, so entries never go stale; a cache belongs to one invocation.
type Cache struct {
	mu      sync.Mutex
	heights map[string]float64
	stats   Stats
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{heights: make(map[string]float64)}
}

func (c *Cache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.heights[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return h, ok
}

func (c *Cache) put(key string, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heights[key] = h
	c.stats.OracleCalls++
}

// Len returns the number of cached heights
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.heights)
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Clear drops every entry and resets the counters
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heights = make(map[string]float64)
	c.stats = Stats{}
}

// Context is the measurement surface handed to the packer and splitters: an
// oracle, a cache, the rendering geometry and the shell element page content
// is wrapped in before measuring.
type Context struct {
	oracle  Oracle
	cache   *Cache
	width   float64
	padding float64
	shell   *content.Node
}

// NewContext creates a context with a fresh cache and a plain div shell
func NewContext(oracle Oracle, width, padding float64) *Context {
	return &Context{
		oracle:  oracle,
		cache:   NewCache(),
		width:   width,
		padding: padding,
		shell:   content.NewElement("div", nil),
	}
}

// WithShell returns a context sharing oracle and geometry, with its own cache,
// that wraps page content in a childless clone of shell.
func (c *Context) WithShell(shell *content.Node) *Context {
	nc := NewContext(c.oracle, c.width, c.padding)
	if shell != nil {
		nc.shell = shell.WithChildren()
	}
	return nc
}

// Width returns the rendering width
func (c *Context) Width() float64 { return c.width }

// Padding returns the rendering padding
func (c *Context) Padding() float64 { return c.padding }

// Shell returns the empty page container
func (c *Context) Shell() *content.Node { return c.shell }

// Cache returns the context's cache
func (c *Context) Cache() *Cache { return c.cache }

// Measure returns the height of node, consulting the cache first
func (c *Context) Measure(node *content.Node) (float64, error) {
	key := node.Kind().String() + "::" + node.Markup()
	if h, ok := c.cache.get(key); ok {
		return h, nil
	}
	h, err := c.oracle.Measure(node, c.width, c.padding)
	if err != nil {
		return 0, fmt.Errorf("measuring <%s>: %w", node.Tag(), err)
	}
	c.cache.put(key, h)
	return h, nil
}

// MeasurePage measures nodes laid out together inside the page shell
func (c *Context) MeasurePage(nodes []*content.Node) (float64, error) {
	return c.Measure(c.shell.WithChildren(nodes...))
}
