package style

import (
	"strings"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/parser/css"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the trimmed value of a property, or "" when unset
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// Set stores a plain value for a property
func (s ComputedStyle) Set(name, value string) {
	s[name] = StyleProperty{Name: name, Value: value}
}

// inherited lists the properties that flow from an element to its children
var inherited = map[string]bool{
	"color":           true,
	"font":            true,
	"font-family":     true,
	"font-size":       true,
	"font-style":      true,
	"font-weight":     true,
	"line-height":     true,
	"text-align":      true,
	"text-indent":     true,
	"text-transform":  true,
	"white-space":     true,
	"letter-spacing":  true,
	"word-spacing":    true,
	"list-style":      true,
	"list-style-type": true,
	"border-spacing":  true,
	"visibility":      true,
}

// Inherit builds an element's effective style from its parent's effective
// style and its own cascaded style
func Inherit(parent, own ComputedStyle) ComputedStyle {
	merged := make(ComputedStyle, len(own)+len(inherited))
	for key, value := range parent {
		if inherited[key] {
			merged[key] = value
		}
	}
	for key, value := range own {
		if value.Value == "inherit" {
			if pv, ok := parent[key]; ok {
				merged[key] = pv
			}
			continue
		}
		merged[key] = value
	}
	return merged
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
}

// NewStyleEngine creates a new style engine
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{
		userAgentStyles: DefaultUserAgentStyles(),
		authorStyles:    []*css.Stylesheet{},
	}
}

// SetUserAgentStylesheet replaces the default user agent stylesheet
func (e *StyleEngine) SetUserAgentStylesheet(stylesheet *css.Stylesheet) {
	if stylesheet != nil {
		e.userAgentStyles = stylesheet
	}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
}

// ComputeStyle computes the cascaded style of an element. ancestors lists the
// element's ancestors from the root down to its parent.
func (e *StyleEngine) ComputeStyle(node *content.Node, ancestors []*content.Node) ComputedStyle {
	style := make(ComputedStyle)
	if node == nil || node.IsText() {
		return style
	}

	e.applyStylesheet(style, node, ancestors, e.userAgentStyles, SourceUserAgent)

	for _, stylesheet := range e.authorStyles {
		e.applyStylesheet(style, node, ancestors, stylesheet, SourceAuthor)
	}

	e.applyInlineStyles(style, node)

	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *content.Node, ancestors []*content.Node, stylesheet *css.Stylesheet, source Source) {
	if stylesheet == nil {
		return
	}
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			if selectorMatches(node, ancestors, selector) {
				specificity := calculateSpecificity(selector)
				applyDeclarations(style, rule.Declarations, specificity, source)
			}
		}
	}
}

// applyInlineStyles applies the style attribute of an element
func (e *StyleEngine) applyInlineStyles(style ComputedStyle, node *content.Node) {
	if attr, ok := node.Attr("style"); ok {
		applyDeclarations(style, css.ParseInline(attr), Specificity{1, 0, 0}, SourceInline)
	}
}

// applyDeclarations applies CSS declarations to a style. A declaration
// replaces an existing one when it is more important, comes from a later
// origin, or has at least the same specificity within the same origin.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		property := strings.ToLower(decl.Property)
		existing, exists := style[property]

		if !exists ||
			(decl.Important && !existing.Important) ||
			(decl.Important == existing.Important && source > existing.Source) ||
			(decl.Important == existing.Important && source == existing.Source &&
				compareSpecificity(specificity, existing.Specificity) >= 0) {

			style[property] = StyleProperty{
				Name:        property,
				Value:       decl.Value,
				Important:   decl.Important,
				Source:      source,
				Specificity: specificity,
			}
		}
	}
}

// selectorMatches checks if an element matches a complex selector made of
// compound selectors joined by descendant or child combinators.
// ancestors runs from the root down to the element's parent.
func selectorMatches(node *content.Node, ancestors []*content.Node, selector string) bool {
	parts, combinators := splitComplex(selector)
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}
	return matchAncestors(ancestors, parts[:len(parts)-1], combinators)
}

// splitComplex splits a selector into compound parts and the combinator
// preceding each part after the first ("" or ">")
func splitComplex(selector string) ([]string, []string) {
	fields := strings.Fields(strings.ReplaceAll(selector, ">", " > "))
	var parts, combinators []string
	pending := ""
	for _, f := range fields {
		if f == ">" {
			pending = ">"
			continue
		}
		if len(parts) > 0 {
			combinators = append(combinators, pending)
		}
		parts = append(parts, f)
		pending = ""
	}
	return parts, combinators
}

// matchAncestors matches parts right to left against the ancestor chain.
// combinators[i] joins parts[i] to the part after it.
func matchAncestors(ancestors []*content.Node, parts, combinators []string) bool {
	if len(parts) == 0 {
		return true
	}
	last := len(parts) - 1
	if combinators[last] == ">" {
		if len(ancestors) == 0 || !matchCompoundSelector(ancestors[len(ancestors)-1], parts[last]) {
			return false
		}
		return matchAncestors(ancestors[:len(ancestors)-1], parts[:last], combinators[:last])
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if matchCompoundSelector(ancestors[i], parts[last]) &&
			matchAncestors(ancestors[:i], parts[:last], combinators[:last]) {
			return true
		}
	}
	return false
}

// compound is a parsed compound selector such as div#main.note[data-column=left]
type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
}

type attrCond struct {
	key   string
	value string
	exact bool
}

// parseCompound parses tag, #id, .class and [attr] / [attr=value] parts.
// Pseudo-classes and other syntax are rejected.
func parseCompound(sel string) (compound, bool) {
	var c compound
	name := func(i int) int {
		for i < len(sel) && !strings.ContainsRune(".#[", rune(sel[i])) {
			i++
		}
		return i
	}

	i := name(0)
	c.tag = strings.ToLower(sel[:i])
	for i < len(sel) {
		switch sel[i] {
		case '#':
			j := name(i + 1)
			c.id = sel[i+1 : j]
			i = j
		case '.':
			j := name(i + 1)
			c.classes = append(c.classes, sel[i+1:j])
			i = j
		case '[':
			j := strings.IndexByte(sel[i:], ']')
			if j < 0 {
				return c, false
			}
			body := sel[i+1 : i+j]
			key, value, exact := strings.Cut(body, "=")
			c.attrs = append(c.attrs, attrCond{
				key:   strings.TrimSpace(key),
				value: strings.Trim(strings.TrimSpace(value), `"'`),
				exact: exact,
			})
			i += j + 1
		default:
			return c, false
		}
	}
	return c, true
}

// matchCompoundSelector matches a single compound selector against a node
func matchCompoundSelector(node *content.Node, sel string) bool {
	if node == nil || node.IsText() || sel == "" || strings.Contains(sel, ":") {
		return false
	}
	c, ok := parseCompound(sel)
	if !ok {
		return false
	}

	if c.tag != "" && c.tag != "*" && c.tag != node.Tag() {
		return false
	}
	if c.id != "" {
		if id, _ := node.Attr("id"); id != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		have, _ := node.Attr("class")
		classes := strings.Fields(have)
		for _, want := range c.classes {
			if !containsString(classes, want) {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v, ok := node.Attr(a.key)
		if !ok || (a.exact && v != a.value) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	specificity := Specificity{}

	for _, part := range strings.Fields(strings.ReplaceAll(selector, ">", " ")) {
		specificity.ID += strings.Count(part, "#")
		specificity.Class += strings.Count(part, ".") +
			strings.Count(part, "[") +
			strings.Count(part, ":")
		switch part[0] {
		case '.', '#', '*', '[', ':':
		default:
			specificity.Element++
		}
	}

	return specificity
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// DefaultUserAgentCSS is the user agent stylesheet used to measure and draw
// content. Margins follow common browser defaults.
const DefaultUserAgentCSS = `
	body { margin: 8px; }
	h1 { font-size: 2em; font-weight: bold; margin: 0.67em 0; }
	h2 { font-size: 1.5em; font-weight: bold; margin: 0.83em 0; }
	h3 { font-size: 1.17em; font-weight: bold; margin: 1em 0; }
	h4 { font-weight: bold; margin: 1.33em 0; }
	h5 { font-size: 0.83em; font-weight: bold; margin: 1.67em 0; }
	h6 { font-size: 0.67em; font-weight: bold; margin: 2.33em 0; }
	p { margin: 1em 0; }
	ul, ol { margin: 1em 0; padding-left: 40px; }
	li ul, li ol { margin: 0; }
	dl { margin: 1em 0; }
	dd { margin-left: 40px; }
	dt, b, strong, th { font-weight: bold; }
	blockquote, figure { margin: 1em 40px; }
	pre { margin: 1em 0; white-space: pre; font-family: monospace; }
	code, kbd, samp { font-family: monospace; }
	i, em, cite, address { font-style: italic; }
	a { color: #0000EE; text-decoration: underline; }
	small { font-size: 0.83em; }
	hr { margin: 0.5em 0; border: 1px inset; }
	table { border-spacing: 2px; }
	th, td { padding: 1px; }
	th { text-align: center; }
`

// DefaultUserAgentStyles returns the parsed default user agent stylesheet
func DefaultUserAgentStyles() *css.Stylesheet {
	parser := css.NewParser()
	stylesheet, _ := parser.ParseString(DefaultUserAgentCSS)
	return stylesheet
}
