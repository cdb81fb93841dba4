// Package markdown turns Markdown documents into content trees by way of
// goldmark's HTML renderer.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/gompdf/pagefit/internal/content"
	"github.com/gompdf/pagefit/internal/parser/html"
)

// Parser converts Markdown to content nodes. Tables, definition lists and
// strikethrough are enabled; raw HTML blocks pass through unchanged so
// documents can carry column markers.
type Parser struct {
	md   goldmark.Markdown
	html *html.Parser
}

// NewParser creates a new Markdown parser
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.DefinitionList,
				extension.Strikethrough,
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		html: html.NewParser(),
	}
}

// ToHTML renders Markdown source as an HTML fragment
func (p *Parser) ToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Parse converts Markdown source into top-level content nodes
func (p *Parser) Parse(src []byte) ([]*content.Node, error) {
	out, err := p.ToHTML(src)
	if err != nil {
		return nil, err
	}
	nodes, err := p.html.ParseFragment(out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered markdown: %w", err)
	}
	return nodes, nil
}

// ParseString converts a Markdown string into top-level content nodes
func (p *Parser) ParseString(src string) ([]*content.Node, error) {
	return p.Parse([]byte(src))
}
