package css

import (
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader. At-rules such as @media and @page are
// skipped together with their blocks; rules without a selector and an
// unterminated trailing rule are dropped.
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{Rules: []*Rule{}}
	src := stripComments(string(data))
	for len(src) > 0 {
		open := strings.IndexByte(src, '{')
		if open < 0 {
			break
		}
		end := matchingBrace(src, open)
		if end < 0 {
			break
		}
		prelude := strings.TrimSpace(src[:open])
		body := src[open+1 : end]
		src = src[end+1:]

		// statements like @import end at a semicolon before any block
		for strings.HasPrefix(prelude, "@") {
			semi := strings.IndexByte(prelude, ';')
			if semi < 0 {
				break
			}
			prelude = strings.TrimSpace(prelude[semi+1:])
		}
		if prelude == "" || strings.HasPrefix(prelude, "@") {
			continue
		}

		selectors := splitSelectors(prelude)
		if len(selectors) == 0 {
			continue
		}
		sheet.Rules = append(sheet.Rules, &Rule{
			Selectors:    selectors,
			Declarations: parseDeclarations(body),
		})
	}
	return sheet, nil
}

// matchingBrace returns the index of the brace closing the one at open, or
// -1 when the block is unterminated
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitSelectors(prelude string) []string {
	var out []string
	for _, sel := range strings.Split(prelude, ",") {
		// collapse runs of whitespace so descendant parts split cleanly
		if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
			out = append(out, sel)
		}
	}
	return out
}

// ParseInline parses the declarations of a style attribute
func ParseInline(style string) []*Declaration {
	return parseDeclarations(stripComments(style))
}

// Lookup returns the value of the last declaration of property, so later
// declarations win as they do in a style attribute
func Lookup(decls []*Declaration, property string) (string, bool) {
	for i := len(decls) - 1; i >= 0; i-- {
		if strings.EqualFold(decls[i].Property, property) {
			return decls[i].Value, true
		}
	}
	return "", false
}

func parseDeclarations(block string) []*Declaration {
	var out []*Declaration
	for _, item := range strings.Split(block, ";") {
		prop, value, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}

		d := &Declaration{Property: prop, Value: value}
		if v, found := strings.CutSuffix(value, "!important"); found {
			d.Value = strings.TrimSpace(v)
			d.Important = true
		}
		out = append(out, d)
	}
	return out
}

// stripComments removes /* */ comments; an unterminated comment runs to the
// end of the input
func stripComments(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		s = s[start+2+end+2:]
	}
}
