package css

import "testing"

func TestParseString(t *testing.T) {
	src := `
/* resume theme */
h1, .title { font-size: 2em; margin: 0 0 8px; }
.sidebar p { color: #333 !important; }
@media print { p { margin: 0; } }
broken rule
`
	sheet, err := NewParser().ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rules) < 2 {
		t.Fatalf("got %d rules", len(sheet.Rules))
	}

	first := sheet.Rules[0]
	if len(first.Selectors) != 2 || first.Selectors[0] != "h1" || first.Selectors[1] != ".title" {
		t.Errorf("selectors = %q", first.Selectors)
	}
	if len(first.Declarations) != 2 || first.Declarations[1].Value != "0 0 8px" {
		t.Errorf("declarations = %+v", first.Declarations)
	}

	second := sheet.Rules[1]
	if second.Selectors[0] != ".sidebar p" {
		t.Errorf("selector = %q", second.Selectors[0])
	}
	d := second.Declarations[0]
	if d.Property != "color" || d.Value != "#333" || !d.Important {
		t.Errorf("declaration = %+v", d)
	}
}

func TestParseInlineAndLookup(t *testing.T) {
	decls := ParseInline("width: 200px; /* fixed */ flex: 0 0 180px; Width: 210px;; junk")
	if len(decls) != 3 {
		t.Fatalf("got %d declarations", len(decls))
	}

	tests := []struct {
		property string
		want     string
		ok       bool
	}{
		{"width", "210px", true},
		{"FLEX", "0 0 180px", true},
		{"height", "", false},
	}
	for _, tt := range tests {
		got, ok := Lookup(decls, tt.property)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%q) = %q, %t; want %q, %t", tt.property, got, ok, tt.want, tt.ok)
		}
	}
}
