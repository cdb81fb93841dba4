package text

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"hello", []string{"hello"}},
		{"hello   world", []string{"hello", " ", "world"}},
		{"  lead\ttrail\n", []string{" ", "lead", " ", "trail", " "}},
	}
	for _, tt := range tests {
		if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace(" a \n\t b  "); got != " a b " {
		t.Errorf("CollapseSpace = %q", got)
	}
	if !IsSpace(" \n") || IsSpace(" x ") {
		t.Errorf("IsSpace misclassified input")
	}
}

func TestBreakLines(t *testing.T) {
	word := func(w float64) Item { return Item{Width: w} }
	space := Item{Width: 1, Space: true}

	tests := []struct {
		name  string
		items []Item
		max   float64
		want  [][]int
	}{
		{
			name:  "fits on one line",
			items: []Item{word(3), space, word(3)},
			max:   10,
			want:  [][]int{{0, 1, 2}},
		},
		{
			name:  "wraps and drops the boundary space",
			items: []Item{word(5), space, word(5), space, word(2)},
			max:   10,
			want:  [][]int{{0}, {2, 3, 4}},
		},
		{
			name:  "oversized word alone",
			items: []Item{word(2), space, word(20), space, word(2)},
			max:   10,
			want:  [][]int{{0}, {2}, {4}},
		},
		{
			name:  "forced break",
			items: []Item{word(2), {Break: true}, word(2)},
			max:   10,
			want:  [][]int{{0}, {2}},
		},
		{
			name:  "leading space dropped",
			items: []Item{space, word(2)},
			max:   10,
			want:  [][]int{{1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BreakLines(tt.items, tt.max); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BreakLines = %v, want %v", got, tt.want)
			}
		})
	}
}
