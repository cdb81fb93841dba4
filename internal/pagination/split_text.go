package pagination

import (
	"golang.org/x/text/unicode/norm"

	"github.com/gompdf/pagefit/internal/content"
)

// SplitTextToFit returns the largest byte offset k at a character boundary
// such that fits(text[:k]) holds, assuming fits is monotonic in prefix length.
// Character boundaries are normalization segment boundaries, so a base
// character is never separated from its combining marks. It returns 0 when
// not even the first character fits.
func SplitTextToFit(text string, fits func(prefix string) (bool, error)) (int, error) {
	bounds := charBoundaries(text)
	lo, hi, best := 1, len(bounds)-1, 0
	for lo <= hi {
		mid := (lo + hi) / 2
		ok, err := fits(text[:bounds[mid]])
		if err != nil {
			return 0, err
		}
		if ok {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return bounds[best], nil
}

// charBoundaries lists the byte offsets of every character boundary in s,
// including 0 and len(s)
func charBoundaries(s string) []int {
	bounds := []int{0}
	var it norm.Iter
	it.InitString(norm.NFC, s)
	for !it.Done() {
		it.Next()
		if p := it.Pos(); p > bounds[len(bounds)-1] && p <= len(s) {
			bounds = append(bounds, p)
		}
	}
	if bounds[len(bounds)-1] != len(s) {
		bounds = append(bounds, len(s))
	}
	return bounds
}

func (s *splitter) splitText(n *content.Node, f frame) (SplitResult, error) {
	full := n.Text()
	if full == "" {
		return SplitResult{Left: n}, nil
	}
	k, err := SplitTextToFit(full, func(prefix string) (bool, error) {
		ok, _, err := s.fits(f, content.NewText(prefix))
		return ok, err
	})
	if err != nil {
		return SplitResult{}, err
	}
	switch k {
	case 0:
		return SplitResult{Right: n}, nil
	case len(full):
		return SplitResult{Left: n}, nil
	}
	return SplitResult{
		Left:  content.NewText(full[:k]),
		Right: content.NewText(full[k:]),
	}, nil
}
