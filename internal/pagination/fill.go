package pagination

// IsValidFill reports whether a page of the given height is full enough to be
// closed as-is when the next node does not fit. Pages below the minimum usage
// must first try to absorb part of the next node.
func IsValidFill(height, maxHeight float64, opts Options) bool {
	if maxHeight <= 0 {
		return false
	}
	usage := height / maxHeight
	return usage >= opts.MinUsagePercent && usage <= opts.MaxUsagePercent
}
