package pagination

// Bounds holds the default and maximum page size of one query.
type Bounds struct {
	Default int
	Max     int
}

var (
	// Search caps product search result sets.
	Search = Bounds{Default: 10, Max: 50}
	// Sweep caps the batches of background user scans.
	Sweep = Bounds{Default: 100, Max: 1000}
)

// Normalize applies the default to non-positive limits and caps the rest.
func (b Bounds) Normalize(limit int) int {
	if limit <= 0 {
		return b.Default
	}
	if b.Max > 0 && limit > b.Max {
		return b.Max
	}
	return limit
}
