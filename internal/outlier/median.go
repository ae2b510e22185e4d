package outlier

import "sort"

// Median returns the median of the values. Even-length inputs average the
// two middle elements; an empty input yields 0, which callers treat as
// "no baseline available".
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
