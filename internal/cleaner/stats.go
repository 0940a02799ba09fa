package cleaner

import "sort"

// Median returns the median of values. ok is false for an empty slice.
// Values are not modified.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := sortedCopy(values)
	return quantile(sorted, 0.5), true
}

// Quartiles returns Q1 and Q3 using linear interpolation between closest
// ranks. ok is false when fewer than 4 values are available, too few for a
// meaningful spread.
func Quartiles(values []float64) (q1, q3 float64, ok bool) {
	if len(values) < 4 {
		return 0, 0, false
	}
	sorted := sortedCopy(values)
	return quantile(sorted, 0.25), quantile(sorted, 0.75), true
}

// IQRBounds returns the outlier fences Q1-factor*IQR and Q3+factor*IQR.
// ok is false when Quartiles cannot be computed.
func IQRBounds(values []float64, factor float64) (lo, hi float64, ok bool) {
	q1, q3, ok := Quartiles(values)
	if !ok {
		return 0, 0, false
	}
	iqr := q3 - q1
	return q1 - factor*iqr, q3 + factor*iqr, true
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// quantile interpolates linearly between the two closest ranks of a sorted
// slice. p is in [0,1]; the slice must be non-empty.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
