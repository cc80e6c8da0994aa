package matrixops

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NormalizeEpsilon is the smallest value range NormalizeLineProfile scales by.
const NormalizeEpsilon = 1e-8

// finiteValues returns the present, finite entries of values.
func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// MeanAlongColumns returns the arithmetic mean of each row across its
// columns. Missing and non-finite entries are skipped; a row without any
// finite entry yields Missing.
func MeanAlongColumns(m Matrix) ([]float64, bool) {
	if !m.Valid() {
		return nil, false
	}
	out := make([]float64, m.Shape.Rows)
	row := make([]float64, 0, m.Shape.Cols)
	for r := range out {
		row = row[:0]
		for c := 0; c < m.Shape.Cols; c++ {
			if v := m.At(r, c); isFinite(v) {
				row = append(row, v)
			}
		}
		if len(row) == 0 {
			out[r] = Missing
			continue
		}
		out[r] = stat.Mean(row, nil)
	}
	return out, true
}

// MaxAlongRows returns the maximum of each column taken over all rows.
// Missing and non-finite entries are ignored; a column without any finite
// entry yields Missing. It fails when the whole matrix has no finite entry.
func MaxAlongRows(m Matrix) ([]float64, bool) {
	if !m.Valid() {
		return nil, false
	}
	out := make([]float64, m.Shape.Cols)
	found := false
	for c := range out {
		col, _ := SelectColumn(m, c)
		best, ok := MaxArray(col)
		if !ok {
			out[c] = Missing
			continue
		}
		out[c] = best
		found = true
	}
	if !found {
		return nil, false
	}
	return out, true
}

// MinArray returns the smallest finite value.
func MinArray(values []float64) (float64, bool) {
	finite := finiteValues(values)
	if len(finite) == 0 {
		return 0, false
	}
	return floats.Min(finite), true
}

// MaxArray returns the largest finite value.
func MaxArray(values []float64) (float64, bool) {
	finite := finiteValues(values)
	if len(finite) == 0 {
		return 0, false
	}
	return floats.Max(finite), true
}

// NormalizeLineProfile min-max scales values into [0, 1]. When the finite
// range is narrower than NormalizeEpsilon every finite value maps to 1.
// Missing and non-finite values stay Missing.
func NormalizeLineProfile(values []float64) ([]float64, bool) {
	lo, ok := MinArray(values)
	if !ok {
		return nil, false
	}
	hi, _ := MaxArray(values)

	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range values {
		switch {
		case !isFinite(v):
			out[i] = Missing
		case span < NormalizeEpsilon:
			out[i] = 1
		default:
			out[i] = (v - lo) / span
		}
	}
	return out, true
}

// rankValue returns the element at ceil((n-1)*p/scale) of the sorted finite
// values.
func rankValue(values []float64, p, scale float64) (float64, bool) {
	if math.IsNaN(p) || p < 0 || p > scale {
		return 0, false
	}
	finite := finiteValues(values)
	if len(finite) == 0 {
		return 0, false
	}
	slices.Sort(finite)
	idx := int(math.Ceil(float64(len(finite)-1) * p / scale))
	idx = min(idx, len(finite)-1)
	return finite[idx], true
}

// Percentile returns the p-th percentile (p in [0, 100]) of the finite
// values using nearest rank rounded upward.
func Percentile(values []float64, p float64) (float64, bool) {
	return rankValue(values, p, 100)
}

// PerMilRank returns the p-th per-mil rank (p in [0, 1000]) of the finite
// values using nearest rank rounded upward.
func PerMilRank(values []float64, p float64) (float64, bool) {
	return rankValue(values, p, 1000)
}
