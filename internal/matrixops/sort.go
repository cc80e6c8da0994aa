package matrixops

import (
	"cmp"
	"slices"
)

// Argsort returns the permutation that sorts values. values[perm[i]] is
// non-decreasing when ascending is true and non-increasing otherwise. Equal
// keys keep their input order in both directions; missing keys go last.
// It fails on empty input.
func Argsort(values []float64, ascending bool) ([]int, bool) {
	if len(values) == 0 {
		return nil, false
	}
	perm := make([]int, len(values))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		va, vb := values[a], values[b]
		ma, mb := IsMissing(va), IsMissing(vb)
		switch {
		case ma && mb:
			return 0
		case ma:
			return 1
		case mb:
			return -1
		}
		if ascending {
			return cmp.Compare(va, vb)
		}
		return cmp.Compare(vb, va)
	})
	return perm, true
}

// SortMatrixByIndex reorders the rows of m by Argsort(sortValues, ascending).
// Columns are untouched. sortValues must hold one key per row.
func SortMatrixByIndex(m Matrix, sortValues []float64, ascending bool) (Matrix, bool) {
	if !m.Valid() || len(sortValues) != m.Shape.Rows {
		return Matrix{}, false
	}
	perm, ok := Argsort(sortValues, ascending)
	if !ok {
		return Matrix{}, false
	}
	return Permute(m, perm)
}

// CenterColumnIndex returns floor(cols/2).
func CenterColumnIndex(s Shape) int {
	return s.Cols / 2
}

// SortMatrixByCenterColumn sorts the rows of m by the values of the column
// at floor(cols/2).
func SortMatrixByCenterColumn(m Matrix, ascending bool) (Matrix, bool) {
	if !m.Valid() {
		return Matrix{}, false
	}
	keys, ok := SelectColumn(m, CenterColumnIndex(m.Shape))
	if !ok {
		return Matrix{}, false
	}
	return SortMatrixByIndex(m, keys, ascending)
}
