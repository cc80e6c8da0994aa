package matrixops

// SelectColumn returns column index of m, one value per row.
func SelectColumn(m Matrix, index int) ([]float64, bool) {
	if !m.Valid() || index < 0 || index >= m.Shape.Cols {
		return nil, false
	}
	out := make([]float64, m.Shape.Rows)
	for r := range out {
		out[r] = m.At(r, index)
	}
	return out, true
}

// SelectRow returns row index of m, one value per column.
func SelectRow(m Matrix, index int) ([]float64, bool) {
	if !m.Valid() || index < 0 || index >= m.Shape.Rows {
		return nil, false
	}
	out := make([]float64, m.Shape.Cols)
	for c := range out {
		out[c] = m.At(index, c)
	}
	return out, true
}

// SelectColumns extracts the given columns, in the given order, into a new
// rows x len(indices) matrix. Indices may repeat.
func SelectColumns(m Matrix, indices []int) (Matrix, bool) {
	if !m.Valid() || len(indices) == 0 {
		return Matrix{}, false
	}
	for _, idx := range indices {
		if idx < 0 || idx >= m.Shape.Cols {
			return Matrix{}, false
		}
	}
	rows, cols := m.Shape.Rows, len(indices)
	out := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for j, idx := range indices {
			out[r*cols+j] = m.At(r, idx)
		}
	}
	return New(out, rows, cols), true
}

// SelectRows extracts the given rows, in the given order, into a new
// len(indices) x cols matrix. Indices may repeat.
func SelectRows(m Matrix, indices []int) (Matrix, bool) {
	if !m.Valid() || len(indices) == 0 {
		return Matrix{}, false
	}
	for _, idx := range indices {
		if idx < 0 || idx >= m.Shape.Rows {
			return Matrix{}, false
		}
	}
	rows, cols := len(indices), m.Shape.Cols
	out := make([]float64, rows*cols)
	for i, idx := range indices {
		for c := 0; c < cols; c++ {
			out[i*cols+c] = m.At(idx, c)
		}
	}
	return New(out, rows, cols), true
}

// ColumnRange returns the indices [start, end) clamped to the shape.
func ColumnRange(s Shape, start, end int) []int {
	start = max(start, 0)
	end = min(end, s.Cols)
	if start >= end {
		return nil
	}
	out := make([]int, 0, end-start)
	for c := start; c < end; c++ {
		out = append(out, c)
	}
	return out
}
