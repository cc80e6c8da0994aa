package matrixops

import "math"

// Missing is the value stored for absent matrix entries.
var Missing = math.NaN()

// IsMissing reports whether v represents an absent entry.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// isFinite reports whether v is a usable, present value.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Shape is the [rows, cols] layout of a flattened matrix.
type Shape struct {
	Rows int `yaml:"rows" json:"rows"`
	Cols int `yaml:"cols" json:"cols"`
}

// Size returns Rows*Cols.
func (s Shape) Size() int {
	return s.Rows * s.Cols
}

// Valid reports whether both dimensions are positive.
func (s Shape) Valid() bool {
	return s.Rows > 0 && s.Cols > 0
}

// Matrix is a flattened row-major matrix.
type Matrix struct {
	Data  []float64
	Shape Shape
}

// New returns a matrix over data with the given shape. The data slice is
// used as-is; call Clone when the caller keeps mutating it.
func New(data []float64, rows, cols int) Matrix {
	return Matrix{Data: data, Shape: Shape{Rows: rows, Cols: cols}}
}

// Valid reports whether the matrix is well formed: non-empty data, positive
// dimensions and no more values than the shape can hold. Shorter data is
// allowed because pileups are sparse.
func (m Matrix) Valid() bool {
	return m.Shape.Valid() && len(m.Data) > 0 && len(m.Data) <= m.Shape.Size()
}

// At returns element (r, c), or Missing when the entry is absent.
// It does not validate r and c against the shape.
func (m Matrix) At(r, c int) float64 {
	i := r*m.Shape.Cols + c
	if i < 0 || i >= len(m.Data) {
		return Missing
	}
	return m.Data[i]
}

// Dense returns a copy of the data padded with Missing to Rows*Cols.
func (m Matrix) Dense() []float64 {
	out := make([]float64, m.Shape.Size())
	n := copy(out, m.Data)
	for i := n; i < len(out); i++ {
		out[i] = Missing
	}
	return out
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	data := make([]float64, len(m.Data))
	copy(data, m.Data)
	return Matrix{Data: data, Shape: m.Shape}
}

// Permute reorders the rows of m so that output row i is input row perm[i].
// perm must be a permutation of [0, Rows).
func Permute(m Matrix, perm []int) (Matrix, bool) {
	if !m.Valid() || len(perm) != m.Shape.Rows {
		return Matrix{}, false
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return Matrix{}, false
		}
		seen[p] = true
	}

	cols := m.Shape.Cols
	out := make([]float64, m.Shape.Size())
	for i, src := range perm {
		for c := 0; c < cols; c++ {
			out[i*cols+c] = m.At(src, c)
		}
	}
	return Matrix{Data: out, Shape: m.Shape}, true
}
