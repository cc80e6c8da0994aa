package matrixops

import (
	"fmt"
	"math"
)

// Aggregation selects how RectBin combines contributions to one cell.
type Aggregation string

const (
	AggregateSum  Aggregation = "sum"
	AggregateMean Aggregation = "mean"
)

// ParseAggregation maps a config string to an Aggregation. The empty string
// selects AggregateSum.
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(s) {
	case "", AggregateSum:
		return AggregateSum, nil
	case AggregateMean:
		return AggregateMean, nil
	default:
		return "", fmt.Errorf("unknown aggregation %q", s)
	}
}

// binIndex maps v in [lo, hi] onto [0, size). The upper boundary is closed:
// v == hi lands in the last bin.
func binIndex(v, lo, hi float64, size int) int {
	if hi-lo <= 0 {
		return 0
	}
	idx := int(math.Floor((v - lo) / (hi - lo) * float64(size)))
	return min(max(idx, 0), size-1)
}

// RectBin bins 2-D points into a size x size grid. points is a flat list of
// x, y pairs. Without overlay each point contributes 1; with overlay, point i
// contributes overlay[i]. AggregateMean divides each cell by its number of
// contributions. Cells without contributions are Missing. Row 0 of the
// result is the top of the grid, so a point in y bin b lands in row
// size-1-b. Points with a non-finite coordinate are skipped.
func RectBin(size int, points []float64, overlay []float64, agg Aggregation) ([][]float64, bool) {
	if size <= 0 || len(points) == 0 || len(points)%2 != 0 {
		return nil, false
	}
	n := len(points) / 2
	if overlay != nil && len(overlay) != n {
		return nil, false
	}
	if agg == "" {
		agg = AggregateSum
	}
	if agg != AggregateSum && agg != AggregateMean {
		return nil, false
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = points[2*i], points[2*i+1]
	}
	minX, okX := MinArray(xs)
	maxX, _ := MaxArray(xs)
	minY, okY := MinArray(ys)
	maxY, _ := MaxArray(ys)
	if !okX || !okY {
		return nil, false
	}

	sums := make([][]float64, size)
	counts := make([][]int, size)
	for r := range sums {
		sums[r] = make([]float64, size)
		counts[r] = make([]int, size)
	}

	for i := 0; i < n; i++ {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		weight := 1.0
		if overlay != nil {
			weight = overlay[i]
			if !isFinite(weight) {
				continue
			}
		}
		col := binIndex(xs[i], minX, maxX, size)
		row := size - 1 - binIndex(ys[i], minY, maxY, size)
		sums[row][col] += weight
		counts[row][col]++
	}

	grid := make([][]float64, size)
	for r := range grid {
		grid[r] = make([]float64, size)
		for c := range grid[r] {
			switch {
			case counts[r][c] == 0:
				grid[r][c] = Missing
			case agg == AggregateMean:
				grid[r][c] = sums[r][c] / float64(counts[r][c])
			default:
				grid[r][c] = sums[r][c]
			}
		}
	}
	return grid, true
}
