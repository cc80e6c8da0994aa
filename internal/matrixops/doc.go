// Package matrixops implements the numeric kernels behind pileup widgets:
// row reordering, row/column extraction, aggregation, percentile ranks and
// 2-D binning over flattened row-major matrices.
//
// # Data Model
//
// A [Matrix] stores its values in a single row-major slice together with a
// [Shape]. Element (r, c) lives at r*Cols + c. Pileups are sparse: entries
// that were never populated are missing rather than zero. Missing values are
// represented by NaN (see [Missing] and [IsMissing]), and a Data slice that is
// shorter than Rows*Cols is treated as if the tail were missing.
//
// # Failure Policy
//
// Absence of data is an expected outcome for these kernels, not a fault.
// Every operation that can fail on malformed input (empty data, a shape that
// does not match the data, an out-of-range index, an out-of-range percentile)
// returns its zero value together with ok == false. Nothing in this package
// panics or returns an error, so callers must check ok before using a result.
//
// # Determinism
//
// All operations are pure and deterministic. Sorting is stable: ties keep
// their original relative order in both ascending and descending direction,
// and missing sort keys are placed after every present key.
//
// # Rounding and Boundary Conventions
//
//   - [Percentile] and [PerMilRank] pick the element at index
//     ceil((n-1)*p/scale) of the sorted finite values (nearest rank, rounded
//     upward, no interpolation).
//   - [RectBin] uses a closed upper boundary: a point exactly at the maximum
//     X or Y falls into the last bin. Output row 0 is the top of the grid.
package matrixops
