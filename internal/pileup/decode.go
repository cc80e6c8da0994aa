package pileup

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/matrixops"
)

// fileJSON covers both accepted layouts; whichever fields are present
// decide how it is read.
type fileJSON struct {
	Variable map[string]int      `json:"variable"`
	Group    map[string]int      `json:"group"`
	Value    map[string]*float64 `json:"value"`
	Data     []*float64          `json:"data"`
	Shape    []int               `json:"shape"`
}

// Decode reads one pileup from r. With log2 every value is replaced by its
// base-2 logarithm, and zero or null values become missing. Any structural
// problem yields an error wrapping errors.ErrMalformedPileup.
func Decode(r io.Reader, log2 bool) (matrixops.Matrix, error) {
	var raw fileJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return matrixops.Matrix{}, fmt.Errorf("%w: %v", errors.ErrMalformedPileup, err)
	}

	var m matrixops.Matrix
	var err error
	switch {
	case raw.Shape != nil:
		m, err = decodeDense(raw)
	case raw.Variable != nil:
		m, err = decodeFrame(raw)
	default:
		return matrixops.Matrix{}, fmt.Errorf("%w: neither variable/group/value nor data/shape present", errors.ErrMalformedPileup)
	}
	if err != nil {
		return matrixops.Matrix{}, err
	}

	if log2 {
		for i, v := range m.Data {
			if v == 0 || matrixops.IsMissing(v) {
				m.Data[i] = matrixops.Missing
				continue
			}
			m.Data[i] = math.Log2(v)
		}
	}
	return m, nil
}

func decodeDense(raw fileJSON) (matrixops.Matrix, error) {
	if len(raw.Shape) != 2 {
		return matrixops.Matrix{}, fmt.Errorf("%w: shape must have two entries, got %d", errors.ErrMalformedPileup, len(raw.Shape))
	}
	data := make([]float64, len(raw.Data))
	for i, v := range raw.Data {
		if v == nil {
			data[i] = matrixops.Missing
			continue
		}
		data[i] = *v
	}
	m := matrixops.New(data, raw.Shape[0], raw.Shape[1])
	if !m.Valid() {
		return matrixops.Matrix{}, fmt.Errorf("%w: %d values do not fit shape %dx%d",
			errors.ErrMalformedPileup, len(data), raw.Shape[0], raw.Shape[1])
	}
	return m, nil
}

func decodeFrame(raw fileJSON) (matrixops.Matrix, error) {
	if len(raw.Variable) == 0 {
		return matrixops.Matrix{}, fmt.Errorf("%w: no records", errors.ErrNoData)
	}

	rows, cols := 0, 0
	for key, r := range raw.Variable {
		c, ok := raw.Group[key]
		if !ok {
			return matrixops.Matrix{}, fmt.Errorf("%w: record %s has no group", errors.ErrMalformedPileup, key)
		}
		if r < 0 || c < 0 {
			return matrixops.Matrix{}, fmt.Errorf("%w: record %s has a negative index", errors.ErrMalformedPileup, key)
		}
		rows = max(rows, r+1)
		cols = max(cols, c+1)
	}

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = matrixops.Missing
	}
	for key, r := range raw.Variable {
		if _, err := strconv.Atoi(key); err != nil {
			return matrixops.Matrix{}, fmt.Errorf("%w: record key %q is not an index", errors.ErrMalformedPileup, key)
		}
		if v := raw.Value[key]; v != nil {
			data[r*cols+raw.Group[key]] = *v
		}
	}
	return matrixops.New(data, rows, cols), nil
}
