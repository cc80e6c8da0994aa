// Package testutil provides fixtures for hicolink tests.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// DensePileup renders a pileup file in the dense layout the loader accepts.
// Data is row major; NaN entries are written as null.
func DensePileup(rows, cols int, data ...float64) string {
	cells := make([]string, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			cells[i] = "null"
			continue
		}
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf(`{"data": [%s], "shape": [%d, %d]}`, strings.Join(cells, ", "), rows, cols)
}

// CenterPileup renders a rows x 3 pileup whose center column holds center
// and whose flanks are zero, so its center-column sort keys are obvious.
func CenterPileup(center ...float64) string {
	data := make([]float64, 0, 3*len(center))
	for _, v := range center {
		data = append(data, 0, v, 0)
	}
	return DensePileup(len(center), 3, data...)
}

// SetupDataDir creates a temporary data directory holding files, a map of
// relative paths to contents. It is removed when the test completes.
func SetupDataDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		WriteFile(t, dir, path, content)
	}
	return dir
}

// WriteFile writes content to dir/path, creating parent directories.
func WriteFile(t *testing.T, dir, path, content string) string {
	t.Helper()

	fullPath := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return fullPath
}
