package pileup

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/matrixops"
)

// Loader reads pileup files whose base name matches a glob pattern from one
// directory of a filesystem.
type Loader struct {
	fs      afero.Fs
	dir     string
	pattern glob.Glob
	log2    bool
}

// NewLoader creates a Loader over dir on fs. pattern is matched against base
// file names (for example "*.json").
func NewLoader(fs afero.Fs, dir, pattern string, log2 bool) (*Loader, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError("invalid data pattern").
			WithField("data.pattern").WithValue(pattern).WithCause(err)
	}
	return &Loader{fs: fs, dir: dir, pattern: g, log2: log2}, nil
}

// Dir returns the directory the loader reads from.
func (l *Loader) Dir() string { return l.dir }

// Match reports whether path's base name matches the loader pattern.
func (l *Loader) Match(path string) bool {
	return l.pattern.Match(filepath.Base(path))
}

// DatasetName derives a dataset name from a file path: the base name without
// its extension.
func DatasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load decodes a single file. Relative paths are resolved against the
// loader directory.
func (l *Loader) Load(path string) (matrixops.Matrix, error) {
	if !filepath.IsAbs(path) && l.dir != "" {
		path = filepath.Join(l.dir, path)
	}
	f, err := l.fs.Open(path)
	if err != nil {
		return matrixops.Matrix{}, errors.NewDataError("cannot open pileup", err).
			WithPath(path).WithDataset(DatasetName(path))
	}
	defer f.Close()

	m, err := Decode(f, l.log2)
	if err != nil {
		return matrixops.Matrix{}, errors.NewDataError("cannot decode pileup", err).
			WithPath(path).WithDataset(DatasetName(path))
	}
	return m, nil
}

// Files lists the matching files in the loader directory, sorted by name.
func (l *Loader) Files() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		return nil, errors.NewDataError("cannot list data directory", err).WithPath(l.dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !l.pattern.Match(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(l.dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// LoadAll decodes every matching file and returns the matrices keyed by
// dataset name. Files that fail are skipped; their errors are joined into
// the returned error alongside whatever did load.
func (l *Loader) LoadAll() (map[string]matrixops.Matrix, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}

	out := make(map[string]matrixops.Matrix, len(files))
	var errs []error
	for _, path := range files {
		m, err := l.Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[DatasetName(path)] = m
	}
	return out, errors.Join(errs...)
}
