package session

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/hicognition/hicolink/internal/errors"
	"github.com/hicognition/hicolink/internal/registry"
)

// Layout describes collections and their widgets. LoadLayout mounts one;
// Snapshot produces one, so a snapshot can be loaded again.
type Layout struct {
	Collections []CollectionLayout `yaml:"collections"`
}

// CollectionLayout is one collection of a Layout.
type CollectionLayout struct {
	ID      string            `yaml:"id,omitempty"`
	Config  map[string]string `yaml:"config,omitempty"`
	Widgets []registry.Widget `yaml:"widgets"`
}

// ParseLayout decodes a YAML layout.
func ParseLayout(r io.Reader) (Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return Layout{}, errors.NewValidationError("invalid layout").WithCause(err)
	}
	return l, nil
}

// LoadLayout reads a layout file and mounts every collection and widget in
// it. Relative widget file paths are resolved against the layout's
// directory. Sharing relationships recorded in the file are ignored; they
// only live as long as a session.
func (s *Session) LoadLayout(path string) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return errors.NewDataError("cannot read layout", err).WithPath(path)
	}
	layout, err := ParseLayout(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, path)
	}
	return s.Mount(layout, filepath.Dir(path))
}

// Mount creates the collections and widgets of a layout. baseDir resolves
// relative widget file paths.
func (s *Session) Mount(layout Layout, baseDir string) error {
	var errs []error
	for _, c := range layout.Collections {
		cid, err := s.CreateCollection(c.ID, c.Config)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range c.Widgets {
			rec.CollectionID = cid
			rec.SortOrder.Relationship = registry.Relationship{}
			rec.ValueScale.Relationship = registry.Relationship{}
			if rec.File != "" && !filepath.IsAbs(rec.File) && baseDir != "" {
				rec.File = filepath.Join(baseDir, rec.File)
			}
			if _, err := s.AddWidget(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Snapshot asks every widget to persist its state and returns the result as
// a Layout.
func (s *Session) Snapshot() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.Serialize()

	var layout Layout
	for _, c := range s.registry.Collections() {
		widgets, err := s.registry.Widgets(c.ID)
		if err != nil {
			continue
		}
		layout.Collections = append(layout.Collections, CollectionLayout{
			ID:      c.ID,
			Config:  c.Config,
			Widgets: widgets,
		})
	}
	return layout
}

// WriteSnapshot encodes Snapshot as YAML.
func (s *Session) WriteSnapshot(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Snapshot()); err != nil {
		return err
	}
	return enc.Close()
}

// WriteSnapshotFile writes the snapshot to path without ever leaving a
// partially written file behind.
func (s *Session) WriteSnapshotFile(path string) error {
	var buf bytes.Buffer
	if err := s.WriteSnapshot(&buf); err != nil {
		return err
	}
	return atomicWriteFile(s.fs, path, buf.Bytes(), 0644)
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over path.
func atomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpFile, err := afero.TempFile(fs, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			fs.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
