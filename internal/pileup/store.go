package pileup

import (
	"sync"

	"github.com/hicognition/hicolink/internal/matrixops"
)

// Key identifies a widget. Widget ids are only unique within a collection.
type Key struct {
	CollectionID string
	WidgetID     string
}

// Store holds the matrix each widget displays. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	matrices map[Key]matrixops.Matrix
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{matrices: make(map[Key]matrixops.Matrix)}
}

// Put stores a copy of m for key, replacing any previous matrix.
func (s *Store) Put(key Key, m matrixops.Matrix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrices[key] = m.Clone()
}

// Get returns the matrix stored for key.
func (s *Store) Get(key Key) (matrixops.Matrix, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matrices[key]
	return m, ok
}

// Delete removes the matrix for key.
func (s *Store) Delete(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matrices, key)
}

// DeleteCollection removes every matrix in a collection.
func (s *Store) DeleteCollection(collectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.matrices {
		if k.CollectionID == collectionID {
			delete(s.matrices, k)
		}
	}
}

// Rename moves the matrix stored under oldID to newID within a collection.
// It reports false if there was nothing to move or newID is taken.
func (s *Store) Rename(collectionID, oldID, newID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := Key{CollectionID: collectionID, WidgetID: oldID}
	to := Key{CollectionID: collectionID, WidgetID: newID}
	m, ok := s.matrices[from]
	if !ok {
		return false
	}
	if _, taken := s.matrices[to]; taken {
		return false
	}
	delete(s.matrices, from)
	s.matrices[to] = m
	return true
}

// Len returns the number of stored matrices.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matrices)
}

// Clear removes every matrix.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrices = make(map[Key]matrixops.Matrix)
}
