// Package store keeps the ordered shape sequence of a board. Insertion order
// is render order: later entries draw on top.
package store

import (
	"sync"

	"github.com/HaaL01/whiteboard/internal/shape"
)

// Store is an append-only sequence of shapes with in-place field patches.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	shapes []shape.Shape
	index  map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Append inserts s at the end. A shape whose id is already present is
// dropped and Append reports false. Freehand segments always append.
func (st *Store) Append(s shape.Shape) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.appendLocked(s)
}

func (st *Store) appendLocked(s shape.Shape) bool {
	if id := s.ShapeID(); id != "" {
		if _, exists := st.index[id]; exists {
			return false
		}
		st.index[id] = len(st.shapes)
	}
	st.shapes = append(st.shapes, s)
	return true
}

// FindByID returns the shape with the given id.
func (st *Store) FindByID(id string) (shape.Shape, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	i, ok := st.index[id]
	if !ok {
		return nil, false
	}
	return st.shapes[i], true
}

// Patch overwrites the named fields of the shape with the given id, keeping
// its position in the sequence. An unknown id is a no-op reporting false. A
// field value that does not fit the shape leaves it untouched and returns
// the decode error.
func (st *Store) Patch(id string, fields shape.Fields) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i, ok := st.index[id]
	if !ok {
		return false, nil
	}
	patched, err := shape.Patch(st.shapes[i], fields)
	if err != nil {
		return false, err
	}
	st.shapes[i] = patched
	return true, nil
}

// ReplaceAll swaps the whole sequence, as on receipt of a history snapshot.
// Duplicate ids within shapes keep their first occurrence.
func (st *Store) ReplaceAll(shapes []shape.Shape) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.shapes = make([]shape.Shape, 0, len(shapes))
	st.index = make(map[string]int, len(shapes))
	for _, s := range shapes {
		st.appendLocked(s)
	}
}

// All returns a copy of the sequence in render order.
func (st *Store) All() []shape.Shape {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]shape.Shape, len(st.shapes))
	copy(out, st.shapes)
	return out
}

// Len returns the number of shapes.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.shapes)
}
