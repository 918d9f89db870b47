// Package presence tracks the live cursors of connected participants. It is
// ephemeral by construction and never shares storage with the shape store.
package presence

import (
	"sort"
	"sync"
)

// Cursor is one participant's pointer in world coordinates and active tool.
type Cursor struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Tool string  `json:"tool"`
}

// Entry pairs a cursor with its connection identifier.
type Entry struct {
	ID string
	Cursor
}

// Presence maps connection identifiers to cursors. Safe for concurrent use.
type Presence struct {
	mu      sync.RWMutex
	cursors map[string]Cursor
}

func New() *Presence {
	return &Presence{cursors: make(map[string]Cursor)}
}

// Set creates or updates the cursor of id.
func (p *Presence) Set(id string, c Cursor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursors[id] = c
}

// Remove deletes the cursor of id and reports whether it existed.
func (p *Presence) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.cursors[id]
	delete(p.cursors, id)
	return ok
}

func (p *Presence) Get(id string) (Cursor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.cursors[id]
	return c, ok
}

// All returns every cursor sorted by identifier.
func (p *Presence) All() []Entry {
	p.mu.RLock()
	out := make([]Entry, 0, len(p.cursors))
	for id, c := range p.cursors {
		out = append(out, Entry{ID: id, Cursor: c})
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cursors)
}
