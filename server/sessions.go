package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spektr-org/askdata/dataset"
)

// Sessions is an in-memory map of session id → uploaded table.
// It is the only mutable state the server shares between requests.
type Sessions struct {
	mu     sync.RWMutex
	tables map[string]*dataset.Frame
}

// NewSessions returns an empty store.
func NewSessions() *Sessions {
	return &Sessions{tables: make(map[string]*dataset.Frame)}
}

// Put stores t under a fresh session id.
func (s *Sessions) Put(t *dataset.Frame) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.tables[id] = t
	s.mu.Unlock()
	return id
}

// Get returns the table for id.
func (s *Sessions) Get(id string) (*dataset.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}

// Delete drops a session. Unknown ids are ignored.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	delete(s.tables, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
