package api

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rustyeddy/stocksim/paper"
)

// SessionRegistry maps uuid handles to live paper sessions. A default
// session always exists so single-user callers never have to create one.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*paper.Session
	def      *paper.Session
}

// NewSessionRegistry creates a registry whose default session starts with
// initialCash.
func NewSessionRegistry(initialCash float64, opts ...paper.Option) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*paper.Session),
		def:      paper.NewSession(initialCash, opts...),
	}
}

// Create starts a new session and returns its handle.
func (r *SessionRegistry) Create(initialCash float64) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = paper.NewSession(initialCash)
	return id
}

// Get resolves a session handle. An empty id returns the default session.
func (r *SessionRegistry) Get(id string) (*paper.Session, bool) {
	if id == "" {
		return r.def, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete discards a session. The default session cannot be deleted, only
// reset.
func (r *SessionRegistry) Delete(id string) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}
