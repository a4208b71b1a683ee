package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store holds live sessions keyed by ID. Sessions exist only in memory and
// die with the process; there is no persistence.
type Store struct {
	mu       sync.RWMutex
	gen      Generator
	sessions map[string]*Controller
}

// NewStore creates an empty store whose sessions share one generator.
func NewStore(gen Generator) *Store {
	return &Store{gen: gen, sessions: make(map[string]*Controller)}
}

// Create registers a new session and returns its ID.
func (st *Store) Create() string {
	id := uuid.NewString()

	st.mu.Lock()
	st.sessions[id] = NewController(st.gen)
	st.mu.Unlock()

	log.Debug().Str("session_id", id).Msg("Session created")
	return id
}

// Get returns the controller for a session ID.
func (st *Store) Get(id string) (*Controller, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ctrl, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return ctrl, nil
}

// Delete removes a session entirely.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
