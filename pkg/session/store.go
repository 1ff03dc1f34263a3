package session

import (
	"sync"

	"github.com/technvi/voicebridge/internal/log"
)

// Store maps call identifiers to live sessions. Map access is locked
// because calls come and go on independent handler goroutines; each
// session's contents are owned by that call's own pumps.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a session under its call ID, replacing any stale
// entry with the same ID.
func (st *Store) Create(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.CallID] = s
}

// Get returns the session for a call, or nil.
func (st *Store) Get(callID string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[callID]
}

// GetOrCreate returns the session for a call, synthesizing a degraded
// anonymous session when the media stream connects without a prior
// webhook. defaultInstructions seeds the synthesized session.
func (st *Store) GetOrCreate(callID, defaultInstructions string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[callID]; ok {
		return s
	}

	log.Warn("no session for call, creating anonymous session", "call_id", callID)
	s := New(callID, "unknown", "unknown")
	s.Instructions = defaultInstructions
	st.sessions[callID] = s
	return s
}

// Delete removes a session. It reports whether the session existed,
// so callers can assert exactly-once cleanup.
func (st *Store) Delete(callID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[callID]; !ok {
		return false
	}
	delete(st.sessions, callID)
	return true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
