package session

import (
	"errors"
	"sync"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session: not found")

// Manager is a registry of live sessions. Baselines are session-scoped
// and never shared across sessions.
type Manager struct {
	client UpstreamClient

	mu       sync.RWMutex
	sessions map[string]*Session

	onCount func(int)
}

// NewManager creates a session manager.
func NewManager(client UpstreamClient) *Manager {
	return &Manager{
		client:   client,
		sessions: make(map[string]*Session),
	}
}

// OnCountChange sets a callback invoked with the session count after
// every create or delete.
func (m *Manager) OnCountChange(fn func(int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCount = fn
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := New(m.client)

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	fn := m.onCount
	m.mu.Unlock()

	if fn != nil {
		fn(count)
	}
	return s
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	count := len(m.sessions)
	fn := m.onCount
	m.mu.Unlock()

	if fn != nil {
		fn(count)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
