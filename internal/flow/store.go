package flow

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// SessionStore keeps sessions in process memory keyed by uuid. Each entry
// carries its own lock: one logical request mutates a session at a time,
// and concurrent tabs resolve to last-write-wins.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]*sessionEntry)}
}

// Create allocates a fresh session on the upload page.
func (st *SessionStore) Create() domain.Session {
	s := domain.NewSession(uuid.NewString())
	st.mu.Lock()
	st.entries[s.ID] = &sessionEntry{session: s}
	st.mu.Unlock()
	return *s
}

// View returns a copy of the session, if it exists.
func (st *SessionStore) View(id string) (domain.Session, bool) {
	st.mu.RLock()
	entry, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return domain.Session{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.session, true
}

// Update runs fn while holding the session's lock. The callback receives
// the live session struct; mutations it makes are the new state regardless
// of whether it also returns an error, so failed transitions can still
// record guard redirects.
func (st *SessionStore) Update(id string, fn func(*domain.Session) error) (domain.Session, error) {
	st.mu.RLock()
	entry, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	err := fn(entry.session)
	return *entry.session, err
}
