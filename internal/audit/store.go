package audit

import (
	"errors"
	"sync"

	"github.com/vinodismyname/sellerscope/config"
)

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("audit: session not found")

// Store keeps sessions in memory. When full, creating a session evicts the
// least recently used one.
type Store struct {
	mu       sync.Mutex
	limit    int
	opts     Options
	sessions map[string]*Session
}

// NewStore returns a store holding at most limit sessions created with opts.
func NewStore(limit int, opts Options) *Store {
	if limit <= 0 {
		limit = config.DefaultMaxSessions
	}
	return &Store{limit: limit, opts: opts, sessions: make(map[string]*Session)}
}

// Create opens a new session, evicting the least recently used one if the
// store is full.
func (st *Store) Create() *Session {
	s := NewSession(st.opts)
	st.mu.Lock()
	defer st.mu.Unlock()
	for len(st.sessions) >= st.limit {
		st.evictLocked()
	}
	st.sessions[s.ID] = s
	return s
}

func (st *Store) evictLocked() {
	var oldest *Session
	for _, s := range st.sessions {
		if oldest == nil || s.LastUsed().Before(oldest.LastUsed()) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(st.sessions, oldest.ID)
	}
}

// Get returns the session with id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session with id, or a new session when id is empty.
func (st *Store) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return st.Create(), nil
	}
	return st.Get(id)
}

// Delete drops a session and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
