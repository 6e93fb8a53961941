package session

import (
	"log"
	"sync"
	"time"
)

// Persister is durable storage for the whole session map. The store is
// loaded wholesale at startup and overwritten wholesale on save.
type Persister interface {
	Load() (map[string]*Session, error)
	Save(map[string]*Session) error
}

// Store owns the in-memory session map. All mutation goes through Get,
// Update and Flush; Update applies its mutator under the store lock so two
// handlers in the same turn cannot lose each other's field writes.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	saver *Saver
	now   func() time.Time
}

// NewStore loads the session map from p. A load failure degrades to an
// empty store: lost state is preferred to a crash loop at startup.
func NewStore(p Persister, debounce time.Duration) *Store {
	sessions, err := p.Load()
	if err != nil {
		log.Printf("[session] critical: load failed, starting empty: %v", err)
		sessions = make(map[string]*Session)
	}
	if sessions == nil {
		sessions = make(map[string]*Session)
	}
	log.Printf("[session] loaded %d session(s)", len(sessions))

	s := &Store{sessions: sessions, now: time.Now}
	s.saver = NewSaver(debounce, func() error {
		if err := p.Save(s.snapshot()); err != nil {
			log.Printf("[session] save failed, keeping state in memory: %v", err)
			return err
		}
		return nil
	})
	return s
}

// Get returns a copy of the session for id, creating a default one on first
// sight. Creation schedules a persistence write immediately.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		log.Printf("[session] new user: %s", id)
		sess = newSession()
		s.sessions[id] = sess
		defer s.saver.Schedule()
	}
	sess.LastActivity = s.now().UnixMilli()
	return sess.clone()
}

// Update applies fn to the session for id under the store lock, refreshes
// LastActivity and schedules a debounced persistence write. The session is
// created first if id is unseen.
func (s *Store) Update(id string, fn func(*Session)) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = newSession()
		s.sessions[id] = sess
	}
	fn(sess)
	sess.LastActivity = s.now().UnixMilli()
	s.mu.Unlock()
	s.saver.Schedule()
}

// Peek returns a copy of the session for id without creating one and
// without touching LastActivity. Used by the ops surface.
func (s *Store) Peek(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.clone(), true
}

// Len reports the number of known sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Flush cancels any pending debounced write and saves synchronously. Used
// on shutdown.
func (s *Store) Flush() error {
	return s.saver.Flush()
}

func (s *Store) snapshot() map[string]*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Session, len(s.sessions))
	for id, sess := range s.sessions {
		out[id] = sess.clone()
	}
	return out
}
