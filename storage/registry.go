package storage

import (
	"sync"
	"time"

	"coldreach/models"
	"coldreach/queue"
)

// Session bundles one authenticated user's queue state for the lifetime of
// their login. Nothing here survives the session: there is no database.
type Session struct {
	Email string
	Store *queue.Store
	Nav   *queue.Navigator

	mu       sync.Mutex
	inFlight map[int]bool
}

// NewSession creates session state seeded with the given prospects.
func NewSession(email string, prospects []models.Prospect, sender models.SenderInfo, subject string) *Session {
	store := queue.NewStore(prospects, sender, subject)
	return &Session{
		Email:    email,
		Store:    store,
		Nav:      queue.NewNavigator(store),
		inFlight: make(map[int]bool),
	}
}

// BeginSend marks a send attempt for a prospect as in flight. It returns
// false when one is already running, so a second concurrent send for the
// same prospect never starts.
func (s *Session) BeginSend(prospectID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[prospectID] {
		return false
	}
	s.inFlight[prospectID] = true
	return true
}

// EndSend clears the in-flight flag. Callers defer this immediately after a
// successful BeginSend so the flag is released on every path.
func (s *Session) EndSend(prospectID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, prospectID)
}

type registryItem struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps per-token session state in memory with idle expiration.
type Registry struct {
	mu    sync.RWMutex
	items map[string]*registryItem
	ttl   time.Duration
}

// NewRegistry creates a session registry whose entries expire after ttl of
// inactivity.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		items: make(map[string]*registryItem),
		ttl:   ttl,
	}

	// Start cleanup goroutine
	go r.cleanupLoop()

	return r
}

// Get returns the session for a token and refreshes its idle timer.
func (r *Registry) Get(token string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[token]
	if !ok {
		return nil, false
	}
	if time.Since(item.lastSeen) > r.ttl {
		delete(r.items, token)
		return nil, false
	}
	item.lastSeen = time.Now()
	return item.session, true
}

// Put registers session state under a token.
func (r *Registry) Put(token string, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[token] = &registryItem{session: session, lastSeen: time.Now()}
}

// Delete drops a session (logout).
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, token)
}

// Size returns the number of live sessions.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// cleanupLoop periodically removes expired sessions
func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.cleanup()
	}
}

func (r *Registry) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for token, item := range r.items {
		if now.Sub(item.lastSeen) > r.ttl {
			delete(r.items, token)
		}
	}
}
