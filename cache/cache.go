package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Store is a TTL-bounded response cache keyed by hashed request identity.
// It is owned by the serving layer; repository functions never touch it.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	maxAge  time.Duration
}

type entry struct {
	body        []byte
	contentType string
	storedAt    time.Time
}

func New(maxAge time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		maxAge:  maxAge,
	}
}

// Key derives a cache key from the parts identifying a response,
// typically the route path plus its query string.
func Key(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		h.WriteString(p)
		h.WriteString("\x00")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (s *Store) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, "", false
	}
	if time.Since(e.storedAt) > s.maxAge {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, "", false
	}
	return e.body, e.contentType, true
}

func (s *Store) Set(key string, body []byte, contentType string) {
	buf := make([]byte, len(body))
	copy(buf, body)

	s.mu.Lock()
	s.entries[key] = entry{body: buf, contentType: contentType, storedAt: time.Now()}
	s.mu.Unlock()
}

// Clear drops every cached response. Mutating handlers call this so stale
// listings never outlive a write by more than the handler's own latency.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// ClearExpired removes entries past their TTL. Useful for long-running
// processes where expired entries would otherwise only vanish on read.
func (s *Store) ClearExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if time.Since(e.storedAt) > s.maxAge {
			delete(s.entries, key)
		}
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
