// Package memory provides the in-process cache store used when the remote
// store cannot be reached. Each process gets its own independent copy, so in a
// horizontally scaled deployment invalidations do not reach other instances.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

// Store is a map of key to entry guarded by a mutex. Expired entries are
// evicted lazily when they are read or listed; there is no sweeper.
type Store struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty in-process store.
func NewStore(opts ...Option) *Store {
	s := &Store{entries: make(map[string]cache.Entry), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value when the entry is live; a dead entry is removed and
// reported as a miss.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.Live(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, true
}

// Set overwrites key unconditionally. ttl <= 0 never expires.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	// copy so later mutation of the caller's slice cannot change the entry
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.entries[key] = cache.Entry{Value: stored, StoredAt: s.now(), TTL: ttl}
	s.mu.Unlock()
}

// Delete removes key if present.
func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeleteByPattern removes every key matching the Redis-style glob pattern.
func (s *Store) DeleteByPattern(_ context.Context, pattern string) int {
	match := compile(pattern)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if match(k) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Keys lists live keys matching pattern in sorted order.
func (s *Store) Keys(_ context.Context, pattern string) []string {
	match := compile(pattern)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		if match(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of live entries.
func (s *Store) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	return len(s.entries)
}

// FlushAll clears the map.
func (s *Store) FlushAll(_ context.Context) {
	s.mu.Lock()
	s.entries = make(map[string]cache.Entry)
	s.mu.Unlock()
}

func (s *Store) evictExpiredLocked() {
	now := s.now()
	for k, e := range s.entries {
		if !e.Live(now) {
			delete(s.entries, k)
		}
	}
}

// compile turns a Redis MATCH glob into a matcher. Without separators '*'
// spans ':' the way Redis does. A pattern gobwas cannot parse degrades to
// substring containment with the wildcards stripped.
func compile(pattern string) func(string) bool {
	g, err := glob.Compile(toGobwas(pattern))
	if err == nil {
		return g.Match
	}
	needle := strings.NewReplacer("*", "", "?", "").Replace(pattern)
	return func(key string) bool { return strings.Contains(key, needle) }
}

// toGobwas rewrites Redis glob syntax into gobwas syntax: class negation
// "[^" becomes "[!", and braces and commas, which Redis treats as literals,
// are escaped so they are not read as alternation.
func toGobwas(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 4)
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			b.WriteByte(c)
			if i+1 < len(pattern) {
				i++
				b.WriteByte(pattern[i])
			}
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			inClass = true
			b.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('!')
				i++
			}
		case c == '{' || c == '}' || c == ',':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var _ ports.CacheStore = (*Store)(nil)
