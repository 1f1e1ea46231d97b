// Package session binds opaque tokens to identity keys. The token travels in
// a cookie; everything else stays server-side so a nickname rebind can update
// the active binding atomically with the registry.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session lives without being refreshed.
const DefaultTTL = 7 * 24 * time.Hour

// Store maps opaque session tokens to the current identity key.
type Store interface {
	// Create issues a new token bound to username.
	Create(ctx context.Context, username string) (string, error)
	// Lookup returns the identity key for token, or "" if the token is
	// unknown or expired. A hit refreshes the TTL.
	Lookup(ctx context.Context, token string) (string, error)
	// Bind repoints an existing token at a new identity key.
	Bind(ctx context.Context, token, username string) error
	// Destroy invalidates the token.
	Destroy(ctx context.Context, token string) error
}

type memoryEntry struct {
	username string
	expires  time.Time
}

// MemoryStore is the in-process fallback used when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, username string) (string, error) {
	token := uuid.NewString()
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpired(now)
	s.sessions[token] = memoryEntry{username: username, expires: now.Add(s.ttl)}
	return token, nil
}

// purgeExpired drops dead sessions so abandoned tokens do not accumulate.
// Called with mu held; the map stays small enough that a sweep per Create is
// fine.
func (s *MemoryStore) purgeExpired(now time.Time) {
	for token, entry := range s.sessions {
		if now.After(entry.expires) {
			delete(s.sessions, token)
		}
	}
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok {
		return "", nil
	}
	if time.Now().After(entry.expires) {
		delete(s.sessions, token)
		return "", nil
	}
	entry.expires = time.Now().Add(s.ttl)
	s.sessions[token] = entry
	return entry.username, nil
}

func (s *MemoryStore) Bind(_ context.Context, token, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok {
		return nil
	}
	entry.username = username
	s.sessions[token] = entry
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
