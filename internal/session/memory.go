package session

import (
	"context"
	"sync"
	"time"

	"github.com/lucaferri/campusgate/internal/auth"
)

// MemoryStore is an in-process Store for single-node deployments and
// tests. A janitor goroutine sweeps expired entries; reads also check
// expiry so a stale entry is never returned between sweeps.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	tokenID   string
	roles     auth.RoleSet
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// NewMemoryStore creates the store and starts its janitor.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if entry.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryStore) set(key string, entry memoryEntry) {
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

func (s *MemoryStore) get(key string) (memoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || entry.expired(time.Now()) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (s *MemoryStore) delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *MemoryStore) SetTokenID(_ context.Context, userID string, kind auth.TokenKind, tokenID string, ttl time.Duration) error {
	s.set(tokenKey(userID, kind), memoryEntry{tokenID: tokenID, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemoryStore) GetTokenID(_ context.Context, userID string, kind auth.TokenKind) (string, error) {
	entry, ok := s.get(tokenKey(userID, kind))
	if !ok {
		return "", nil
	}
	return entry.tokenID, nil
}

func (s *MemoryStore) DeleteTokenID(_ context.Context, userID string, kind auth.TokenKind) error {
	s.delete(tokenKey(userID, kind))
	return nil
}

func (s *MemoryStore) SetRoles(_ context.Context, userID string, roles auth.RoleSet, ttl time.Duration) error {
	copied := make(auth.RoleSet, len(roles))
	for name := range roles {
		copied[name] = struct{}{}
	}
	s.set(rolesKey(userID), memoryEntry{roles: copied, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemoryStore) GetRoles(_ context.Context, userID string) (auth.RoleSet, bool, error) {
	entry, ok := s.get(rolesKey(userID))
	if !ok {
		return nil, false, nil
	}
	return entry.roles, true, nil
}

func (s *MemoryStore) DeleteRoles(_ context.Context, userID string) error {
	s.delete(rolesKey(userID))
	return nil
}

func (s *MemoryStore) HealthCheck(context.Context) error { return nil }

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
