// Package session is the client-local key-value store holding the bearer
// token, the cached user profile and the small amount of UI state that
// survives restarts.
//
// The store persists to session.json in the state directory. When that is
// impossible it silently degrades to an in-memory session for the rest of
// the process; callers never see a storage error.
package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/logging"
)

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	kv       backend
	degraded bool
}

// Open returns a store persisted under dir.
func Open(dir string) *Store {
	b, err := openFile(dir)
	if b == nil {
		logging.Warn(fmt.Sprintf("Session storage unavailable, using in-memory session: %v", err))
		return &Store{kv: newMemoryBackend(nil), degraded: true}
	}
	if err != nil {
		logging.Warn(fmt.Sprintf("Ignoring unreadable session file: %v", err))
	}
	return &Store{kv: b}
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{kv: newMemoryBackend(nil)}
}

// Persistent reports whether changes reach disk.
func (s *Store) Persistent() bool {
	return s.Path() != ""
}

// Path is the session file, or "" for an in-memory session.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fb, ok := s.kv.(*fileBackend); ok {
		return fb.path
	}
	return ""
}

// update must be called with s.mu held for writing.
func (s *Store) update(set map[string]string, del ...string) {
	err := s.kv.update(set, del)
	if err == nil {
		return
	}
	if !s.degraded {
		logging.Warn(fmt.Sprintf("Session storage unavailable, using in-memory session: %v", err))
		s.degraded = true
	}
	mem := newMemoryBackend(s.kv.entries())
	_ = mem.update(set, del)
	s.kv = mem
}

// ----------------------------------------------------------------------------
// Authentication
// ----------------------------------------------------------------------------

// SetToken stores token. The API client reads it on its next request.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		s.update(nil, keyToken)
		return
	}
	s.update(map[string]string{keyToken: token})
}

// Token returns the stored token, or "" when signed out. It satisfies
// api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, _ := s.kv.get(keyToken)
	return tok
}

// SetUser caches the display profile. A nil user removes it.
func (s *Store) SetUser(u *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.update(nil, keyUser)
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	s.update(map[string]string{keyUser: string(data)})
}

// User returns the cached profile. A profile without a token is stale and
// reported as absent.
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLocked()
}

func (s *Store) userLocked() *api.User {
	if tok, _ := s.kv.get(keyToken); tok == "" {
		return nil
	}
	raw, ok := s.kv.get(keyUser)
	if !ok {
		return nil
	}
	var u api.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// Snapshot returns token and user read under one lock.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, _ := s.kv.get(keyToken)
	return Session{Token: tok, User: s.userLocked()}
}

// Clear removes token and user in a single change.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(nil, keyToken, keyUser)
}

// IsAuthenticated is true iff a token is stored.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// TokenExpiry reads the exp claim of the stored token without verifying its
// signature. ok is false when there is no token or it carries no expiry.
func (s *Store) TokenExpiry() (exp time.Time, ok bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// ----------------------------------------------------------------------------
// UI state
// ----------------------------------------------------------------------------

// Navigation returns the persisted address fragment and history.
func (s *Store) Navigation() Navigation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n Navigation
	if raw, ok := s.kv.get(keyNavigation); ok {
		_ = json.Unmarshal([]byte(raw), &n)
	}
	return n
}

// SetNavigation persists the address fragment and history.
func (s *Store) SetNavigation(n Navigation) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, _ := s.kv.get(keyNavigation); cur == string(data) {
		return
	}
	s.update(map[string]string{keyNavigation: string(data)})
}

// CompletedSections returns the Level 0 section ids marked complete, sorted.
func (s *Store) CompletedSections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sectionsLocked()
}

func (s *Store) sectionsLocked() []string {
	raw, ok := s.kv.get(keySections)
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

// MarkSectionComplete records id as done. It reports false when id was
// already complete.
func (s *Store) MarkSectionComplete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.sectionsLocked()
	for _, existing := range ids {
		if existing == id {
			return false
		}
	}
	ids = append(ids, id)
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return false
	}
	s.update(map[string]string{keySections: string(data)})
	return true
}
