// Package identity derives the session and visitor ids that tag every event.
package identity

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// Storage keys, shared with the page script so either side can read them.
const (
	SessionKey = "analytics_session_id"
	UserKey    = "analytics_user_id"
)

// ErrNotFound is returned by a Store when key has no value.
var ErrNotFound = errors.New("identity: key not found")

// Store is one storage tier. Implementations return ErrNotFound for a
// missing key; any other error means the tier is unavailable.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Resolver reads or creates the ids. SessionStore is the per-session tier,
// PersistentStore survives sessions.
type Resolver struct {
	SessionStore    Store
	PersistentStore Store
}

func NewResolver(session, persistent Store) *Resolver {
	return &Resolver{SessionStore: session, PersistentStore: persistent}
}

// SessionID returns the id stored in the session tier, creating it if absent.
func (r *Resolver) SessionID() string {
	return resolve(r.SessionStore, SessionKey)
}

// UserID returns the id stored in the persistent tier, creating it if absent.
func (r *Resolver) UserID() string {
	return resolve(r.PersistentStore, UserKey)
}

// resolve never fails: without a working store every call gets a fresh id.
func resolve(store Store, key string) string {
	if store == nil {
		return Generate()
	}
	id, err := store.Get(key)
	if err == nil && id != "" {
		return id
	}
	id = Generate()
	if err == nil || errors.Is(err, ErrNotFound) {
		_ = store.Set(key, id)
	}
	return id
}

const idTemplate = "xxxx-xxxx-xxxx"

const hexDigits = "0123456789abcdef"

// Generate fills the xxxx-xxxx-xxxx template with random hex digits. The
// result is an analytics identifier, not a secret.
func Generate() string {
	b := []byte(idTemplate)
	for i, c := range b {
		if c == 'x' {
			b[i] = hexDigits[rand.IntN(16)]
		}
	}
	return string(b)
}

// MemoryStore is a process lifetime tier, the stand-in for sessionStorage.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Clear drops every value, as closing the tab clears sessionStorage.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
}
