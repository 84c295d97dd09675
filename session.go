package vaultkeep

import (
	"sync"

	"github.com/vaultkeep/client-go/internal/crypto"
)

// Session owns the in-memory data key for an unlocked vault. It is the only
// holder of decrypted key material: there is no ambient or global key state.
// A session permits field encryption and decryption until Lock is called.
//
// Sessions are safe for concurrent use. Callers should Lock the session on
// logout, app suspension, or any other trust-boundary transition; the key
// is wiped from memory and every later crypto call fails with
// ErrSessionLocked.
type Session struct {
	mu  sync.RWMutex
	key []byte
}

// newSession takes ownership of key.
func newSession(key []byte) *Session {
	return &Session{key: key}
}

// Lock wipes the data key and invalidates the session. Safe to call more
// than once.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		crypto.Zero(s.key)
		s.key = nil
	}
}

// Locked reports whether the session has been locked.
func (s *Session) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key == nil
}

// withKey runs fn with the data key while holding the session read lock,
// so Lock cannot wipe the key out from under a crypto operation.
func (s *Session) withKey(fn func(key []byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return ErrSessionLocked
	}
	return fn(s.key)
}
