package paramstore

import (
	"errors"
	"sync"
)

// ParamsKey is the single entry name under which the serialized vault key
// parameters are stored.
const ParamsKey = "vault_key_params"

// ErrNotFound is returned by Get when no parameters have been stored.
var ErrNotFound = errors.New("vault key params not found")

// Store persists the serialized vault key parameters.
type Store interface {
	// Get returns the stored parameters, or ErrNotFound.
	Get() ([]byte, error)

	// Set atomically replaces the stored parameters.
	Set(data []byte) error

	// Delete removes the stored parameters. Deleting a missing entry is
	// not an error.
	Delete() error
}

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements Store.
func (m *MemoryStore) Get() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Set implements Store.
func (m *MemoryStore) Set(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make([]byte, len(data))
	copy(m.data, data)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}
