package paramstore

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name used when none is
// configured.
const DefaultKeyringService = "vaultkeep"

// KeyringStore stores the vault key parameters in the OS keyring
// (Keychain on macOS, Credential Manager on Windows, Secret Service on
// Linux). The payload is base64-encoded since keyrings store strings.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring-backed store under the given service
// name.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

// Get implements Store.
func (k *KeyringStore) Get() ([]byte, error) {
	s, err := keyring.Get(k.service, ParamsKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("keyring get: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keyring payload is not valid base64: %w", err)
	}
	return data, nil
}

// Set implements Store.
func (k *KeyringStore) Set(data []byte) error {
	if err := keyring.Set(k.service, ParamsKey, base64.StdEncoding.EncodeToString(data)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (k *KeyringStore) Delete() error {
	err := keyring.Delete(k.service, ParamsKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
