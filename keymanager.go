package vaultkeep

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vaultkeep/client-go/internal/crypto"
	"github.com/vaultkeep/client-go/internal/paramstore"
)

// vaultKeyParams is the persisted per-device key record: everything needed
// to re-derive the password key and unwrap the data key. All byte fields
// are base64 in the stored JSON. Algs pins the ciphersuite the params were
// written with; params from an unknown suite are rejected rather than
// misinterpreted.
type vaultKeyParams struct {
	Algs           string `json:"algs"`
	Salt           string `json:"salt"`
	Iterations     uint32 `json:"iterations"`
	WrapNonce      string `json:"wrapNonce"`
	WrappedDataKey string `json:"wrappedDataKey"`
}

// KeyManager owns the vault key parameters. It derives the password key
// from the master password, wraps and unwraps the data key, and rotates
// the wrapping on password change. The data key itself is random, created
// once at setup, and constant for the vault's lifetime: a password change
// re-wraps it without touching any encrypted records.
type KeyManager struct {
	params     paramstore.Store
	iterations uint32
}

// NewKeyManager creates a key manager over the given parameter store.
func NewKeyManager(params paramstore.Store, opts ...Option) *KeyManager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &KeyManager{
		params:     params,
		iterations: cfg.iterations,
	}
}

// IsInitialized reports whether vault key parameters exist.
func (m *KeyManager) IsInitialized() bool {
	_, err := m.params.Get()
	return err == nil
}

// Initialize sets up a new vault: it generates a random salt and data key,
// derives the password key, wraps the data key under it, and persists the
// key parameters. Fails with ErrAlreadyInitialized if parameters exist.
func (m *KeyManager) Initialize(password string) error {
	if m.IsInitialized() {
		return ErrAlreadyInitialized
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}

	dataKey, err := crypto.NewDataKey()
	if err != nil {
		return err
	}
	defer crypto.Zero(dataKey)

	return m.wrapAndStore(password, salt, dataKey)
}

// Unlock re-derives the password key from the stored salt and iteration
// count and attempts to unwrap the data key. On success it returns a
// Session owning the key. A tag failure surfaces as ErrInvalidPassword;
// a wrong password and a tampered wrap blob are indistinguishable.
func (m *KeyManager) Unlock(password string) (*Session, error) {
	params, err := m.loadParams()
	if err != nil {
		return nil, err
	}

	salt, err := crypto.FromBase64(params.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt encoding", ErrCorruptParams)
	}
	nonce, err := crypto.FromBase64(params.WrapNonce)
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce encoding", ErrCorruptParams)
	}
	wrapped, err := crypto.FromBase64(params.WrappedDataKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad wrapped key encoding", ErrCorruptParams)
	}

	passwordKey, err := crypto.DeriveKey(password, salt, params.Iterations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptParams, err)
	}
	defer crypto.Zero(passwordKey)

	dataKey, err := crypto.DecryptWithNonce(passwordKey, nonce, wrapped)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptParams, err)
	}
	if len(dataKey) != crypto.KeySize {
		crypto.Zero(dataKey)
		return nil, fmt.Errorf("%w: unwrapped key has wrong size", ErrCorruptParams)
	}

	return newSession(dataKey), nil
}

// ChangePassword rotates the wrapping key. It unlocks with the old password
// to recover the data key, derives a new salt and password key from the new
// password, re-wraps the same data key, and only then replaces the stored
// parameters. The store's Set is an atomic swap: if persisting fails the
// old parameters remain valid, so there is no window where the vault is
// unopenable. Existing encrypted records are untouched.
func (m *KeyManager) ChangePassword(oldPassword, newPassword string) error {
	session, err := m.Unlock(oldPassword)
	if err != nil {
		return err
	}
	defer session.Lock()

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}

	return session.withKey(func(dataKey []byte) error {
		return m.wrapAndStore(newPassword, salt, dataKey)
	})
}

func (m *KeyManager) wrapAndStore(password string, salt, dataKey []byte) error {
	passwordKey, err := crypto.DeriveKey(password, salt, m.iterations)
	if err != nil {
		return err
	}
	defer crypto.Zero(passwordKey)

	blob, err := crypto.Encrypt(passwordKey, dataKey)
	if err != nil {
		return err
	}

	params := vaultKeyParams{
		Algs:           crypto.AlgsCiphersuite,
		Salt:           crypto.ToBase64(salt),
		Iterations:     m.iterations,
		WrapNonce:      crypto.ToBase64(blob[:crypto.NonceSize]),
		WrappedDataKey: crypto.ToBase64(blob[crypto.NonceSize:]),
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to serialize key params: %w", err)
	}

	if err := m.params.Set(data); err != nil {
		return &StorageError{Op: "persist key params", Err: err}
	}
	return nil
}

func (m *KeyManager) loadParams() (*vaultKeyParams, error) {
	data, err := m.params.Get()
	if err != nil {
		if errors.Is(err, paramstore.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, &StorageError{Op: "load key params", Err: err}
	}

	params := &vaultKeyParams{}
	if err := json.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptParams, err)
	}
	if params.Salt == "" || params.WrapNonce == "" || params.WrappedDataKey == "" || params.Iterations == 0 {
		return nil, fmt.Errorf("%w: missing fields", ErrCorruptParams)
	}
	if params.Algs != crypto.AlgsCiphersuite {
		return nil, fmt.Errorf("%w: unsupported ciphersuite %q", ErrCorruptParams, params.Algs)
	}
	return params, nil
}
