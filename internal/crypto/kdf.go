package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives a 32-byte password key using PBKDF2-HMAC-SHA256.
// Deterministic: the same password, salt and iteration count always yield
// the same key. The result is used only to wrap and unwrap the data key,
// never to encrypt record fields directly.
func DeriveKey(password string, salt []byte, iterations uint32) ([]byte, error) {
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: got %d, want at least %d", ErrInvalidSaltSize, len(salt), MinSaltSize)
	}
	if iterations == 0 {
		return nil, fmt.Errorf("iteration count must be positive")
	}

	return pbkdf2.Key([]byte(password), salt, int(iterations), KeySize, sha256.New), nil
}

// NewSalt generates a fresh random KDF salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// NewDataKey generates a fresh random 32-byte data key.
func NewDataKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}
	return key, nil
}
