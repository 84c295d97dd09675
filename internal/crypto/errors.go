package crypto

import "errors"

var (
	// ErrDecryptionFailed is returned when authenticated decryption fails.
	// It deliberately does not distinguish a wrong key from tampered data.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidSaltSize is returned when a KDF salt is shorter than
	// MinSaltSize.
	ErrInvalidSaltSize = errors.New("invalid salt size")

	// ErrCiphertextTooShort is returned when an encrypted blob is too short
	// to contain a nonce and an authentication tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)
