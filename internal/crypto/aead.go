package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// Encrypt encrypts plaintext using AES-256-GCM with a fresh random nonce.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes)
func Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// Decrypt decrypts a blob produced by Encrypt.
// The blob format is: nonce (12 bytes) || ciphertext || tag (16 bytes)
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	if len(blob) < NonceSize+TagSize {
		return nil, ErrCiphertextTooShort
	}

	return decryptAESGCM(key, blob[:NonceSize], blob[NonceSize:])
}

// DecryptWithNonce decrypts ciphertext||tag under an explicitly supplied
// nonce. Used for stored key-wrap blobs where the nonce is persisted as a
// separate field.
func DecryptWithNonce(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), NonceSize)
	}

	if len(ciphertext) < TagSize {
		return nil, ErrCiphertextTooShort
	}

	return decryptAESGCM(key, nonce, ciphertext)
}

func decryptAESGCM(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// EncryptField encrypts a field value and encodes it as a single opaque
// base64 string: base64(nonce || ciphertext || tag).
func EncryptField(key []byte, plaintext string) (string, error) {
	blob, err := Encrypt(key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return ToBase64(blob), nil
}

// DecryptField reverses EncryptField.
func DecryptField(key []byte, encoded string) (string, error) {
	blob, err := FromBase64(encoded)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plaintext, err := Decrypt(key, blob)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
