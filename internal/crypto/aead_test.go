package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	return key
}

func TestEncrypt_Decrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"simple", []byte("hello world")},
		{"json", []byte(`{"title": "Bank", "secret": "p@ss"}`)},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}},
		{"unicode", []byte("pässwörd 🔑 秘密")},
		{"large", make([]byte, 100000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := testKey(t)

			blob, err := Encrypt(key, tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			// Blob should be nonce + ciphertext + tag
			expectedLen := NonceSize + len(tt.plaintext) + TagSize
			if len(blob) != expectedLen {
				t.Errorf("blob length = %d, want %d", len(blob), expectedLen)
			}

			decrypted, err := Decrypt(key, blob)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("same input")

	first, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(first, second) {
		t.Error("two encryptions of the same plaintext produced identical blobs")
	}
	if bytes.Equal(first[:NonceSize], second[:NonceSize]) {
		t.Error("two encryptions reused the same nonce")
	}
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
	}{
		{"empty", 0},
		{"too short", 16},
		{"too long", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			if _, err := Encrypt(key, []byte("test")); !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("Encrypt() error = %v, want ErrInvalidKeySize", err)
			}
			if _, err := Decrypt(key, make([]byte, NonceSize+TagSize)); !errors.Is(err, ErrInvalidKeySize) {
				t.Errorf("Decrypt() error = %v, want ErrInvalidKeySize", err)
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	blob, err := Encrypt(testKey(t), []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decrypt(testKey(t), blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	key := testKey(t)
	blob, err := Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	// Flip one bit in every position and verify decryption always fails
	// with the same generic error.
	for i := range blob {
		tampered := bytes.Clone(blob)
		tampered[i] ^= 0x01

		if _, err := Decrypt(key, tampered); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("Decrypt() of blob tampered at byte %d error = %v, want ErrDecryptionFailed", i, err)
		}
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	key := testKey(t)

	for _, n := range []int{0, 1, NonceSize, NonceSize + TagSize - 1} {
		if _, err := Decrypt(key, make([]byte, n)); !errors.Is(err, ErrCiphertextTooShort) {
			t.Errorf("Decrypt() of %d-byte blob error = %v, want ErrCiphertextTooShort", n, err)
		}
	}
}

func TestDecryptWithNonce(t *testing.T) {
	key := testKey(t)
	blob, err := Encrypt(key, []byte("wrapped key material"))
	if err != nil {
		t.Fatal(err)
	}

	plaintext, err := DecryptWithNonce(key, blob[:NonceSize], blob[NonceSize:])
	if err != nil {
		t.Fatalf("DecryptWithNonce() error = %v", err)
	}
	if string(plaintext) != "wrapped key material" {
		t.Errorf("plaintext = %q", plaintext)
	}

	if _, err := DecryptWithNonce(key, blob[:NonceSize-1], blob[NonceSize:]); !errors.Is(err, ErrInvalidNonceSize) {
		t.Errorf("short nonce error = %v, want ErrInvalidNonceSize", err)
	}
}

func TestEncryptField_DecryptField_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"simple", "p@ss"},
		{"unicode", "日本語のメモ ✓"},
		{"newlines", "line1\nline2\r\nline3"},
		{"long", strings.Repeat("x", 1<<16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := testKey(t)

			encoded, err := EncryptField(key, tt.value)
			if err != nil {
				t.Fatalf("EncryptField() error = %v", err)
			}
			if encoded == "" {
				t.Fatal("EncryptField() returned empty string")
			}

			decoded, err := DecryptField(key, encoded)
			if err != nil {
				t.Fatalf("DecryptField() error = %v", err)
			}
			if decoded != tt.value {
				t.Errorf("DecryptField() = %q, want %q", decoded, tt.value)
			}
		})
	}
}

func TestDecryptField_InvalidBase64(t *testing.T) {
	if _, err := DecryptField(testKey(t), "not!base64"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("DecryptField() error = %v, want ErrDecryptionFailed", err)
	}
}
