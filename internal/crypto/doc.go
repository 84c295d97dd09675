// Package crypto provides the cryptographic primitives for the vaultkeep SDK.
// It implements authenticated encryption for record fields and key wrapping,
// and password-based key derivation for the vault master password.
//
// # Algorithm Suite
//
// The package uses the following algorithms:
//
//   - AES-256-GCM: Authenticated encryption with associated data (AEAD)
//     for encrypting record fields and wrapping the data key. Provides
//     confidentiality and integrity with a 128-bit authentication tag.
//
//   - PBKDF2-HMAC-SHA256 (RFC 8018): Password-based key derivation for
//     turning the master password into a 256-bit wrapping key. The
//     iteration count is stored alongside the salt so it can be raised
//     for new vaults without breaking existing ones.
//
// # Critical Security Notes
//
// AES-GCM nonces MUST be unique for each encryption with the same key.
// Nonce reuse completely breaks the security of AES-GCM, allowing attackers
// to recover the authentication key and forge messages. [Encrypt] draws a
// fresh 12-byte nonce from crypto/rand on every call; there is no API that
// accepts a caller-supplied nonce.
//
// Decryption fails closed: any authentication failure surfaces as the single
// [ErrDecryptionFailed] sentinel. Callers cannot distinguish a wrong key from
// tampered ciphertext, which prevents oracle attacks.
//
// Keys derived or unwrapped by this package should be wiped with [Zero] as
// soon as they are no longer needed. They must never be logged, transmitted,
// or persisted in cleartext.
package crypto
