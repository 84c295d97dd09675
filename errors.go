package vaultkeep

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidPassword is returned by Unlock when the password does not
	// unwrap the data key. It is deliberately generic: the caller cannot
	// tell a mistyped password from tampered key parameters.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrNotInitialized is returned when no vault key parameters exist yet.
	ErrNotInitialized = errors.New("vault is not initialized")

	// ErrAlreadyInitialized is returned by Initialize when key parameters
	// already exist.
	ErrAlreadyInitialized = errors.New("vault is already initialized")

	// ErrCorruptParams is returned when stored vault key parameters cannot
	// be parsed.
	ErrCorruptParams = errors.New("vault key params are corrupt")

	// ErrDecryptionFailed is returned when a record field fails
	// authenticated decryption.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrSessionLocked is returned when field crypto is attempted on a
	// locked session.
	ErrSessionLocked = errors.New("session is locked")

	// ErrNotFound is returned when a record does not exist locally.
	ErrNotFound = errors.New("record not found")

	// ErrSyncInProgress is returned when a push is requested while one is
	// already running for the same user.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrClientClosed is returned when operations are attempted on a
	// closed client.
	ErrClientClosed = errors.New("client has been closed")
)

// VaultKeepError is implemented by all typed SDK errors.
type VaultKeepError interface {
	error
	VaultKeepError() // marker method
}

// DecryptionError reports which record field failed to decrypt. Any single
// field failure fails the whole record; no partial plaintext is surfaced.
type DecryptionError struct {
	RecordID string
	Field    string
	Err      error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("failed to decrypt field %q of record %s", e.Field, e.RecordID)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// VaultKeepError implements the VaultKeepError interface.
func (e *DecryptionError) VaultKeepError() {}

// NetworkError represents a remote push or pull failure. Network errors are
// recoverable: the affected records stay dirty and are retried on the next
// sync cycle, and local operations are never blocked by them.
type NetworkError struct {
	Op     string // "push", "pull"
	Failed int    // records that could not be transmitted
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Failed > 0 {
		return fmt.Sprintf("network error during %s (%d records failed): %v", e.Op, e.Failed, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// VaultKeepError implements the VaultKeepError interface.
func (e *NetworkError) VaultKeepError() {}

// StorageError represents a local persistence failure. It is fatal to the
// specific operation but does not affect other records.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// VaultKeepError implements the VaultKeepError interface.
func (e *StorageError) VaultKeepError() {}
