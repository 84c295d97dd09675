package vaultkeep

import (
	"errors"
	"fmt"
	"testing"
)

func TestDecryptionError(t *testing.T) {
	err := fmt.Errorf("load record: %w", &DecryptionError{
		RecordID: "rec-1",
		Field:    "secret",
	})

	if !errors.Is(err, ErrDecryptionFailed) {
		t.Error("errors.Is(err, ErrDecryptionFailed) = false")
	}

	var decErr *DecryptionError
	if !errors.As(err, &decErr) {
		t.Fatal("errors.As(err, *DecryptionError) = false")
	}
	if decErr.RecordID != "rec-1" || decErr.Field != "secret" {
		t.Errorf("DecryptionError = %+v", decErr)
	}

	var keepErr VaultKeepError
	if !errors.As(err, &keepErr) {
		t.Error("errors.As(err, VaultKeepError) = false")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "push", Failed: 3, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if msg := err.Error(); msg == "" {
		t.Error("Error() is empty")
	}

	var netErr *NetworkError
	if !errors.As(fmt.Errorf("sync: %w", err), &netErr) {
		t.Fatal("errors.As(err, *NetworkError) = false")
	}
	if netErr.Failed != 3 {
		t.Errorf("Failed = %d, want 3", netErr.Failed)
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("database is locked")
	err := &StorageError{Op: "upsert vault item", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	var stErr *StorageError
	if !errors.As(err, &stErr) {
		t.Error("errors.As(err, *StorageError) = false")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidPassword,
		ErrNotInitialized,
		ErrAlreadyInitialized,
		ErrCorruptParams,
		ErrDecryptionFailed,
		ErrSessionLocked,
		ErrNotFound,
		ErrSyncInProgress,
		ErrClientClosed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v", a, b)
			}
		}
	}
}
