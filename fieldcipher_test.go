package vaultkeep

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vaultkeep/client-go/internal/crypto"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	key, err := crypto.NewDataKey()
	if err != nil {
		t.Fatal(err)
	}
	return newSession(key)
}

func TestEncryptItem_DecryptItem_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	deleted := now.Add(time.Hour)

	tests := []struct {
		name string
		item *VaultItem
	}{
		{
			name: "all fields",
			item: &VaultItem{
				ID:        "11111111-1111-1111-1111-111111111111",
				Title:     "Bank",
				Username:  String("alice"),
				Secret:    String("p@ss"),
				URL:       String("https://bank.example"),
				Note:      String("second floor branch"),
				UpdatedAt: now,
			},
		},
		{
			name: "title only",
			item: &VaultItem{ID: "id-2", Title: "Untitled", UpdatedAt: now},
		},
		{
			name: "empty strings are not nil",
			item: &VaultItem{
				ID:        "id-3",
				Title:     "",
				Username:  String(""),
				Secret:    String(""),
				UpdatedAt: now,
			},
		},
		{
			name: "unicode and long values",
			item: &VaultItem{
				ID:        "id-4",
				Title:     "日本の銀行 🏦",
				Secret:    String(strings.Repeat("纳秒", 10000)),
				Note:      String("line1\nline2\ttab\r\n"),
				UpdatedAt: now,
			},
		},
		{
			name: "deleted record keeps tombstone",
			item: &VaultItem{
				ID:        "id-5",
				Title:     "Old",
				UpdatedAt: now,
				DeletedAt: &deleted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTestSession(t)

			enc, err := session.EncryptItem(tt.item)
			if err != nil {
				t.Fatalf("EncryptItem() error = %v", err)
			}

			// Clear metadata stays clear.
			if enc.ID != tt.item.ID {
				t.Errorf("ID = %q, want %q", enc.ID, tt.item.ID)
			}
			if !enc.UpdatedAt.Equal(tt.item.UpdatedAt) {
				t.Errorf("UpdatedAt = %v, want %v", enc.UpdatedAt, tt.item.UpdatedAt)
			}
			if (enc.DeletedAt == nil) != (tt.item.DeletedAt == nil) {
				t.Errorf("DeletedAt = %v, want %v", enc.DeletedAt, tt.item.DeletedAt)
			}

			// Nil fields stay nil; present fields become non-empty blobs.
			if (enc.Username == nil) != (tt.item.Username == nil) {
				t.Error("Username nil-ness changed by encryption")
			}
			if tt.item.Secret != nil {
				if enc.Secret == nil || *enc.Secret == "" || *enc.Secret == *tt.item.Secret {
					t.Error("Secret was not replaced by a ciphertext blob")
				}
			}

			got, err := session.DecryptItem(enc)
			if err != nil {
				t.Fatalf("DecryptItem() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.item) {
				t.Errorf("round trip = %+v, want %+v", got, tt.item)
			}
		})
	}
}

func TestEncryptItem_WrongKeyRejected(t *testing.T) {
	item := &VaultItem{ID: "id-1", Title: "Bank", Secret: String("p@ss"), UpdatedAt: time.Now()}

	enc, err := newTestSession(t).EncryptItem(item)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := newTestSession(t).DecryptItem(enc); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("DecryptItem() with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptItem_FreshNoncesPerField(t *testing.T) {
	session := newTestSession(t)
	item := &VaultItem{
		ID:        "id-1",
		Title:     "Bank",
		Username:  String("alice"),
		Secret:    String("p@ss"),
		UpdatedAt: time.Now(),
	}

	first, err := session.EncryptItem(item)
	if err != nil {
		t.Fatal(err)
	}
	second, err := session.EncryptItem(item)
	if err != nil {
		t.Fatal(err)
	}

	if first.Title == second.Title {
		t.Error("title ciphertexts identical across encryptions")
	}
	if *first.Username == *second.Username {
		t.Error("username ciphertexts identical across encryptions")
	}
	if *first.Secret == *second.Secret {
		t.Error("secret ciphertexts identical across encryptions")
	}

	// Fields are encrypted independently, so identical plaintext in two
	// fields must not produce identical blobs either.
	same := &VaultItem{ID: "id-2", Title: "x", Username: String("dup"), Note: String("dup"), UpdatedAt: time.Now()}
	enc, err := session.EncryptItem(same)
	if err != nil {
		t.Fatal(err)
	}
	if *enc.Username == *enc.Note {
		t.Error("two fields with equal plaintext share a ciphertext")
	}
}

func TestDecryptItem_SingleFieldFailureFailsRecord(t *testing.T) {
	session := newTestSession(t)
	item := &VaultItem{
		ID:        "id-1",
		Title:     "Bank",
		Username:  String("alice"),
		Secret:    String("p@ss"),
		UpdatedAt: time.Now(),
	}

	enc, err := session.EncryptItem(item)
	if err != nil {
		t.Fatal(err)
	}

	corrupted := *enc
	corrupted.Secret = String("AAAA" + (*enc.Secret)[4:])

	_, err = session.DecryptItem(&corrupted)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("DecryptItem() error = %v, want ErrDecryptionFailed", err)
	}

	var de *DecryptionError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a *DecryptionError", err)
	}
	if de.Field != "secret" {
		t.Errorf("DecryptionError.Field = %q, want %q", de.Field, "secret")
	}
	if de.RecordID != "id-1" {
		t.Errorf("DecryptionError.RecordID = %q, want %q", de.RecordID, "id-1")
	}
}

func TestSession_LockBlocksCrypto(t *testing.T) {
	session := newTestSession(t)
	item := &VaultItem{ID: "id-1", Title: "Bank", UpdatedAt: time.Now()}

	enc, err := session.EncryptItem(item)
	if err != nil {
		t.Fatal(err)
	}

	session.Lock()

	if !session.Locked() {
		t.Error("Locked() = false after Lock()")
	}
	if _, err := session.EncryptItem(item); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("EncryptItem() after lock error = %v, want ErrSessionLocked", err)
	}
	if _, err := session.DecryptItem(enc); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("DecryptItem() after lock error = %v, want ErrSessionLocked", err)
	}

	// Locking twice is safe.
	session.Lock()
}

func TestSession_LockZeroesKey(t *testing.T) {
	key, err := crypto.NewDataKey()
	if err != nil {
		t.Fatal(err)
	}
	session := newSession(key)
	session.Lock()

	for i, b := range key {
		if b != 0 {
			t.Fatalf("key byte %d = %x after Lock(), want 0", i, b)
		}
	}
}
