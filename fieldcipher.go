package vaultkeep

import (
	"github.com/vaultkeep/client-go/internal/crypto"
)

// EncryptItem encrypts every populated field of a vault item independently,
// each with its own fresh nonce. Fields are never concatenated before
// encryption: a single compromised field blob exposes only that field, and
// clear metadata (ID, UpdatedAt, DeletedAt) stays sortable without
// decryption. Nil fields stay nil; empty strings encrypt to valid blobs and
// round-trip back to empty strings.
func (s *Session) EncryptItem(item *VaultItem) (*EncryptedVaultItem, error) {
	enc := &EncryptedVaultItem{
		ID:        item.ID,
		UpdatedAt: item.UpdatedAt,
		DeletedAt: item.DeletedAt,
	}

	err := s.withKey(func(key []byte) error {
		var err error
		if enc.Title, err = crypto.EncryptField(key, item.Title); err != nil {
			return err
		}
		if enc.Username, err = encryptOptional(key, item.Username); err != nil {
			return err
		}
		if enc.Secret, err = encryptOptional(key, item.Secret); err != nil {
			return err
		}
		if enc.URL, err = encryptOptional(key, item.URL); err != nil {
			return err
		}
		if enc.Note, err = encryptOptional(key, item.Note); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// DecryptItem reverses EncryptItem field by field. If any single field
// fails to authenticate the whole record fails with a DecryptionError
// naming the field; partial records are never surfaced.
func (s *Session) DecryptItem(enc *EncryptedVaultItem) (*VaultItem, error) {
	item := &VaultItem{
		ID:        enc.ID,
		UpdatedAt: enc.UpdatedAt,
		DeletedAt: enc.DeletedAt,
	}

	err := s.withKey(func(key []byte) error {
		var err error
		if item.Title, err = crypto.DecryptField(key, enc.Title); err != nil {
			return &DecryptionError{RecordID: enc.ID, Field: "title", Err: err}
		}
		if item.Username, err = decryptOptional(key, enc.Username); err != nil {
			return &DecryptionError{RecordID: enc.ID, Field: "username", Err: err}
		}
		if item.Secret, err = decryptOptional(key, enc.Secret); err != nil {
			return &DecryptionError{RecordID: enc.ID, Field: "secret", Err: err}
		}
		if item.URL, err = decryptOptional(key, enc.URL); err != nil {
			return &DecryptionError{RecordID: enc.ID, Field: "url", Err: err}
		}
		if item.Note, err = decryptOptional(key, enc.Note); err != nil {
			return &DecryptionError{RecordID: enc.ID, Field: "note", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func encryptOptional(key []byte, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	enc, err := crypto.EncryptField(key, *value)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

func decryptOptional(key []byte, enc *string) (*string, error) {
	if enc == nil {
		return nil, nil
	}
	value, err := crypto.DecryptField(key, *enc)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
