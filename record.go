package vaultkeep

import "time"

// String returns a pointer to s, for populating optional record fields.
func String(s string) *string { return &s }

// VaultItem is a plaintext vault record. Optional fields use pointers: nil
// means absent, which survives an encrypt/decrypt round trip as distinct
// from a present-but-empty string.
type VaultItem struct {
	ID       string
	Title    string
	Username *string
	Secret   *string
	URL      *string
	Note     *string

	// UpdatedAt orders writes for last-write-wins conflict resolution.
	// It is maintained by the client on every save and stays unencrypted.
	UpdatedAt time.Time

	// DeletedAt marks a soft delete. Deletion is an ordinary field update
	// under LWW; records are never physically removed by sync.
	DeletedAt *time.Time
}

// EncryptedVaultItem is the encrypted variant of a VaultItem. The shape is
// identical; Title and every present optional field hold an opaque
// base64(nonce || ciphertext || tag) blob, each sealed with its own fresh
// nonce. ID, UpdatedAt and DeletedAt remain in clear for indexing and sync
// ordering.
type EncryptedVaultItem struct {
	ID       string
	Title    string
	Username *string
	Secret   *string
	URL      *string
	Note     *string

	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Note is a notebook record. Notes carry no secrets and are stored and
// synced in plaintext.
type Note struct {
	ID      string
	Title   string
	Content string
	Tags    string

	UpdatedAt time.Time
	DeletedAt *time.Time
}
