package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Collection names used for sync cursors.
const (
	CollectionNotes      = "notes"
	CollectionVaultItems = "vault_items"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_deleted ON notes(deleted_at);

CREATE TABLE IF NOT EXISTS vault_items (
	id TEXT PRIMARY KEY,

	-- Field-level ciphertext (base64 of nonce || ciphertext || tag).
	-- id, updated_at and deleted_at stay in clear for indexing and sync.
	title_enc TEXT NOT NULL,
	username_enc TEXT NULL,
	secret_enc TEXT NULL,
	url_enc TEXT NULL,
	note_enc TEXT NULL,

	updated_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP NULL
);

CREATE INDEX IF NOT EXISTS idx_vault_items_updated ON vault_items(updated_at);
CREATE INDEX IF NOT EXISTS idx_vault_items_deleted ON vault_items(deleted_at);

CREATE TABLE IF NOT EXISTS sync_state (
	collection TEXT PRIMARY KEY,
	last_synced_at TIMESTAMP NOT NULL
);
`

// Store is the local SQLite-backed record store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the local database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// NoteRow is a notes table row.
type NoteRow struct {
	ID        string
	Title     string
	Content   string
	Tags      string
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// VaultItemRow is a vault_items table row. Field values are opaque
// ciphertext strings; nil means the field is absent on the plaintext
// record, which is distinct from an encrypted empty string.
type VaultItemRow struct {
	ID          string
	TitleEnc    string
	UsernameEnc *string
	SecretEnc   *string
	URLEnc      *string
	NoteEnc     *string
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
