package vaultkeep

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vaultkeep/client-go/internal/paramstore"
	"github.com/vaultkeep/client-go/internal/storage"
)

// Client wires together the local store, key manager, sync engine and
// offline coordinator. It is the record service the application layer talks
// to: saves and reads go through the local store unconditionally, sync
// state never blocks them, and sensitive vault item fields are encrypted
// and decrypted at this boundary using an unlocked Session.
type Client struct {
	store  *storage.Store
	keys   *KeyManager
	engine *Engine
	coord  *Coordinator
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens the local database at path and assembles a client around it.
// The remote store and connectivity stream are supplied by the application;
// pass a nil remote to run fully local (pushes are no-ops, nothing is
// transmitted, and records simply accumulate in the local store).
func Open(path string, remote RemoteStore, connectivity <-chan bool, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	params := cfg.paramStore
	if params == nil {
		params = paramstore.NewKeyringStore(cfg.keyringService)
	}

	store, err := storage.Open(path)
	if err != nil {
		return nil, &StorageError{Op: "open database", Err: err}
	}

	engine := NewEngine(store, remote, opts...)
	return &Client{
		store:  store,
		keys:   NewKeyManager(params, opts...),
		engine: engine,
		coord:  NewCoordinator(engine, connectivity, opts...),
		log:    cfg.logger,
	}, nil
}

// Keys returns the key manager for initialize/unlock/change-password.
func (c *Client) Keys() *KeyManager {
	return c.keys
}

// Sync returns the sync engine, for wiring the application's remote
// subscription into ApplyRemoteItem and ApplyRemoteNote.
func (c *Client) Sync() *Engine {
	return c.engine
}

// StartSync begins syncing for the given user. Offline-safe: if there is no
// connectivity the request is parked and resumes when the connection
// returns.
func (c *Client) StartSync(userID string) {
	c.coord.StartSync(userID)
}

// StopSync stops background syncing. Local operations are unaffected.
func (c *Client) StopSync() {
	c.coord.StopSync()
}

// SyncState reports what the background sync is currently doing.
func (c *Client) SyncState() SyncState {
	return c.coord.State()
}

// SaveItem encrypts and persists a vault item. A missing ID is assigned,
// and UpdatedAt is stamped with the current time so the write participates
// in LWW ordering; both are written back to item.
func (c *Client) SaveItem(ctx context.Context, session *Session, item *VaultItem) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	if item.ID == "" {
		item.ID = storage.NewID()
	}
	item.UpdatedAt = touch()

	enc, err := session.EncryptItem(item)
	if err != nil {
		return err
	}

	if err := c.store.UpsertVaultItem(ctx, encryptedItemToRow(enc)); err != nil {
		return &StorageError{Op: "save vault item", Err: err}
	}
	return nil
}

// GetItem loads and decrypts a vault item by id. Soft-deleted items are
// returned with DeletedAt set.
func (c *Client) GetItem(ctx context.Context, session *Session, id string) (*VaultItem, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	row, err := c.store.GetVaultItem(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load vault item", Err: err}
	}

	return session.DecryptItem(rowToEncryptedItem(row))
}

// ListItems loads and decrypts all active vault items, newest first. Any
// record that fails to decrypt fails the whole listing; partial results are
// never returned.
func (c *Client) ListItems(ctx context.Context, session *Session) ([]*VaultItem, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := c.store.ListVaultItems(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list vault items", Err: err}
	}

	items := make([]*VaultItem, 0, len(rows))
	for _, row := range rows {
		item, err := session.DecryptItem(rowToEncryptedItem(row))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteItem soft-deletes a vault item. The tombstone propagates through
// sync as an ordinary LWW field update.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	if err := c.store.MarkVaultItemDeleted(ctx, id, touch()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "delete vault item", Err: err}
	}
	return nil
}

// SaveNote persists a note. Notes are plaintext and need no session.
func (c *Client) SaveNote(ctx context.Context, note *Note) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	if note.ID == "" {
		note.ID = storage.NewID()
	}
	note.UpdatedAt = touch()

	if err := c.store.UpsertNote(ctx, noteToRow(note)); err != nil {
		return &StorageError{Op: "save note", Err: err}
	}
	return nil
}

// GetNote loads a note by id.
func (c *Client) GetNote(ctx context.Context, id string) (*Note, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	row, err := c.store.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load note", Err: err}
	}
	return rowToNote(row), nil
}

// ListNotes loads all active notes, newest first.
func (c *Client) ListNotes(ctx context.Context) ([]*Note, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := c.store.ListNotes(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list notes", Err: err}
	}

	notes := make([]*Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, rowToNote(row))
	}
	return notes, nil
}

// DeleteNote soft-deletes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	if err := c.store.MarkNoteDeleted(ctx, id, touch()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return &StorageError{Op: "delete note", Err: err}
	}
	return nil
}

// Close stops syncing and closes the local database. Further operations
// return ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.coord.StopSync()
	return c.store.Close()
}

func (c *Client) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}
