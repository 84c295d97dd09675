package vaultkeep

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vaultkeep/client-go/internal/storage"
)

// RemoteStore is the transport to the remote backend, supplied by the
// application. Implementations receive only ciphertext for vault item
// fields; the backend never observes plaintext. Remote mutations flow the
// other way through Engine.ApplyRemoteItem and Engine.ApplyRemoteNote,
// driven by whatever subscription or pull mechanism the application wires
// up.
type RemoteStore interface {
	// PushVaultItem transmits one encrypted vault item, keyed remotely by
	// its record id.
	PushVaultItem(ctx context.Context, userID string, item *EncryptedVaultItem) error

	// PushNote transmits one note.
	PushNote(ctx context.Context, userID string, note *Note) error
}

// Engine reconciles the local store with the remote backend. Pushes select
// locally dirty records by sync cursor; incoming remote records are applied
// under strict last-write-wins.
type Engine struct {
	store  *storage.Store
	remote RemoteStore
	log    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{} // userIDs with a push in progress
}

// NewEngine creates a sync engine over the given local store and remote.
func NewEngine(store *storage.Store, remote RemoteStore, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{
		store:    store,
		remote:   remote,
		log:      cfg.logger,
		inFlight: make(map[string]struct{}),
	}
}

// PushLocal transmits every local record modified since the last successful
// sync, across both collections, and returns the number pushed.
//
// Per-record transmission failures are logged and skipped without aborting
// the batch; a collection's cursor only advances past records that
// succeeded, so failed records stay dirty for the next pass. If any record
// failed, the count of successes is returned together with a NetworkError.
//
// PushLocal must not run concurrently with itself for the same user: a
// second call while one is in flight is rejected with ErrSyncInProgress
// rather than racing the cursor.
//
// With no remote configured PushLocal is a no-op: nothing is transmitted,
// the cursors do not move, and every record stays dirty.
func (e *Engine) PushLocal(ctx context.Context, userID string) (int, error) {
	if e.remote == nil {
		return 0, nil
	}

	e.mu.Lock()
	if _, busy := e.inFlight[userID]; busy {
		e.mu.Unlock()
		return 0, ErrSyncInProgress
	}
	e.inFlight[userID] = struct{}{}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.inFlight, userID)
		e.mu.Unlock()
	}()

	itemsPushed, itemsFailed, firstErr := e.pushVaultItems(ctx, userID)
	if firstErr != nil && itemsFailed == 0 {
		// Cursor or storage failure, not a transmission failure.
		return itemsPushed, firstErr
	}

	notesPushed, notesFailed, notesErr := e.pushNotes(ctx, userID)
	if notesErr != nil && notesFailed == 0 {
		return itemsPushed + notesPushed, notesErr
	}

	pushed := itemsPushed + notesPushed
	failed := itemsFailed + notesFailed
	if failed > 0 {
		err := firstErr
		if err == nil {
			err = notesErr
		}
		return pushed, &NetworkError{Op: "push", Failed: failed, Err: err}
	}
	return pushed, nil
}

func (e *Engine) pushVaultItems(ctx context.Context, userID string) (pushed, failed int, firstErr error) {
	cursor, err := e.store.Cursor(ctx, storage.CollectionVaultItems)
	if err != nil {
		return 0, 0, &StorageError{Op: "read vault item cursor", Err: err}
	}

	rows, err := e.store.DirtyVaultItems(ctx, cursor)
	if err != nil {
		return 0, 0, &StorageError{Op: "select dirty vault items", Err: err}
	}

	newCursor := cursor
	advance := true
	for _, row := range rows {
		if err := e.remote.PushVaultItem(ctx, userID, rowToEncryptedItem(row)); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			// The cursor must not move past a failed record, or it
			// would never be retried.
			advance = false
			e.log.Warn("vault item push failed",
				zap.String("id", row.ID),
				zap.Error(err))
			continue
		}
		pushed++
		if advance && row.UpdatedAt.After(newCursor) {
			newCursor = row.UpdatedAt
		}
	}

	if newCursor.After(cursor) {
		if err := e.store.SetCursor(ctx, storage.CollectionVaultItems, newCursor); err != nil {
			return pushed, failed, &StorageError{Op: "advance vault item cursor", Err: err}
		}
	}
	return pushed, failed, firstErr
}

func (e *Engine) pushNotes(ctx context.Context, userID string) (pushed, failed int, firstErr error) {
	cursor, err := e.store.Cursor(ctx, storage.CollectionNotes)
	if err != nil {
		return 0, 0, &StorageError{Op: "read note cursor", Err: err}
	}

	rows, err := e.store.DirtyNotes(ctx, cursor)
	if err != nil {
		return 0, 0, &StorageError{Op: "select dirty notes", Err: err}
	}

	newCursor := cursor
	advance := true
	for _, row := range rows {
		if err := e.remote.PushNote(ctx, userID, rowToNote(row)); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			advance = false
			e.log.Warn("note push failed",
				zap.String("id", row.ID),
				zap.Error(err))
			continue
		}
		pushed++
		if advance && row.UpdatedAt.After(newCursor) {
			newCursor = row.UpdatedAt
		}
	}

	if newCursor.After(cursor) {
		if err := e.store.SetCursor(ctx, storage.CollectionNotes, newCursor); err != nil {
			return pushed, failed, &StorageError{Op: "advance note cursor", Err: err}
		}
	}
	return pushed, failed, firstErr
}

// ApplyRemoteItem applies an incoming remote vault item under strict
// last-write-wins: the remote record overwrites the local one only when its
// UpdatedAt is strictly newer (or no local record exists). On an exact
// timestamp tie the local record is kept; since it remains past the cursor
// it will be pushed on the next pass, so the local writer wins ties
// deterministically. A remote record with DeletedAt set is an ordinary
// field update that marks the local record deleted.
func (e *Engine) ApplyRemoteItem(ctx context.Context, item *EncryptedVaultItem) error {
	local, err := e.store.GetVaultItem(ctx, item.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return &StorageError{Op: "load local vault item", Err: err}
	}

	if local != nil && !item.UpdatedAt.After(local.UpdatedAt) {
		e.log.Debug("remote vault item not newer, keeping local",
			zap.String("id", item.ID),
			zap.Time("remote", item.UpdatedAt),
			zap.Time("local", local.UpdatedAt))
		return nil
	}

	if err := e.store.UpsertVaultItem(ctx, encryptedItemToRow(item)); err != nil {
		return &StorageError{Op: "apply remote vault item", Err: err}
	}
	return nil
}

// ApplyRemoteNote applies an incoming remote note under the same LWW rule
// as ApplyRemoteItem.
func (e *Engine) ApplyRemoteNote(ctx context.Context, note *Note) error {
	local, err := e.store.GetNote(ctx, note.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return &StorageError{Op: "load local note", Err: err}
	}

	if local != nil && !note.UpdatedAt.After(local.UpdatedAt) {
		e.log.Debug("remote note not newer, keeping local",
			zap.String("id", note.ID),
			zap.Time("remote", note.UpdatedAt),
			zap.Time("local", local.UpdatedAt))
		return nil
	}

	if err := e.store.UpsertNote(ctx, noteToRow(note)); err != nil {
		return &StorageError{Op: "apply remote note", Err: err}
	}
	return nil
}

func rowToEncryptedItem(row *storage.VaultItemRow) *EncryptedVaultItem {
	return &EncryptedVaultItem{
		ID:        row.ID,
		Title:     row.TitleEnc,
		Username:  row.UsernameEnc,
		Secret:    row.SecretEnc,
		URL:       row.URLEnc,
		Note:      row.NoteEnc,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: row.DeletedAt,
	}
}

func encryptedItemToRow(item *EncryptedVaultItem) *storage.VaultItemRow {
	return &storage.VaultItemRow{
		ID:          item.ID,
		TitleEnc:    item.Title,
		UsernameEnc: item.Username,
		SecretEnc:   item.Secret,
		URLEnc:      item.URL,
		NoteEnc:     item.Note,
		UpdatedAt:   item.UpdatedAt,
		DeletedAt:   item.DeletedAt,
	}
}

func rowToNote(row *storage.NoteRow) *Note {
	return &Note{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		Tags:      row.Tags,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: row.DeletedAt,
	}
}

func noteToRow(note *Note) *storage.NoteRow {
	return &storage.NoteRow{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		UpdatedAt: note.UpdatedAt,
		DeletedAt: note.DeletedAt,
	}
}

// touch returns the current UTC time for stamping record updates.
func touch() time.Time {
	return time.Now().UTC()
}
