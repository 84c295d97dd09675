package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertVaultItem inserts or replaces a vault item row.
func (s *Store) UpsertVaultItem(ctx context.Context, row *VaultItemRow) error {
	query := `
		INSERT INTO vault_items (
			id, title_enc, username_enc, secret_enc, url_enc, note_enc,
			updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title_enc = excluded.title_enc,
			username_enc = excluded.username_enc,
			secret_enc = excluded.secret_enc,
			url_enc = excluded.url_enc,
			note_enc = excluded.note_enc,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
	`

	_, err := s.db.ExecContext(ctx, query,
		row.ID, row.TitleEnc, row.UsernameEnc, row.SecretEnc, row.URLEnc, row.NoteEnc,
		row.UpdatedAt.UTC(), nullableTime(row.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vault item: %w", err)
	}
	return nil
}

// GetVaultItem retrieves a vault item by id, including soft-deleted rows.
func (s *Store) GetVaultItem(ctx context.Context, id string) (*VaultItemRow, error) {
	query := `
		SELECT id, title_enc, username_enc, secret_enc, url_enc, note_enc,
			updated_at, deleted_at
		FROM vault_items
		WHERE id = ?
	`

	row := &VaultItemRow{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &row.TitleEnc, &row.UsernameEnc, &row.SecretEnc, &row.URLEnc, &row.NoteEnc,
		&row.UpdatedAt, &row.DeletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vault item: %w", err)
	}
	return row, nil
}

// ListVaultItems retrieves all active (non-deleted) vault items, newest
// first.
func (s *Store) ListVaultItems(ctx context.Context) ([]*VaultItemRow, error) {
	query := `
		SELECT id, title_enc, username_enc, secret_enc, url_enc, note_enc,
			updated_at, deleted_at
		FROM vault_items
		WHERE deleted_at IS NULL
		ORDER BY updated_at DESC, id ASC
	`
	return s.queryVaultItems(ctx, query)
}

// DirtyVaultItems retrieves all vault items (including soft-deleted ones)
// modified after the given cursor, oldest first so the sync cursor can
// advance monotonically.
func (s *Store) DirtyVaultItems(ctx context.Context, since time.Time) ([]*VaultItemRow, error) {
	query := `
		SELECT id, title_enc, username_enc, secret_enc, url_enc, note_enc,
			updated_at, deleted_at
		FROM vault_items
		WHERE updated_at > ?
		ORDER BY updated_at ASC, id ASC
	`
	return s.queryVaultItems(ctx, query, since.UTC())
}

// MarkVaultItemDeleted soft-deletes a vault item. The row is kept so the
// deletion propagates through sync as a regular LWW field update.
func (s *Store) MarkVaultItemDeleted(ctx context.Context, id string, when time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE vault_items SET deleted_at = ?, updated_at = ? WHERE id = ?`,
		when.UTC(), when.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark vault item deleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark vault item deleted: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryVaultItems(ctx context.Context, query string, args ...any) ([]*VaultItemRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vault items: %w", err)
	}
	defer rows.Close()

	var out []*VaultItemRow
	for rows.Next() {
		row := &VaultItemRow{}
		if err := rows.Scan(
			&row.ID, &row.TitleEnc, &row.UsernameEnc, &row.SecretEnc, &row.URLEnc, &row.NoteEnc,
			&row.UpdatedAt, &row.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vault item: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
