package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertNote inserts or replaces a note row.
func (s *Store) UpsertNote(ctx context.Context, row *NoteRow) error {
	query := `
		INSERT INTO notes (id, title, content, tags, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			tags = excluded.tags,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at
	`

	_, err := s.db.ExecContext(ctx, query,
		row.ID, row.Title, row.Content, row.Tags,
		row.UpdatedAt.UTC(), nullableTime(row.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by id, including soft-deleted rows.
func (s *Store) GetNote(ctx context.Context, id string) (*NoteRow, error) {
	query := `
		SELECT id, title, content, tags, updated_at, deleted_at
		FROM notes
		WHERE id = ?
	`

	row := &NoteRow{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &row.Title, &row.Content, &row.Tags, &row.UpdatedAt, &row.DeletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return row, nil
}

// ListNotes retrieves all active (non-deleted) notes, newest first.
func (s *Store) ListNotes(ctx context.Context) ([]*NoteRow, error) {
	query := `
		SELECT id, title, content, tags, updated_at, deleted_at
		FROM notes
		WHERE deleted_at IS NULL
		ORDER BY updated_at DESC, id ASC
	`
	return s.queryNotes(ctx, query)
}

// DirtyNotes retrieves all notes (including soft-deleted ones) modified
// after the given cursor, oldest first.
func (s *Store) DirtyNotes(ctx context.Context, since time.Time) ([]*NoteRow, error) {
	query := `
		SELECT id, title, content, tags, updated_at, deleted_at
		FROM notes
		WHERE updated_at > ?
		ORDER BY updated_at ASC, id ASC
	`
	return s.queryNotes(ctx, query, since.UTC())
}

// MarkNoteDeleted soft-deletes a note.
func (s *Store) MarkNoteDeleted(ctx context.Context, id string, when time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET deleted_at = ?, updated_at = ? WHERE id = ?`,
		when.UTC(), when.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark note deleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark note deleted: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]*NoteRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var out []*NoteRow
	for rows.Next() {
		row := &NoteRow{}
		if err := rows.Scan(
			&row.ID, &row.Title, &row.Content, &row.Tags, &row.UpdatedAt, &row.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
