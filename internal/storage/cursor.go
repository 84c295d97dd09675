package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Cursor returns the last successful sync timestamp for a collection.
// A collection that has never synced returns the zero time.
func (s *Store) Cursor(ctx context.Context, collection string) (time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT last_synced_at FROM sync_state WHERE collection = ?`, collection,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read sync cursor: %w", err)
	}
	return t, nil
}

// SetCursor records the last successful sync timestamp for a collection.
func (s *Store) SetCursor(ctx context.Context, collection string, t time.Time) error {
	query := `
		INSERT INTO sync_state (collection, last_synced_at)
		VALUES (?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			last_synced_at = excluded.last_synced_at
	`
	if _, err := s.db.ExecContext(ctx, query, collection, t.UTC()); err != nil {
		return fmt.Errorf("failed to set sync cursor: %w", err)
	}
	return nil
}
