// Package storage implements the local, offline-first record store on
// SQLite. It holds two collections, plaintext notes and field-encrypted
// vault items, plus the per-collection sync cursors.
//
// The store only ever sees ciphertext for sensitive vault item fields;
// encryption happens above this layer. Deletes are soft: rows are marked
// with deleted_at and kept so the deletion can propagate through sync.
package storage
