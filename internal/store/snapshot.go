package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/atomstore/internal/persist"
)

// DefaultSnapshotName is the row used when only one store shares a database.
const DefaultSnapshotName = "default"

// SnapshotBackend is a persist.Backend that keeps the snapshot blob in the
// snapshots table.
type SnapshotBackend struct {
	store *Store
	name  string
}

var _ persist.Backend = (*SnapshotBackend)(nil)

// Snapshots returns the backend for the named snapshot row.
func (s *Store) Snapshots(name string) *SnapshotBackend {
	return &SnapshotBackend{store: s, name: name}
}

// Load returns persist.ErrNotFound when the row does not exist.
func (b *SnapshotBackend) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.store.db.QueryRowContext(ctx, `
		SELECT data FROM snapshots WHERE name = ?
	`, b.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", b.name, err)
	}
	return data, nil
}

// Save replaces the row in a single statement.
func (b *SnapshotBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, b.name, data, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", b.name, err)
	}
	return nil
}
