package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/atomstore/internal/collector"
)

// PullEntry is one row of the pull ledger.
type PullEntry struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Result string    `json:"result"`
	Events int       `json:"events"`
	At     time.Time `json:"at"`
}

var _ collector.Ledger = (*Store)(nil)

// RecordPull appends a pull outcome to the ledger.
func (s *Store) RecordPull(ctx context.Context, rec collector.PullRecord) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("record pull: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pull_log (id, kind, result, events, at_millis)
		VALUES (?, ?, ?, ?, ?)
	`,
		id.String(),
		rec.Kind.String(),
		rec.Result.String(),
		rec.Events,
		rec.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record pull: %w", err)
	}
	return nil
}

// PullHistory returns up to limit ledger entries, newest first. An empty
// kind matches every kind. A limit of zero or less returns every entry.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) PullHistory(ctx context.Context, kind string, limit int) ([]PullEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, result, events, at_millis
		FROM pull_log
		WHERE ? = '' OR kind = ?
		ORDER BY seq DESC
		LIMIT ?
	`, kind, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("query pull history: %w", err)
	}
	defer rows.Close()

	entries := []PullEntry{}
	for rows.Next() {
		var (
			e  PullEntry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Result, &e.Events, &at); err != nil {
			return nil, fmt.Errorf("scan pull history: %w", err)
		}
		e.At = time.UnixMilli(at).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pull history: %w", err)
	}
	return entries, nil
}
