package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/collector"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPull creates a pull record at a fixed wall time plus offset.
func createTestPull(k atoms.Kind, res collector.Result, events int, offset time.Duration) collector.PullRecord {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return collector.PullRecord{Kind: k, Result: res, Events: events, At: base.Add(offset)}
}
