package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/persist"
	"github.com/roach88/atomstore/internal/storage"
)

func TestSnapshotBackend_LoadMissing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Snapshots(DefaultSnapshotName).Load(context.Background())
	if !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotBackend_SaveReplaces(t *testing.T) {
	s := createTestStore(t)
	b := s.Snapshots(DefaultSnapshotName)
	ctx := context.Background()

	if err := b.Save(ctx, []byte("first")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := b.Save(ctx, []byte("second")); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Load() = %q, want %q", got, "second")
	}

	var rows int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("snapshots has %d rows, want 1", rows)
	}
}

func TestSnapshotBackend_NamesAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Snapshots("a").Save(ctx, []byte("A")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := s.Snapshots("b").Load(ctx); !errors.Is(err, persist.ErrNotFound) {
		t.Errorf("Load(b) error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotBackend_AggregationStoreRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	open := func() *storage.Store {
		return storage.New(ctx, storage.Options{
			Backend:         s.Snapshots(DefaultSnapshotName),
			Logger:          logger,
			Rand:            rand.New(rand.NewPCG(1, 2)),
			SaveImmediately: true,
			BuildID:         "build-1",
		})
	}

	first := open()
	first.AddGbaEvent(&atoms.GbaEvent{CarrierID: 3, Successful: true})
	first.AddGbaEvent(&atoms.GbaEvent{CarrierID: 3, Successful: true})
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second := open()
	defer second.Close()
	snap, err := second.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if len(snap.GbaEvents) != 1 || snap.GbaEvents[0].Count != 2 {
		t.Errorf("GbaEvents = %+v, want one event with count 2", snap.GbaEvents)
	}
}
