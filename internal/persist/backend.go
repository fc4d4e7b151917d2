// Package persist stores encoded snapshots and schedules debounced writes.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// ErrNotFound is returned by Backend.Load when nothing has been saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Backend reads and writes a whole snapshot blob.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileBackend keeps the snapshot in a single file. Writes go to a temporary
// file in the same directory that is then renamed over the target, so
// readers see either the old or the new snapshot.
type FileBackend struct {
	Path string
}

func (f FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.Path, err)
	}
	return data, nil
}

func (f FileBackend) Save(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := atomic.WriteFile(f.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot %s: %w", f.Path, err)
	}
	return nil
}

// MemoryBackend keeps the snapshot in memory. Used by tests and by the
// scenario harness.
type MemoryBackend struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

// NewMemoryBackend returns a backend preloaded with data. A nil data starts
// empty.
func NewMemoryBackend(data []byte) *MemoryBackend {
	return &MemoryBackend{data: bytes.Clone(data)}
}

func (m *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return bytes.Clone(m.data), nil
}

func (m *MemoryBackend) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = bytes.Clone(data)
	m.saves++
	return nil
}

// FailSaves makes every subsequent Save return err. A nil err restores
// normal behavior.
func (m *MemoryBackend) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Saves returns the number of successful saves.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Data returns a copy of the last saved blob.
func (m *MemoryBackend) Data() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data)
}
