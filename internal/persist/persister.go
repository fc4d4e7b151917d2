package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Source produces the blob to write. It is called on the persister's own
// goroutine, never while the persister holds its scheduling lock.
type Source func() ([]byte, error)

// PersisterOptions configures a Persister. Zero values are replaced with
// defaults.
type PersisterOptions struct {
	Clock  quartz.Clock
	Logger *slog.Logger

	// Immediate writes synchronously on every Schedule call. Tests use it
	// to observe saves without advancing a clock.
	Immediate bool

	// OnSave, if set, is called after every write attempt with its result.
	OnSave func(err error)
}

// Persister coalesces save requests into a single delayed write. At most one
// write is pending at any time; a new Schedule call cancels it and starts
// the delay over.
type Persister struct {
	backend Backend
	source  Source
	clock   quartz.Clock
	logger  *slog.Logger
	onSave  func(error)

	immediate bool

	mu     sync.Mutex
	timer  *quartz.Timer
	gen    uint64
	closed bool

	// writeMu serializes encode+write so an older snapshot never lands
	// after a newer one.
	writeMu sync.Mutex
}

// NewPersister returns a persister writing source's output to backend.
func NewPersister(backend Backend, source Source, opts PersisterOptions) *Persister {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Persister{
		backend:   backend,
		source:    source,
		clock:     opts.Clock,
		logger:    opts.Logger,
		onSave:    opts.OnSave,
		immediate: opts.Immediate,
	}
}

// Schedule requests a write after delay, replacing any pending request.
func (p *Persister) Schedule(delay time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.immediate {
		p.mu.Unlock()
		_ = p.write()
		return
	}
	p.cancelLocked()
	gen := p.gen
	p.timer = p.clock.AfterFunc(delay, func() { p.fire(gen) }, "persist")
	p.mu.Unlock()
}

// Pending reports whether a delayed write is outstanding.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

// SaveNow cancels any pending write and writes synchronously.
func (p *Persister) SaveNow() error {
	p.mu.Lock()
	p.cancelLocked()
	p.mu.Unlock()
	return p.write()
}

// Close cancels the pending write, performs a final one and rejects further
// scheduling.
func (p *Persister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.cancelLocked()
	p.mu.Unlock()
	return p.write()
}

func (p *Persister) cancelLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

func (p *Persister) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		// Superseded by a later Schedule or SaveNow.
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()
	_ = p.write()
}

// write encodes and saves the current state. Failures are logged and
// reported to OnSave; the in-memory state stays authoritative.
func (p *Persister) write() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	data, err := p.source()
	if err == nil {
		err = p.backend.Save(context.Background(), data)
	}
	if err != nil {
		p.logger.Error("failed to persist snapshot", "error", err)
	} else {
		p.logger.Debug("persisted snapshot", "bytes", len(data))
	}
	if p.onSave != nil {
		p.onSave(err)
	}
	return err
}
