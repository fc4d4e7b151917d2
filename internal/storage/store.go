// Package storage is the aggregation store: one bounded collection per atom
// kind, merged on add, drained on pull and persisted with a debounce.
//
// Nothing in this package returns an error for telemetry conditions. A full
// collection evicts, a pull that comes too early reports false, and a failed
// write is logged while the in-memory state stays authoritative.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/bounded"
	"github.com/roach88/atomstore/internal/persist"
)

const (
	// DefaultUpdateSaveDelay coalesces bursts of adds into one write.
	DefaultUpdateSaveDelay = 30 * time.Second
	// DefaultPullSaveDelay persists drains quickly so a crash does not lose
	// the fact that data was already handed out.
	DefaultPullSaveDelay = 500 * time.Millisecond
)

// Options configures a Store. Zero values are replaced with defaults.
type Options struct {
	// Backend holds the persisted snapshot. Defaults to an in-memory
	// backend, which makes the store volatile.
	Backend persist.Backend
	Clock   quartz.Clock
	Logger  *slog.Logger

	// Rand drives insert positions and random eviction. Defaults to a
	// ChaCha8 generator seeded from crypto/rand.
	Rand *rand.Rand

	Profile atoms.Profile

	// BuildID tags the snapshot. A persisted snapshot with a different
	// build id is discarded on load.
	BuildID string

	// SaveImmediately writes synchronously on every change.
	SaveImmediately bool
	UpdateSaveDelay time.Duration
	PullSaveDelay   time.Duration

	Registerer prometheus.Registerer
}

// Store owns every atom collection. It is safe for concurrent use.
type Store struct {
	clock   quartz.Clock
	logger  *slog.Logger
	profile atoms.Profile
	buildID string

	updateDelay time.Duration
	pullDelay   time.Duration

	persister *persist.Persister
	metrics   *storeMetrics

	// mu guards snap and rng. It is never held while calling into the
	// persister.
	mu   sync.Mutex
	snap *atoms.Snapshot
	rng  *rand.Rand
}

// New loads the persisted snapshot, sanitizes it and returns a ready store.
// A missing, unreadable or foreign-build snapshot yields an empty store.
func New(ctx context.Context, opts Options) *Store {
	if opts.Backend == nil {
		opts.Backend = persist.NewMemoryBackend(nil)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = bounded.NewRand()
	}
	if opts.UpdateSaveDelay <= 0 {
		opts.UpdateSaveDelay = DefaultUpdateSaveDelay
	}
	if opts.PullSaveDelay <= 0 {
		opts.PullSaveDelay = DefaultPullSaveDelay
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.NewRegistry()
	}

	s := &Store{
		clock:       opts.Clock,
		logger:      opts.Logger,
		profile:     opts.Profile,
		buildID:     opts.BuildID,
		updateDelay: opts.UpdateSaveDelay,
		pullDelay:   opts.PullSaveDelay,
		metrics:     newStoreMetrics(opts.Registerer),
		rng:         opts.Rand,
	}
	s.snap = s.load(ctx, opts.Backend)
	s.metrics.observe(s.snap)
	s.persister = persist.NewPersister(opts.Backend, s.encode, persist.PersisterOptions{
		Clock:     opts.Clock,
		Logger:    opts.Logger,
		Immediate: opts.SaveImmediately,
		OnSave:    s.metrics.persisted,
	})
	return s
}

func (s *Store) nowMillis() int64 {
	return s.clock.Now().UnixMilli()
}

func (s *Store) load(ctx context.Context, backend persist.Backend) *atoms.Snapshot {
	now := s.nowMillis()
	data, err := backend.Load(ctx)
	if errors.Is(err, persist.ErrNotFound) {
		s.logger.Info("no persisted snapshot, starting fresh")
		return atoms.NewSnapshot(s.buildID, now)
	}
	if err != nil {
		s.logger.Warn("failed to read snapshot, starting fresh", "error", err)
		return atoms.NewSnapshot(s.buildID, now)
	}
	snap, err := persist.Decode(data)
	if err != nil {
		s.logger.Warn("failed to decode snapshot, starting fresh", "error", err)
		return atoms.NewSnapshot(s.buildID, now)
	}
	if snap.BuildID != s.buildID {
		s.logger.Info("build changed, discarding snapshot", "stored", snap.BuildID, "current", s.buildID)
		return atoms.NewSnapshot(s.buildID, now)
	}
	sanitize(snap, s.profile, now)
	return snap
}

// sanitize repairs a decoded snapshot: nil collections become empty, nil
// entries are dropped, oversized collections are cut to the current limits,
// SMS hashes are recomputed and unset pull timestamps become now.
func sanitize(snap *atoms.Snapshot, p atoms.Profile, now int64) {
	snap.FillEmpty()
	snap.VoiceCallSessions = clean(snap.VoiceCallSessions, p.MaxLength(atoms.KindVoiceCallSession))
	snap.VoiceCallRatUsages = clean(snap.VoiceCallRatUsages, p.MaxLength(atoms.KindVoiceCallRatUsage))
	snap.IncomingSms = clean(snap.IncomingSms, p.MaxLength(atoms.KindIncomingSms))
	snap.OutgoingSms = clean(snap.OutgoingSms, p.MaxLength(atoms.KindOutgoingSms))
	snap.DataCallSessions = clean(snap.DataCallSessions, p.MaxLength(atoms.KindDataCallSession))
	snap.CellularServiceStates = clean(snap.CellularServiceStates, p.MaxLength(atoms.KindCellularServiceState))
	snap.CellularDataServiceSwitches = clean(snap.CellularDataServiceSwitches, p.MaxLength(atoms.KindCellularDataServiceSwitch))
	snap.ImsRegistrationStats = clean(snap.ImsRegistrationStats, p.MaxLength(atoms.KindImsRegistrationStats))
	snap.ImsRegistrationTerminations = clean(snap.ImsRegistrationTerminations, p.MaxLength(atoms.KindImsRegistrationTermination))
	snap.NetworkRequests = clean(snap.NetworkRequests, p.MaxLength(atoms.KindNetworkRequests))
	snap.CarrierIDMismatches = clean(snap.CarrierIDMismatches, p.MaxLength(atoms.KindCarrierIDMismatch))
	snap.OutgoingShortCodeSms = clean(snap.OutgoingShortCodeSms, p.MaxLength(atoms.KindOutgoingShortCodeSms))
	snap.SatelliteControllers = clean(snap.SatelliteControllers, p.MaxLength(atoms.KindSatelliteController))
	snap.SatelliteSessions = clean(snap.SatelliteSessions, p.MaxLength(atoms.KindSatelliteSession))
	snap.GbaEvents = clean(snap.GbaEvents, p.MaxLength(atoms.KindGbaEvent))
	snap.UnmeteredNetworks = clean(snap.UnmeteredNetworks, p.MaxLength(atoms.KindUnmeteredNetworks))

	for _, sms := range snap.IncomingSms {
		sms.Hash = sms.DedupHash()
	}
	for _, sms := range snap.OutgoingSms {
		sms.Hash = sms.DedupHash()
	}

	for _, k := range atoms.DrainedKinds() {
		if snap.PullTimestamps[k.String()] <= 0 {
			snap.PullTimestamps[k.String()] = now
		}
	}
}

func clean[T any](items []*T, maxLength int) []*T {
	items = slices.DeleteFunc(items, func(it *T) bool { return it == nil })
	return bounded.Truncate(items, maxLength)
}

// encode is the persister's source.
func (s *Store) encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persist.Encode(s.snap)
}

// updated schedules a write after an add. Callers must not hold mu.
func (s *Store) updated() {
	s.persister.Schedule(s.updateDelay)
}

// pulled schedules a write after a drain. Callers must not hold mu.
func (s *Store) pulled() {
	s.persister.Schedule(s.pullDelay)
}

// Snapshot returns a deep copy of the current state without draining it.
func (s *Store) Snapshot() (*atoms.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Len returns the number of records held for k.
func (s *Store) Len(k atoms.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Len(k)
}

// MaxLength returns the collection limit for k under the store's profile.
func (s *Store) MaxLength(k atoms.Kind) int {
	return s.profile.MaxLength(k)
}

// Flush writes the snapshot now, bypassing the debounce.
func (s *Store) Flush() error {
	return s.persister.SaveNow()
}

// Clear discards every record, resets pull timestamps to now and writes the
// empty snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.snap = atoms.NewSnapshot(s.buildID, s.nowMillis())
	s.metrics.observe(s.snap)
	s.mu.Unlock()
	return s.persister.SaveNow()
}

// Close cancels any pending write and performs a final one. Later changes
// are kept in memory only.
func (s *Store) Close() error {
	return s.persister.Close()
}
