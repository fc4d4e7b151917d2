// Package collector serves pull requests: it concludes open sessions, drains
// the store under a per-kind cooldown and converts records to wire events.
package collector

import (
	"cmp"
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/bounded"
	"github.com/roach88/atomstore/internal/storage"
	"github.com/roach88/atomstore/internal/wire"
)

const (
	// DefaultCooldown leaves margin for daily pulls.
	DefaultCooldown = 23 * time.Hour
	// DebugCooldown replaces DefaultCooldown on debug builds.
	DebugCooldown = 10 * time.Second

	// MinCallsPerBucket drops voice RAT usage buckets with fewer calls.
	MinCallsPerBucket = 5
)

// Result is the outcome of a pull.
type Result int

const (
	Success Result = iota
	Skip
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// PullRecord describes one served pull.
type PullRecord struct {
	Kind   atoms.Kind
	Result Result
	Events int
	At     time.Time
}

// Ledger keeps a history of pulls.
type Ledger interface {
	RecordPull(ctx context.Context, rec PullRecord) error
}

// Options configures a Collector. Zero values are replaced with defaults.
type Options struct {
	Phones PhoneSource
	Clock  quartz.Clock
	Logger *slog.Logger

	// Debug shortens the cooldown and the duration rounding bucket, and
	// keeps every voice RAT usage bucket.
	Debug bool

	// Cooldown is the minimum time between pulls of a stored kind.
	Cooldown time.Duration
	// Cooldowns overrides Cooldown per kind.
	Cooldowns map[atoms.Kind]time.Duration

	// Ledger, when set, receives every pull outcome.
	Ledger Ledger

	// Rand tags voice call session events.
	Rand       *rand.Rand
	Registerer prometheus.Registerer
}

// Collector answers pull requests against one store.
type Collector struct {
	store    *storage.Store
	phones   PhoneSource
	clock    quartz.Clock
	logger   *slog.Logger
	ledger   Ledger
	encoder  *wire.Encoder
	metrics  *collectorMetrics
	minCalls int64

	cooldown  time.Duration
	cooldowns map[atoms.Kind]time.Duration

	mu       sync.Mutex
	dataCall map[Concluder]struct{}
}

func New(store *storage.Store, opts Options) *Collector {
	if opts.Phones == nil {
		opts.Phones = StaticPhones(nil)
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
	if opts.Registerer == nil {
		opts.Registerer = prometheus.NewRegistry()
	}
	bucket := wire.DurationBucket
	minCalls := int64(MinCallsPerBucket)
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
		if opts.Debug {
			opts.Cooldown = DebugCooldown
		}
	}
	if opts.Debug {
		bucket = wire.DebugDurationBucket
		minCalls = 0
	}

	return &Collector{
		store:     store,
		phones:    opts.Phones,
		clock:     opts.Clock,
		logger:    opts.Logger,
		ledger:    opts.Ledger,
		encoder:   wire.NewEncoder(wire.Rounder{Bucket: bucket}, opts.Rand),
		metrics:   newCollectorMetrics(opts.Registerer),
		minCalls:  minCalls,
		cooldown:  opts.Cooldown,
		cooldowns: opts.Cooldowns,
		dataCall:  make(map[Concluder]struct{}),
	}
}

// Cooldown returns the minimum interval between pulls of k.
func (c *Collector) Cooldown(k atoms.Kind) time.Duration {
	if d, ok := c.cooldowns[k]; ok {
		return d
	}
	return c.cooldown
}

// RegisterOngoingDataCalls adds a data call tracker to conclude before data
// call pulls.
func (c *Collector) RegisterOngoingDataCalls(t Concluder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataCall[t] = struct{}{}
}

// UnregisterOngoingDataCalls removes a tracker added with
// RegisterOngoingDataCalls.
func (c *Collector) UnregisterOngoingDataCalls(t Concluder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.dataCall, t)
}

// Pull serves one pull request for k. Skip is returned for unknown kinds,
// kinds pulled again before their cooldown, and live kinds while no phone
// is up.
func (c *Collector) Pull(ctx context.Context, k atoms.Kind) (Result, []wire.Event) {
	res, events := c.pull(k)
	c.metrics.pulled(k.String(), res, len(events))
	if res == Skip {
		c.logger.Debug("pull skipped", "kind", k)
	} else {
		c.logger.Debug("pulled", "kind", k, "events", len(events))
	}
	if c.ledger != nil {
		rec := PullRecord{Kind: k, Result: res, Events: len(events), At: c.clock.Now()}
		if err := c.ledger.RecordPull(ctx, rec); err != nil {
			c.logger.Warn("recording pull failed", "kind", k, "error", err)
		}
	}
	return res, events
}

func (c *Collector) pull(k atoms.Kind) (Result, []wire.Event) {
	s, e, d := c.store, c.encoder, c.Cooldown(k)
	switch k {
	case atoms.KindVoiceCallSession:
		recs, ok := s.DrainVoiceCallSessions(d)
		return encodeAll(recs, ok, e.VoiceCallSession)
	case atoms.KindVoiceCallRatUsage:
		return c.pullVoiceCallRatUsages(d)
	case atoms.KindIncomingSms:
		recs, ok := s.DrainIncomingSms(d)
		return encodeAll(recs, ok, e.IncomingSms)
	case atoms.KindOutgoingSms:
		recs, ok := s.DrainOutgoingSms(d)
		return encodeAll(recs, ok, e.OutgoingSms)
	case atoms.KindDataCallSession:
		c.concludeDataCalls()
		recs, ok := s.DrainDataCallSessions(d)
		return encodeAll(recs, ok, e.DataCallSession)
	case atoms.KindCellularServiceState:
		c.concludeServiceStates()
		recs, ok := s.DrainCellularServiceStates(d)
		return encodeAll(recs, ok, e.CellularServiceState)
	case atoms.KindCellularDataServiceSwitch:
		recs, ok := s.DrainCellularDataServiceSwitches(d)
		return encodeAll(recs, ok, e.CellularDataServiceSwitch)
	case atoms.KindImsRegistrationStats:
		c.concludeIms()
		recs, ok := s.DrainImsRegistrationStats(d)
		return encodeAll(recs, ok, e.ImsRegistrationStats)
	case atoms.KindImsRegistrationTermination:
		recs, ok := s.DrainImsRegistrationTerminations(d)
		return encodeAll(recs, ok, e.ImsRegistrationTermination)
	case atoms.KindNetworkRequests:
		recs, ok := s.DrainNetworkRequests(d)
		return encodeAll(recs, ok, e.NetworkRequests)
	case atoms.KindOutgoingShortCodeSms:
		recs, ok := s.DrainOutgoingShortCodeSms(d)
		return encodeAll(recs, ok, e.OutgoingShortCodeSms)
	case atoms.KindSatelliteController:
		recs, ok := s.DrainSatelliteControllers(d)
		return encodeAll(recs, ok, e.SatelliteController)
	case atoms.KindSatelliteSession:
		recs, ok := s.DrainSatelliteSessions(d)
		return encodeAll(recs, ok, e.SatelliteSession)
	case atoms.KindGbaEvent:
		recs, ok := s.DrainGbaEvents(d)
		return encodeAll(recs, ok, e.GbaEvent)
	case atoms.KindCarrierIDTableVersion:
		phones := c.phones.Phones()
		if len(phones) == 0 {
			return Skip, nil
		}
		// Every phone loads the same table.
		return Success, []wire.Event{e.CarrierIDTableVersion(phones[0].CarrierIDListVersion())}
	case atoms.KindSupportedRadioAccessFamily:
		phones := c.phones.Phones()
		if len(phones) == 0 {
			return Skip, nil
		}
		var raf int64
		for _, p := range phones {
			raf |= p.RadioAccessFamily()
		}
		return Success, []wire.Event{e.SupportedRadioAccessFamily(raf)}
	default:
		return Skip, nil
	}
}

func (c *Collector) pullVoiceCallRatUsages(d time.Duration) (Result, []wire.Event) {
	usages, ok := c.store.DrainVoiceCallRatUsages(d)
	if !ok {
		return Skip, nil
	}
	slices.SortFunc(usages, func(a, b *atoms.VoiceCallRatUsage) int {
		return cmp.Compare(a.SortKey(), b.SortKey())
	})
	events := make([]wire.Event, 0, len(usages))
	for _, u := range usages {
		if u.CallCount >= c.minCalls {
			events = append(events, c.encoder.VoiceCallRatUsage(u))
		}
	}
	c.logger.Debug("voice call rat usages filtered", "kept", len(events), "drained", len(usages))
	return Success, events
}

// encodeAll adapts a drain result to a pull result.
func encodeAll[T any](recs []*T, ok bool, enc func(*T) wire.Event) (Result, []wire.Event) {
	if !ok {
		return Skip, nil
	}
	events := make([]wire.Event, len(recs))
	for i, r := range recs {
		events[i] = enc(r)
	}
	return Success, events
}

func (c *Collector) concludeDataCalls() {
	c.mu.Lock()
	trackers := make([]Concluder, 0, len(c.dataCall))
	for t := range c.dataCall {
		trackers = append(trackers, t)
	}
	c.mu.Unlock()
	for _, t := range trackers {
		t.Conclude()
	}
}

func (c *Collector) concludeServiceStates() {
	for _, p := range c.phones.Phones() {
		if t := p.ServiceStateStats(); t != nil {
			t.Conclude()
		}
	}
}

func (c *Collector) concludeIms() {
	for _, p := range c.phones.Phones() {
		if t := p.ImsStats(); t != nil {
			t.Conclude()
		}
	}
}

func (c *Collector) concludeAll() {
	c.concludeDataCalls()
	c.concludeIms()
	c.concludeServiceStates()
}

// Flush concludes every open session and writes the store to its backend.
func (c *Collector) Flush() error {
	c.concludeAll()
	return c.store.Flush()
}

// Clear concludes every open session, then empties the store.
func (c *Collector) Clear() error {
	c.concludeAll()
	return c.store.Clear()
}
