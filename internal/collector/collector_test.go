package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/session"
	"github.com/roach88/atomstore/internal/storage"
	"github.com/roach88/atomstore/internal/wire"
)

const day = 24 * time.Hour

type fixture struct {
	t       *testing.T
	clock   *quartz.Mock
	logger  *slog.Logger
	store   *storage.Store
	reg     *prometheus.Registry
	phones  StaticPhones
	ledger  *fakeLedger
	coll    *Collector
	options Options
}

type fakeLedger struct {
	records []PullRecord
	err     error
}

func (l *fakeLedger) RecordPull(_ context.Context, rec PullRecord) error {
	l.records = append(l.records, rec)
	return l.err
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		clock:  quartz.NewMock(t),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		reg:    prometheus.NewRegistry(),
		ledger: &fakeLedger{},
	}
	f.store = storage.New(testContext(t), storage.Options{
		Clock:           f.clock,
		Logger:          f.logger,
		Rand:            rand.New(rand.NewPCG(1, 2)),
		SaveImmediately: true,
		BuildID:         "test-build",
	})
	t.Cleanup(func() { _ = f.store.Close() })

	opts.Clock = f.clock
	opts.Logger = f.logger
	opts.Rand = rand.New(rand.NewPCG(3, 4))
	opts.Registerer = f.reg
	if opts.Ledger == nil {
		opts.Ledger = f.ledger
	}
	f.options = opts
	f.coll = New(f.store, f.optionsWithPhones())
	return f
}

// optionsWithPhones routes phone lookups through the fixture so tests can
// add phones after construction.
func (f *fixture) optionsWithPhones() Options {
	o := f.options
	o.Phones = phoneFunc(func() []Phone { return f.phones })
	return o
}

type phoneFunc func() []Phone

func (p phoneFunc) Phones() []Phone { return p() }

func (f *fixture) advance(d time.Duration) {
	f.t.Helper()
	f.clock.Advance(d).MustWait(testContext(f.t))
}

func (f *fixture) trackerOptions() session.Options {
	return session.Options{Clock: f.clock, Logger: f.logger, Rand: rand.New(rand.NewPCG(5, 6))}
}

func TestPull_UnknownAndUnexportedKindsSkip(t *testing.T) {
	f := newFixture(t, Options{})
	f.advance(day)

	for _, k := range []atoms.Kind{atoms.KindUnknown, atoms.Kind(999), atoms.KindCarrierIDMismatch, atoms.KindUnmeteredNetworks} {
		res, events := f.coll.Pull(testContext(t), k)
		assert.Equal(t, Skip, res, k.String())
		assert.Empty(t, events)
	}
}

func TestPull_CooldownGatesStoredKinds(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AddNetworkRequests(&atoms.NetworkRequests{CarrierID: 1, Capability: 2, RequestCount: 3})

	res, _ := f.coll.Pull(testContext(t), atoms.KindNetworkRequests)
	assert.Equal(t, Skip, res, "store was just created")

	f.advance(DefaultCooldown + time.Second)
	res, events := f.coll.Pull(testContext(t), atoms.KindNetworkRequests)
	require.Equal(t, Success, res)
	require.Len(t, events, 1)
	v, _ := events[0].Get("request_count")
	assert.Equal(t, wire.Int32(3), v)

	res, _ = f.coll.Pull(testContext(t), atoms.KindNetworkRequests)
	assert.Equal(t, Skip, res)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.coll.metrics.pullsTotal.WithLabelValues("network_requests", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.coll.metrics.pullsTotal.WithLabelValues("network_requests", "skip")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.coll.metrics.events.WithLabelValues("network_requests")))
}

func TestPull_SuccessWithNoRecords(t *testing.T) {
	f := newFixture(t, Options{})
	f.advance(day)

	res, events := f.coll.Pull(testContext(t), atoms.KindGbaEvent)
	assert.Equal(t, Success, res)
	assert.Empty(t, events)
}

func TestPull_PerKindCooldownOverride(t *testing.T) {
	f := newFixture(t, Options{Cooldowns: map[atoms.Kind]time.Duration{atoms.KindGbaEvent: time.Minute}})
	assert.Equal(t, time.Minute, f.coll.Cooldown(atoms.KindGbaEvent))
	assert.Equal(t, DefaultCooldown, f.coll.Cooldown(atoms.KindSatelliteSession))

	f.advance(2 * time.Minute)
	res, _ := f.coll.Pull(testContext(t), atoms.KindGbaEvent)
	assert.Equal(t, Success, res)
	res, _ = f.coll.Pull(testContext(t), atoms.KindSatelliteSession)
	assert.Equal(t, Skip, res)
}

func TestPull_DebugCooldown(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	assert.Equal(t, DebugCooldown, f.coll.Cooldown(atoms.KindGbaEvent))
}

func TestPull_LiveKindsNeedPhones(t *testing.T) {
	f := newFixture(t, Options{})

	res, _ := f.coll.Pull(testContext(t), atoms.KindSupportedRadioAccessFamily)
	assert.Equal(t, Skip, res)
	res, _ = f.coll.Pull(testContext(t), atoms.KindCarrierIDTableVersion)
	assert.Equal(t, Skip, res)

	f.phones = StaticPhones{
		&TrackedPhone{RAF: 0b0011, TableVersion: 7},
		&TrackedPhone{RAF: 0b0100, TableVersion: 9},
	}

	res, events := f.coll.Pull(testContext(t), atoms.KindSupportedRadioAccessFamily)
	require.Equal(t, Success, res)
	require.Len(t, events, 1)
	v, _ := events[0].Get("supported_network_type_bitmask")
	assert.Equal(t, wire.Int64(0b0111), v)

	res, events = f.coll.Pull(testContext(t), atoms.KindCarrierIDTableVersion)
	require.Equal(t, Success, res)
	v, _ = events[0].Get("table_version")
	assert.Equal(t, wire.Int32(7), v, "first phone's table")
}

func TestPull_VoiceCallRatUsageSortedAndFiltered(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AddVoiceCallRatUsage(
		&atoms.VoiceCallRatUsage{CarrierID: 2, Rat: 1, CallCount: 5},
		&atoms.VoiceCallRatUsage{CarrierID: 1, Rat: 13, CallCount: 9},
		&atoms.VoiceCallRatUsage{CarrierID: 1, Rat: 3, CallCount: 6},
		&atoms.VoiceCallRatUsage{CarrierID: 1, Rat: 20, CallCount: 4},
	)
	f.advance(day)

	res, events := f.coll.Pull(testContext(t), atoms.KindVoiceCallRatUsage)
	require.Equal(t, Success, res)
	require.Len(t, events, 3)

	var got [][2]wire.Value
	for _, ev := range events {
		c, _ := ev.Get("carrier_id")
		r, _ := ev.Get("rat")
		got = append(got, [2]wire.Value{c, r})
	}
	assert.Equal(t, [][2]wire.Value{
		{wire.Int32(1), wire.Int32(3)},
		{wire.Int32(1), wire.Int32(13)},
		{wire.Int32(2), wire.Int32(1)},
	}, got)
}

func TestPull_VoiceCallRatUsageDebugKeepsSmallBuckets(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	f.store.AddVoiceCallRatUsage(&atoms.VoiceCallRatUsage{CarrierID: 1, Rat: 13, CallCount: 1})
	f.advance(time.Minute)

	res, events := f.coll.Pull(testContext(t), atoms.KindVoiceCallRatUsage)
	require.Equal(t, Success, res)
	assert.Len(t, events, 1)
}

func TestPull_ServiceStateConcludesOpenSegments(t *testing.T) {
	f := newFixture(t, Options{})
	tracker := session.NewServiceStateTracker(f.store, f.trackerOptions())
	f.phones = StaticPhones{&TrackedPhone{ServiceState: tracker}}

	tracker.OnServiceState(atoms.CellularServiceState{VoiceRat: 13, DataRat: 13, CarrierID: 1})
	f.advance(day)

	res, events := f.coll.Pull(testContext(t), atoms.KindCellularServiceState)
	require.Equal(t, Success, res)
	require.Len(t, events, 1)
	v, _ := events[0].Get("total_time_seconds")
	assert.Equal(t, wire.Int32(86400), v)
	assert.True(t, tracker.Active(), "segment reopened after conclude")
}

func TestPull_ImsConcludesOpenSegments(t *testing.T) {
	f := newFixture(t, Options{})
	tracker := session.NewImsRegistrationTracker(f.store, session.ImsIdentity{CarrierID: 1}, f.trackerOptions())
	f.phones = StaticPhones{&TrackedPhone{Ims: tracker}, &TrackedPhone{}}

	tracker.OnRegistered(13)
	f.advance(day)

	res, events := f.coll.Pull(testContext(t), atoms.KindImsRegistrationStats)
	require.Equal(t, Success, res)
	require.Len(t, events, 1)
	v, _ := events[0].Get("registered_seconds")
	assert.Equal(t, wire.Int32(86400), v)
}

func TestPull_DataCallConcludesRegisteredTrackers(t *testing.T) {
	f := newFixture(t, Options{})
	registered := session.NewDataCallTracker(f.store, f.trackerOptions())
	unregistered := session.NewDataCallTracker(f.store, f.trackerOptions())
	f.coll.RegisterOngoingDataCalls(registered)
	f.coll.RegisterOngoingDataCalls(unregistered)
	f.coll.UnregisterOngoingDataCalls(unregistered)

	registered.OnSetup(1, atoms.DataCallSession{CarrierID: 1})
	unregistered.OnSetup(1, atoms.DataCallSession{CarrierID: 2})
	f.advance(day)

	res, events := f.coll.Pull(testContext(t), atoms.KindDataCallSession)
	require.Equal(t, Success, res)
	require.Len(t, events, 1)
	v, _ := events[0].Get("carrier_id")
	assert.Equal(t, wire.Int32(1), v)
	v, _ = events[0].Get("ongoing")
	assert.Equal(t, wire.Bool(true), v)
	v, _ = events[0].Get("duration_minutes")
	assert.Equal(t, wire.Int32(1440), v)
}

func TestPull_RecordsLedger(t *testing.T) {
	f := newFixture(t, Options{})
	f.advance(day)

	f.coll.Pull(testContext(t), atoms.KindGbaEvent)
	f.coll.Pull(testContext(t), atoms.KindGbaEvent)

	require.Len(t, f.ledger.records, 2)
	assert.Equal(t, PullRecord{Kind: atoms.KindGbaEvent, Result: Success, At: f.clock.Now()}, f.ledger.records[0])
	assert.Equal(t, Skip, f.ledger.records[1].Result)
}

func TestPull_LedgerFailureDoesNotFailPull(t *testing.T) {
	f := newFixture(t, Options{Ledger: &fakeLedger{err: errors.New("disk full")}})
	f.advance(day)

	res, _ := f.coll.Pull(testContext(t), atoms.KindGbaEvent)
	assert.Equal(t, Success, res)
}

func TestFlush_ConcludesBeforeWriting(t *testing.T) {
	f := newFixture(t, Options{})
	tracker := session.NewServiceStateTracker(f.store, f.trackerOptions())
	f.phones = StaticPhones{&TrackedPhone{ServiceState: tracker}}
	tracker.OnServiceState(atoms.CellularServiceState{VoiceRat: 13, CarrierID: 1})
	f.advance(time.Hour)

	require.NoError(t, f.coll.Flush())
	assert.Equal(t, 1, f.store.Len(atoms.KindCellularServiceState))
	assert.True(t, tracker.Active())
}

func TestClear_ConcludesThenEmpties(t *testing.T) {
	f := newFixture(t, Options{})
	tracker := session.NewServiceStateTracker(f.store, f.trackerOptions())
	f.phones = StaticPhones{&TrackedPhone{ServiceState: tracker}}
	tracker.OnServiceState(atoms.CellularServiceState{VoiceRat: 13, CarrierID: 1})
	f.store.AddGbaEvent(&atoms.GbaEvent{CarrierID: 1})
	f.advance(time.Hour)

	require.NoError(t, f.coll.Clear())
	assert.Zero(t, f.store.Len(atoms.KindCellularServiceState))
	assert.Zero(t, f.store.Len(atoms.KindGbaEvent))
	assert.True(t, tracker.Active())
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "unknown", Result(9).String())
}
