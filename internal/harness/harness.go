package harness

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/collector"
	"github.com/roach88/atomstore/internal/persist"
	"github.com/roach88/atomstore/internal/storage"
	"github.com/roach88/atomstore/internal/testutil"
	"github.com/roach88/atomstore/internal/wire"
)

// buildID tags every snapshot a harness store writes, so restarts keep data.
const buildID = "harness"

// Harness holds the store under test and everything needed to reopen it.
type Harness struct {
	tb       testing.TB
	scenario *Scenario
	clock    *quartz.Mock
	logger   *slog.Logger
	backend  *persist.MemoryBackend

	// restarts counts reopens so each store gets fresh generators.
	restarts  uint64
	store     *storage.Store
	collector *collector.Collector
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory backend. Step errors that
// come from the scenario itself (a record that does not decode) are
// returned; failed expectations and assertions are recorded in the result.
func Run(tb testing.TB, scenario *Scenario) (*Result, error) {
	tb.Helper()
	h := &Harness{
		tb:       tb,
		scenario: scenario,
		clock:    testutil.NewClock(tb),
		logger:   testutil.DiscardLogger(),
		backend:  persist.NewMemoryBackend(nil),
	}
	h.open()
	defer func() { _ = h.store.Close() }()

	result := NewResult()
	ctx := context.Background()
	for i := range scenario.Steps {
		if err := h.step(ctx, i, &scenario.Steps[i], result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, k := range atoms.Kinds() {
		if k.Stored() {
			result.Stored[k.String()] = h.store.Len(k)
		}
	}
	for _, a := range scenario.Assertions {
		if err := CheckAssertion(result, a); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

// open builds a store and collector over the shared backend and clock.
func (h *Harness) open() {
	seed := h.scenario.Seed + h.restarts*1000
	h.store = storage.New(context.Background(), storage.Options{
		Backend:         h.backend,
		Clock:           h.clock,
		Logger:          h.logger,
		Rand:            testutil.NewRand(seed),
		Profile:         atoms.Profile{LowMemory: h.scenario.LowMemory},
		BuildID:         buildID,
		SaveImmediately: true,
		Registerer:      prometheus.NewRegistry(),
	})
	h.collector = collector.New(h.store, collector.Options{
		Clock:      h.clock,
		Logger:     h.logger,
		Debug:      h.scenario.Debug,
		Rand:       testutil.NewRand(seed + 1),
		Registerer: prometheus.NewRegistry(),
	})
}

func (h *Harness) step(ctx context.Context, index int, st *Step, result *Result) error {
	switch {
	case st.Add != "":
		return h.add(st.Add, &st.Record)

	case st.Advance > 0:
		testutil.Advance(h.tb, h.clock, st.Advance)

	case st.Pull != "":
		k, err := atoms.ParseKind(st.Pull)
		if err != nil {
			return err
		}
		res, events := h.collector.Pull(ctx, k)
		if events == nil {
			events = []wire.Event{}
		}
		result.AddPull(index, k, res.String(), events)
		if st.Expect != nil {
			checkExpect(index, k, st.Expect, res.String(), len(events), result)
		}

	case st.Flush:
		if err := h.collector.Flush(); err != nil {
			result.AddError(fmt.Sprintf("step %d: flush: %v", index, err))
		}

	case st.Clear:
		if err := h.collector.Clear(); err != nil {
			result.AddError(fmt.Sprintf("step %d: clear: %v", index, err))
		}

	case st.Restart:
		if err := h.store.Close(); err != nil {
			result.AddError(fmt.Sprintf("step %d: close: %v", index, err))
		}
		h.restarts++
		h.open()
	}
	return nil
}

func checkExpect(index int, k atoms.Kind, want *PullExpect, res string, n int, result *Result) {
	if want.Result != "" && want.Result != res {
		result.AddError(fmt.Sprintf("step %d: pull %s: expected result %s, got %s", index, k, want.Result, res))
	}
	if want.Events != nil && *want.Events != n {
		result.AddError(fmt.Sprintf("step %d: pull %s: expected %d events, got %d", index, k, *want.Events, n))
	}
}

// decode unmarshals node into a new T.
func decode[T any](node *yaml.Node) (*T, error) {
	var rec T
	if err := node.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// add decodes a record of the named kind and hands it to the store.
func (h *Harness) add(kind string, node *yaml.Node) error {
	k, err := atoms.ParseKind(kind)
	if err != nil {
		return err
	}
	s := h.store

	switch k {
	case atoms.KindVoiceCallSession:
		return addWith(node, s.AddVoiceCallSession)
	case atoms.KindVoiceCallRatUsage:
		return addWith(node, func(u *atoms.VoiceCallRatUsage) { s.AddVoiceCallRatUsage(u) })
	case atoms.KindIncomingSms:
		return addWith(node, s.AddIncomingSms)
	case atoms.KindOutgoingSms:
		return addWith(node, s.AddOutgoingSms)
	case atoms.KindDataCallSession:
		return addWith(node, s.AddDataCallSession)
	case atoms.KindCellularServiceState:
		return addWith(node, func(st *atoms.CellularServiceState) { s.AddServiceState(st, nil) })
	case atoms.KindCellularDataServiceSwitch:
		return addWith(node, func(sw *atoms.CellularDataServiceSwitch) { s.AddServiceState(nil, sw) })
	case atoms.KindImsRegistrationStats:
		return addWith(node, s.AddImsRegistrationStats)
	case atoms.KindImsRegistrationTermination:
		return addWith(node, s.AddImsRegistrationTermination)
	case atoms.KindNetworkRequests:
		return addWith(node, s.AddNetworkRequests)
	case atoms.KindCarrierIDMismatch:
		return addWith(node, func(m *atoms.CarrierIDMismatch) { s.AddCarrierIDMismatch(m) })
	case atoms.KindOutgoingShortCodeSms:
		return addWith(node, s.AddOutgoingShortCodeSms)
	case atoms.KindSatelliteController:
		return addWith(node, s.AddSatelliteController)
	case atoms.KindSatelliteSession:
		return addWith(node, s.AddSatelliteSession)
	case atoms.KindGbaEvent:
		return addWith(node, s.AddGbaEvent)
	case atoms.KindUnmeteredNetworks:
		return addWith(node, func(u *atoms.UnmeteredNetworks) {
			s.AddUnmeteredNetworks(u.PhoneID, u.CarrierID, u.Bitmask)
		})
	default:
		return fmt.Errorf("kind %s cannot be added", k)
	}
}

func addWith[T any](node *yaml.Node, add func(*T)) error {
	rec, err := decode[T](node)
	if err != nil {
		return err
	}
	add(rec)
	return nil
}
