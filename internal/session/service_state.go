package session

import (
	"log/slog"

	"github.com/coder/quartz"

	"github.com/roach88/atomstore/internal/atoms"
)

// ratUnknown is the network type reported when there is no data service.
const ratUnknown int32 = 0

// ServiceStateTracker accumulates time per service configuration for one
// phone.
type ServiceStateTracker struct {
	sink   ServiceStateSink
	clock  quartz.Clock
	logger *slog.Logger
	slot   Slot[atoms.CellularServiceState]
}

func NewServiceStateTracker(sink ServiceStateSink, opts Options) *ServiceStateTracker {
	opts = opts.withDefaults()
	return &ServiceStateTracker{
		sink:   sink,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
}

func (t *ServiceStateTracker) now() int64 {
	return t.clock.Now().UnixMilli()
}

// OnServiceState reports the phone's current service configuration. The
// first report opens a segment. A report with different dimensions commits
// the open segment and opens a new one; a data RAT change between two known
// RATs also commits a data service switch. Measures in state are ignored.
func (t *ServiceStateTracker) OnServiceState(state atoms.CellularServiceState) {
	state.TotalTimeMillis = 0
	state.LastUsedMillis = 0
	now := t.now()

	cur, _, ok := t.slot.Current()
	if ok && cur.Key() == state.Key() {
		return
	}
	prev, start, ok := t.slot.Open(&state, now)
	if !ok {
		return
	}

	var sw *atoms.CellularDataServiceSwitch
	if prev.DataRat != state.DataRat && prev.DataRat != ratUnknown && state.DataRat != ratUnknown {
		sw = &atoms.CellularDataServiceSwitch{
			RatFrom:      prev.DataRat,
			RatTo:        state.DataRat,
			SimSlotIndex: state.SimSlotIndex,
			IsMultiSim:   state.IsMultiSim,
			CarrierID:    state.CarrierID,
			SwitchCount:  1,
		}
	}
	t.commit(prev, start, now, sw)
}

// OnModemOff commits the open segment and leaves the tracker idle.
func (t *ServiceStateTracker) OnModemOff() {
	now := t.now()
	closed, start, ok := t.slot.Close()
	if !ok {
		t.logger.Debug("modem off without an open service state segment")
		return
	}
	t.commit(closed, start, now, nil)
}

// Conclude commits the time spent so far and reopens the same configuration.
func (t *ServiceStateTracker) Conclude() {
	now := t.now()
	closed, start, ok := t.slot.Rotate(now, func(cur *atoms.CellularServiceState) *atoms.CellularServiceState {
		next := *cur
		return &next
	})
	if !ok {
		return
	}
	t.commit(closed, start, now, nil)
}

// Active reports whether a segment is open.
func (t *ServiceStateTracker) Active() bool {
	return t.slot.Active()
}

func (t *ServiceStateTracker) commit(state *atoms.CellularServiceState, start, now int64, sw *atoms.CellularDataServiceSwitch) {
	state.TotalTimeMillis = max(now-start, 0)
	t.sink.AddServiceState(state, sw)
}
