package session

import (
	"log/slog"

	"github.com/coder/quartz"

	"github.com/roach88/atomstore/internal/atoms"
)

// ImsIdentity is the subscription an IMS tracker reports for.
type ImsIdentity struct {
	CarrierID    int32
	SimSlotIndex int32
	IsMultiSim   bool
}

// ImsCapabilities lists which IMS features are capable and available.
type ImsCapabilities struct {
	VoiceCapable   bool
	VoiceAvailable bool
	SmsCapable     bool
	SmsAvailable   bool
	VideoCapable   bool
	VideoAvailable bool
	UtCapable      bool
	UtAvailable    bool
}

type imsState struct {
	rat        int32
	registered bool
	caps       ImsCapabilities
}

// ImsRegistrationTracker accumulates IMS registration and feature time for
// one phone, and records deregistrations.
type ImsRegistrationTracker struct {
	sink   ImsSink
	id     ImsIdentity
	clock  quartz.Clock
	logger *slog.Logger
	slot   Slot[imsState]
}

func NewImsRegistrationTracker(sink ImsSink, id ImsIdentity, opts Options) *ImsRegistrationTracker {
	opts = opts.withDefaults()
	return &ImsRegistrationTracker{
		sink:   sink,
		id:     id,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
}

func (t *ImsRegistrationTracker) now() int64 {
	return t.clock.Now().UnixMilli()
}

// OnRegistering opens a segment for a registration attempt on rat.
func (t *ImsRegistrationTracker) OnRegistering(rat int32) {
	t.transition(func(cur imsState) imsState {
		return imsState{rat: rat}
	})
}

// OnRegistered marks the registration complete on rat. Capabilities carry
// over when the RAT does not change.
func (t *ImsRegistrationTracker) OnRegistered(rat int32) {
	t.transition(func(cur imsState) imsState {
		next := imsState{rat: rat, registered: true}
		if cur.rat == rat {
			next.caps = cur.caps
		}
		return next
	})
}

// OnCapabilitiesChanged updates feature capability and availability. It is
// ignored while idle.
func (t *ImsRegistrationTracker) OnCapabilitiesChanged(caps ImsCapabilities) {
	if !t.slot.Active() {
		t.logger.Debug("ims capabilities changed without an open segment")
		return
	}
	t.transition(func(cur imsState) imsState {
		cur.caps = caps
		return cur
	})
}

// OnDeregistered commits the open segment and records the termination. A
// deregistration before registration completed counts as a setup failure.
func (t *ImsRegistrationTracker) OnDeregistered(reasonCode, extraCode int32, extraMessage string) {
	now := t.now()
	closed, start, ok := t.slot.Close()
	if !ok {
		t.logger.Debug("ims deregistered without an open segment")
		return
	}
	t.commit(*closed, start, now)
	t.sink.AddImsRegistrationTermination(&atoms.ImsRegistrationTermination{
		CarrierID:    t.id.CarrierID,
		IsMultiSim:   t.id.IsMultiSim,
		RatAtEnd:     closed.rat,
		SetupFailed:  !closed.registered,
		ReasonCode:   reasonCode,
		ExtraCode:    extraCode,
		ExtraMessage: extraMessage,
		Count:        1,
	})
}

// Conclude commits the time spent so far and reopens the same state.
func (t *ImsRegistrationTracker) Conclude() {
	now := t.now()
	closed, start, ok := t.slot.Rotate(now, func(cur *imsState) *imsState {
		next := *cur
		return &next
	})
	if ok {
		t.commit(*closed, start, now)
	}
}

// Active reports whether a segment is open.
func (t *ImsRegistrationTracker) Active() bool {
	return t.slot.Active()
}

// transition commits the open segment, if any, and opens next(current).
// An unchanged state keeps the segment running.
func (t *ImsRegistrationTracker) transition(next func(cur imsState) imsState) {
	now := t.now()
	var cur imsState
	if rec, _, ok := t.slot.Current(); ok {
		cur = *rec
	}
	n := next(cur)
	if t.slot.Active() && n == cur {
		return
	}
	if prev, start, ok := t.slot.Open(&n, now); ok {
		t.commit(*prev, start, now)
	}
}

func (t *ImsRegistrationTracker) commit(st imsState, start, now int64) {
	d := max(now-start, 0)
	pick := func(on bool) int64 {
		if on {
			return d
		}
		return 0
	}
	t.sink.AddImsRegistrationStats(&atoms.ImsRegistrationStats{
		CarrierID:            t.id.CarrierID,
		SimSlotIndex:         t.id.SimSlotIndex,
		Rat:                  st.rat,
		RegisteredMillis:     pick(st.registered),
		VoiceCapableMillis:   pick(st.caps.VoiceCapable),
		VoiceAvailableMillis: pick(st.caps.VoiceAvailable),
		SmsCapableMillis:     pick(st.caps.SmsCapable),
		SmsAvailableMillis:   pick(st.caps.SmsAvailable),
		VideoCapableMillis:   pick(st.caps.VideoCapable),
		VideoAvailableMillis: pick(st.caps.VideoAvailable),
		UtCapableMillis:      pick(st.caps.UtCapable),
		UtAvailableMillis:    pick(st.caps.UtAvailable),
	})
}
