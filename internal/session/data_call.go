package session

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/coder/quartz"

	"github.com/roach88/atomstore/internal/atoms"
)

// DataCallTracker follows the data connections of one phone. Each connection
// is keyed by its connection id and owns one open session segment.
type DataCallTracker struct {
	sink   DataCallSink
	clock  quartz.Clock
	logger *slog.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	calls map[int]*Slot[atoms.DataCallSession]
}

func NewDataCallTracker(sink DataCallSink, opts Options) *DataCallTracker {
	opts = opts.withDefaults()
	return &DataCallTracker{
		sink:   sink,
		clock:  opts.Clock,
		logger: opts.Logger,
		rng:    opts.Rand,
		calls:  make(map[int]*Slot[atoms.DataCallSession]),
	}
}

func (t *DataCallTracker) now() int64 {
	return t.clock.Now().UnixMilli()
}

func (t *DataCallTracker) slot(id int) *Slot[atoms.DataCallSession] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[id]
}

// OnSetup opens a session for connection id. Outcome fields in call are
// reset; the session is tagged with a fresh random dimension. A session
// already open under the same id is committed first as disconnected.
func (t *DataCallTracker) OnSetup(id int, call atoms.DataCallSession) {
	now := t.now()
	rec := call.Clone()
	rec.Ongoing = true
	rec.SetupFailed = false
	rec.FailureCause = 0
	rec.SuggestedRetryMillis = 0
	rec.DeactivateReason = 0
	rec.DurationMinutes = 0
	rec.RatSwitchCount = 0
	rec.HandoverFailureCauses = nil
	rec.HandoverFailureRat = nil

	t.mu.Lock()
	rec.Dimension = t.rng.Int32()
	s, ok := t.calls[id]
	if !ok {
		s = &Slot[atoms.DataCallSession]{}
		t.calls[id] = s
	}
	t.mu.Unlock()

	if prev, start, ok := s.Open(rec, now); ok {
		t.logger.Warn("data call set up over an open session", "connection", id)
		prev.Ongoing = false
		t.commit(prev, start, now)
	}
}

// OnSetupFailed records a connection that never came up. Any open session
// for id is discarded.
func (t *DataCallTracker) OnSetupFailed(id int, call atoms.DataCallSession, cause, suggestedRetryMillis int32) {
	t.mu.Lock()
	rec := call.Clone()
	rec.Dimension = t.rng.Int32()
	delete(t.calls, id)
	t.mu.Unlock()

	rec.SetupFailed = true
	rec.FailureCause = cause
	rec.SuggestedRetryMillis = suggestedRetryMillis
	rec.Ongoing = false
	rec.DurationMinutes = 0
	t.sink.AddDataCallSession(rec)
}

// OnRatChanged records a RAT change on an open session.
func (t *DataCallTracker) OnRatChanged(id int, rat, band int32) {
	t.update(id, func(next *atoms.DataCallSession) {
		if next.RatAtEnd != rat {
			next.RatSwitchCount++
			next.RatAtEnd = rat
		}
		next.BandAtEnd = band
	})
}

// OnOutOfService marks whether the phone was out of service while the
// session was up.
func (t *DataCallTracker) OnOutOfService(id int, oos bool) {
	t.update(id, func(next *atoms.DataCallSession) {
		next.OosAtEnd = oos
	})
}

// OnHandoverFailure records a handover failure between two RATs.
func (t *DataCallTracker) OnHandoverFailure(id int, cause, sourceRat, targetRat int32) {
	var recorded bool
	if !t.update(id, func(next *atoms.DataCallSession) {
		recorded = next.AddHandoverFailure(cause, sourceRat, targetRat)
	}) {
		return
	}
	if !recorded {
		t.logger.Debug("handover failure not recorded", "connection", id, "cause", cause)
	}
}

// OnDisconnected commits the session for id and forgets it.
func (t *DataCallTracker) OnDisconnected(id int, reason int32) {
	now := t.now()
	t.mu.Lock()
	s := t.calls[id]
	delete(t.calls, id)
	t.mu.Unlock()
	if s == nil {
		t.logger.Debug("data call disconnected without an open session", "connection", id)
		return
	}
	closed, start, ok := s.Close()
	if !ok {
		return
	}
	closed.DeactivateReason = reason
	closed.Ongoing = false
	t.commit(closed, start, now)
}

// Conclude commits every open session as ongoing and reopens each with
// cleared counters under the same dimension.
func (t *DataCallTracker) Conclude() {
	now := t.now()
	t.mu.Lock()
	slots := make([]*Slot[atoms.DataCallSession], 0, len(t.calls))
	for _, s := range t.calls {
		slots = append(slots, s)
	}
	t.mu.Unlock()

	for _, s := range slots {
		closed, start, ok := s.Rotate(now, func(cur *atoms.DataCallSession) *atoms.DataCallSession {
			next := cur.Clone()
			next.RatSwitchCount = 0
			next.DurationMinutes = 0
			next.HandoverFailureCauses = nil
			next.HandoverFailureRat = nil
			return next
		})
		if ok {
			closed.Ongoing = true
			t.commit(closed, start, now)
		}
	}
}

// Active reports whether any session is open.
func (t *DataCallTracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.calls {
		if s.Active() {
			return true
		}
	}
	return false
}

// update publishes a changed copy of the open session for id. It reports
// false when no session is open.
func (t *DataCallTracker) update(id int, change func(next *atoms.DataCallSession)) bool {
	s := t.slot(id)
	if s == nil {
		return false
	}
	return s.Update(func(cur *atoms.DataCallSession) *atoms.DataCallSession {
		next := cur.Clone()
		change(next)
		return next
	})
}

func (t *DataCallTracker) commit(call *atoms.DataCallSession, start, now int64) {
	call.DurationMinutes = millisToMinutes(now - start)
	t.sink.AddDataCallSession(call)
}

func millisToMinutes(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + 30_000) / 60_000
}
