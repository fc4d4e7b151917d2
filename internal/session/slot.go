// Package session implements long-lived trackers that own one open,
// duration-accumulating record at a time and commit it to the store.
//
// A tracker is either idle or has an active segment. Conclude commits the
// active segment and immediately opens a fresh one, so periodic pulls see
// up-to-date partial durations. Events that arrive while idle are ignored.
package session

import "sync/atomic"

// segment pairs an open record with the wall time it opened at. Neither the
// segment nor its record is modified after publication.
type segment[T any] struct {
	rec         *T
	startMillis int64
}

// Slot holds the active segment of a tracker. The segment reference is
// swapped with compare-and-swap so that a concurrent Conclude and a state
// change never lose an update. Changes go through Update, which publishes a
// modified copy; a record handed out by Rotate or Close belongs to the caller.
type Slot[T any] struct {
	p atomic.Pointer[segment[T]]
}

// Open publishes rec as the active segment starting at now and returns the
// segment it replaced, if any.
func (s *Slot[T]) Open(rec *T, now int64) (prev *T, prevStart int64, ok bool) {
	old := s.p.Swap(&segment[T]{rec: rec, startMillis: now})
	if old == nil {
		return nil, 0, false
	}
	return old.rec, old.startMillis, true
}

// Current returns the active record and its start time.
func (s *Slot[T]) Current() (rec *T, startMillis int64, ok bool) {
	seg := s.p.Load()
	if seg == nil {
		return nil, 0, false
	}
	return seg.rec, seg.startMillis, true
}

// Active reports whether a segment is open.
func (s *Slot[T]) Active() bool {
	return s.p.Load() != nil
}

// Rotate closes the active segment and opens next(closed) starting at now.
// It returns the closed record and its start time, or false if the slot was
// idle.
func (s *Slot[T]) Rotate(now int64, next func(closed *T) *T) (closed *T, startMillis int64, ok bool) {
	for {
		old := s.p.Load()
		if old == nil {
			return nil, 0, false
		}
		seg := &segment[T]{rec: next(old.rec), startMillis: now}
		if s.p.CompareAndSwap(old, seg) {
			return old.rec, old.startMillis, true
		}
	}
}

// Update replaces the active record with change(current), keeping the
// segment's start time. change must return a new record and leave its
// argument untouched; it may run more than once under contention. Update
// reports false if the slot was idle.
func (s *Slot[T]) Update(change func(cur *T) *T) bool {
	for {
		old := s.p.Load()
		if old == nil {
			return false
		}
		seg := &segment[T]{rec: change(old.rec), startMillis: old.startMillis}
		if s.p.CompareAndSwap(old, seg) {
			return true
		}
	}
}

// Close ends the active segment and leaves the slot idle.
func (s *Slot[T]) Close() (closed *T, startMillis int64, ok bool) {
	old := s.p.Swap(nil)
	if old == nil {
		return nil, 0, false
	}
	return old.rec, old.startMillis, true
}
