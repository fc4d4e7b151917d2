package storage

import (
	"cmp"
	"slices"
	"time"

	"github.com/roach88/atomstore/internal/atoms"
)

const (
	dayMillis  = int64(24 * time.Hour / time.Millisecond)
	daySeconds = dayMillis / 1000
)

// Each Drain method returns the kind's records and empties the collection,
// provided more than minInterval has passed since the kind's previous drain.
// Otherwise it returns false and leaves the collection untouched.

// drain swaps out *items if the gate is open. It returns the drained records
// and the time since the previous drain. Caller holds mu.
func drain[T any](s *Store, k atoms.Kind, minInterval time.Duration, items *[]*T) ([]*T, int64, bool) {
	now := s.nowMillis()
	elapsed := now - s.snap.PullTimestamps[k.String()]
	if elapsed <= minInterval.Milliseconds() {
		return nil, elapsed, false
	}
	out := *items
	*items = []*T{}
	s.snap.PullTimestamps[k.String()] = now
	s.metrics.records.WithLabelValues(k.String()).Set(0)
	return out, elapsed, true
}

func (s *Store) drained(k atoms.Kind, ok bool, n int) {
	if !ok {
		s.logger.Debug("pull too frequent, skipping", "kind", k)
		return
	}
	s.logger.Debug("drained", "kind", k, "records", n)
	s.pulled()
}

func (s *Store) DrainVoiceCallSessions(minInterval time.Duration) ([]*atoms.VoiceCallSession, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindVoiceCallSession, minInterval, &s.snap.VoiceCallSessions)
	s.mu.Unlock()
	s.drained(atoms.KindVoiceCallSession, ok, len(out))
	return out, ok
}

func (s *Store) DrainVoiceCallRatUsages(minInterval time.Duration) ([]*atoms.VoiceCallRatUsage, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindVoiceCallRatUsage, minInterval, &s.snap.VoiceCallRatUsages)
	s.mu.Unlock()
	s.drained(atoms.KindVoiceCallRatUsage, ok, len(out))
	return out, ok
}

func (s *Store) DrainIncomingSms(minInterval time.Duration) ([]*atoms.IncomingSms, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindIncomingSms, minInterval, &s.snap.IncomingSms)
	s.mu.Unlock()
	s.drained(atoms.KindIncomingSms, ok, len(out))
	return out, ok
}

func (s *Store) DrainOutgoingSms(minInterval time.Duration) ([]*atoms.OutgoingSms, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindOutgoingSms, minInterval, &s.snap.OutgoingSms)
	s.mu.Unlock()
	s.drained(atoms.KindOutgoingSms, ok, len(out))
	return out, ok
}

// DrainDataCallSessions also sorts each session's handover history by cause,
// keeping the RAT array aligned, so the arrays carry no ordering in time.
func (s *Store) DrainDataCallSessions(minInterval time.Duration) ([]*atoms.DataCallSession, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindDataCallSession, minInterval, &s.snap.DataCallSessions)
	for _, d := range out {
		SortJointly(d.HandoverFailureCauses, d.HandoverFailureRat)
	}
	s.mu.Unlock()
	s.drained(atoms.KindDataCallSession, ok, len(out))
	return out, ok
}

// SortJointly sorts primary ascending and applies the same permutation to
// other. Arrays of different length are left alone.
func SortJointly(primary, other []int32) {
	if len(primary) != len(other) {
		return
	}
	idx := make([]int, len(primary))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(primary[a], primary[b]) })
	p, o := slices.Clone(primary), slices.Clone(other)
	for i, j := range idx {
		primary[i] = p[j]
		other[i] = o[j]
	}
}

func (s *Store) DrainCellularServiceStates(minInterval time.Duration) ([]*atoms.CellularServiceState, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindCellularServiceState, minInterval, &s.snap.CellularServiceStates)
	for _, st := range out {
		st.LastUsedMillis = 0
	}
	s.mu.Unlock()
	s.drained(atoms.KindCellularServiceState, ok, len(out))
	return out, ok
}

func (s *Store) DrainCellularDataServiceSwitches(minInterval time.Duration) ([]*atoms.CellularDataServiceSwitch, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindCellularDataServiceSwitch, minInterval, &s.snap.CellularDataServiceSwitches)
	for _, sw := range out {
		sw.LastUsedMillis = 0
	}
	s.mu.Unlock()
	s.drained(atoms.KindCellularDataServiceSwitch, ok, len(out))
	return out, ok
}

// DrainImsRegistrationStats also scales every duration to a one-day window
// when the records cover more than a day.
func (s *Store) DrainImsRegistrationStats(minInterval time.Duration) ([]*atoms.ImsRegistrationStats, bool) {
	s.mu.Lock()
	out, elapsed, ok := drain(s, atoms.KindImsRegistrationStats, minInterval, &s.snap.ImsRegistrationStats)
	for _, st := range out {
		st.LastUsedMillis = 0
		for _, d := range st.Durations() {
			*d = NormalizeToDay(*d, elapsed)
		}
	}
	s.mu.Unlock()
	s.drained(atoms.KindImsRegistrationStats, ok, len(out))
	return out, ok
}

// NormalizeToDay scales a duration accumulated over intervalMillis to a
// one-day window. Intervals of a day or less are returned unchanged. The
// result has whole-second precision.
func NormalizeToDay(valueMillis, intervalMillis int64) int64 {
	if intervalMillis <= dayMillis {
		return valueMillis
	}
	return valueMillis / 1000 * daySeconds / (intervalMillis / 1000) * 1000
}

func (s *Store) DrainImsRegistrationTerminations(minInterval time.Duration) ([]*atoms.ImsRegistrationTermination, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindImsRegistrationTermination, minInterval, &s.snap.ImsRegistrationTerminations)
	for _, t := range out {
		t.LastUsedMillis = 0
	}
	s.mu.Unlock()
	s.drained(atoms.KindImsRegistrationTermination, ok, len(out))
	return out, ok
}

func (s *Store) DrainNetworkRequests(minInterval time.Duration) ([]*atoms.NetworkRequests, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindNetworkRequests, minInterval, &s.snap.NetworkRequests)
	s.mu.Unlock()
	s.drained(atoms.KindNetworkRequests, ok, len(out))
	return out, ok
}

func (s *Store) DrainOutgoingShortCodeSms(minInterval time.Duration) ([]*atoms.OutgoingShortCodeSms, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindOutgoingShortCodeSms, minInterval, &s.snap.OutgoingShortCodeSms)
	s.mu.Unlock()
	s.drained(atoms.KindOutgoingShortCodeSms, ok, len(out))
	return out, ok
}

// DrainSatelliteControllers returns the singleton controller record, if one
// was recorded, and resets it.
func (s *Store) DrainSatelliteControllers(minInterval time.Duration) ([]*atoms.SatelliteController, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindSatelliteController, minInterval, &s.snap.SatelliteControllers)
	s.mu.Unlock()
	s.drained(atoms.KindSatelliteController, ok, len(out))
	return out, ok
}

func (s *Store) DrainSatelliteSessions(minInterval time.Duration) ([]*atoms.SatelliteSession, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindSatelliteSession, minInterval, &s.snap.SatelliteSessions)
	s.mu.Unlock()
	s.drained(atoms.KindSatelliteSession, ok, len(out))
	return out, ok
}

func (s *Store) DrainGbaEvents(minInterval time.Duration) ([]*atoms.GbaEvent, bool) {
	s.mu.Lock()
	out, _, ok := drain(s, atoms.KindGbaEvent, minInterval, &s.snap.GbaEvents)
	s.mu.Unlock()
	s.drained(atoms.KindGbaEvent, ok, len(out))
	return out, ok
}

// UnmeteredNetworks returns the phone's unmetered RAT mask and forgets it.
// The mask reads as 0 if nothing is stored for the phone or it was recorded
// under a different carrier.
func (s *Store) UnmeteredNetworks(phoneID, carrierID int32) int64 {
	s.mu.Lock()
	i := slices.IndexFunc(s.snap.UnmeteredNetworks, func(u *atoms.UnmeteredNetworks) bool {
		return u.PhoneID == phoneID
	})
	if i < 0 {
		s.mu.Unlock()
		return 0
	}
	u := s.snap.UnmeteredNetworks[i]
	var mask int64
	if u.CarrierID == carrierID {
		mask = u.Bitmask
	}
	s.snap.UnmeteredNetworks = slices.Delete(s.snap.UnmeteredNetworks, i, i+1)
	s.metrics.records.WithLabelValues(atoms.KindUnmeteredNetworks.String()).Set(float64(len(s.snap.UnmeteredNetworks)))
	s.mu.Unlock()
	s.pulled()
	return mask
}

// AutoDataSwitchToggleCount returns the toggle count and resets it.
func (s *Store) AutoDataSwitchToggleCount() int32 {
	s.mu.Lock()
	n := s.snap.AutoDataSwitchToggleCount
	s.snap.AutoDataSwitchToggleCount = 0
	s.mu.Unlock()
	if n > 0 {
		s.pulled()
	}
	return n
}
