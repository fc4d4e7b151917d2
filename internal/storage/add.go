package storage

import (
	"slices"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/bounded"
)

// The store takes ownership of every record passed to an Add method. Callers
// must not modify a record after handing it over.

// insert places rec into items under k's capacity. Caller holds mu.
func insert[T any](s *Store, k atoms.Kind, items []*T, rec *T, full bounded.FullPolicy[T]) []*T {
	out, outcome := bounded.Insert(items, rec, s.profile.MaxLength(k), s.rng, full)
	s.metrics.added(k, outcome.String())
	if outcome == bounded.Dropped {
		s.logger.Warn("collection has no capacity, dropping record", "kind", k)
	}
	return out
}

// upsert merges rec into the record with the same key, or inserts it when
// there is none. It returns the updated slice and the record now holding
// rec's measures. Caller holds mu.
func upsert[T any, K comparable](
	s *Store,
	k atoms.Kind,
	items []*T,
	rec *T,
	key func(*T) K,
	merge func(dst, src *T),
	full bounded.FullPolicy[T],
) ([]*T, *T) {
	want := key(rec)
	for _, it := range items {
		if key(it) == want {
			merge(it, rec)
			s.metrics.added(k, "merged")
			return items, it
		}
	}
	return insert(s, k, items, rec, full), rec
}

func (s *Store) finish(k atoms.Kind) {
	s.metrics.records.WithLabelValues(k.String()).Set(float64(s.snap.Len(k)))
	s.mu.Unlock()
	s.updated()
}

// AddVoiceCallSession stores a completed call. Calls are never merged.
func (s *Store) AddVoiceCallSession(call *atoms.VoiceCallSession) {
	s.mu.Lock()
	s.snap.VoiceCallSessions = insert(s, atoms.KindVoiceCallSession, s.snap.VoiceCallSessions, call, voiceCallFull)
	s.finish(atoms.KindVoiceCallSession)
}

// AddVoiceCallRatUsage folds per-RAT call usage into the store.
func (s *Store) AddVoiceCallRatUsage(usages ...*atoms.VoiceCallRatUsage) {
	s.mu.Lock()
	for _, u := range usages {
		s.snap.VoiceCallRatUsages, _ = upsert(s, atoms.KindVoiceCallRatUsage, s.snap.VoiceCallRatUsages, u,
			(*atoms.VoiceCallRatUsage).Key,
			func(dst, src *atoms.VoiceCallRatUsage) {
				dst.TotalDurationMillis += src.TotalDurationMillis
				dst.CallCount += src.CallCount
			},
			randomFull[atoms.VoiceCallRatUsage]())
	}
	s.finish(atoms.KindVoiceCallRatUsage)
}

// AddIncomingSms stores a received message. Messages with equal dimensions
// are only merged when the collection is full.
func (s *Store) AddIncomingSms(sms *atoms.IncomingSms) {
	sms.Hash = sms.DedupHash()
	s.mu.Lock()
	s.snap.IncomingSms = insert(s, atoms.KindIncomingSms, s.snap.IncomingSms, sms, incomingSmsFull)
	s.finish(atoms.KindIncomingSms)
}

// AddOutgoingSms stores a sent message. If a stored message has the same
// message id and a retry id at least as large, the incoming retry id is
// bumped past it.
func (s *Store) AddOutgoingSms(sms *atoms.OutgoingSms) {
	sms.Hash = sms.DedupHash()
	s.mu.Lock()
	for _, stored := range s.snap.OutgoingSms {
		if stored.MessageID == sms.MessageID && stored.RetryID >= sms.RetryID {
			sms.RetryID = stored.RetryID + 1
		}
	}
	s.snap.OutgoingSms = insert(s, atoms.KindOutgoingSms, s.snap.OutgoingSms, sms, outgoingSmsFull)
	s.finish(atoms.KindOutgoingSms)
}

// AddServiceState folds a closed service state segment, and the data RAT
// switch that ended it if any, into the store. Either argument may be nil.
func (s *Store) AddServiceState(state *atoms.CellularServiceState, sw *atoms.CellularDataServiceSwitch) {
	s.mu.Lock()
	now := s.nowMillis()
	if state != nil {
		var held *atoms.CellularServiceState
		s.snap.CellularServiceStates, held = upsert(s, atoms.KindCellularServiceState, s.snap.CellularServiceStates, state,
			(*atoms.CellularServiceState).Key,
			func(dst, src *atoms.CellularServiceState) { dst.TotalTimeMillis += src.TotalTimeMillis },
			serviceStateFull)
		held.LastUsedMillis = now
	}
	if sw != nil {
		var held *atoms.CellularDataServiceSwitch
		s.snap.CellularDataServiceSwitches, held = upsert(s, atoms.KindCellularDataServiceSwitch, s.snap.CellularDataServiceSwitches, sw,
			(*atoms.CellularDataServiceSwitch).Key,
			func(dst, src *atoms.CellularDataServiceSwitch) { dst.SwitchCount += src.SwitchCount },
			dataSwitchFull)
		held.LastUsedMillis = now
		s.metrics.records.WithLabelValues(atoms.KindCellularDataServiceSwitch.String()).Set(float64(len(s.snap.CellularDataServiceSwitches)))
	}
	s.finish(atoms.KindCellularServiceState)
}

// AddDataCallSession folds a data call segment into the store. Segments are
// matched by their Dimension tag. On a match the stored counters and
// handover history are carried over into the incoming segment, which then
// replaces the stored one.
func (s *Store) AddDataCallSession(call *atoms.DataCallSession) {
	s.mu.Lock()
	i := slices.IndexFunc(s.snap.DataCallSessions, func(d *atoms.DataCallSession) bool {
		return d.Dimension == call.Dimension
	})
	if i >= 0 {
		prev := s.snap.DataCallSessions[i]
		call.RatSwitchCount += prev.RatSwitchCount
		call.DurationMinutes += prev.DurationMinutes
		call.HandoverFailureCauses = concatCapped(call.HandoverFailureCauses, prev.HandoverFailureCauses, atoms.HandoverFailureLimit)
		call.HandoverFailureRat = concatCapped(call.HandoverFailureRat, prev.HandoverFailureRat, atoms.HandoverFailureLimit)
		s.snap.DataCallSessions[i] = call
		s.metrics.added(atoms.KindDataCallSession, "replaced")
	} else {
		s.snap.DataCallSessions = insert(s, atoms.KindDataCallSession, s.snap.DataCallSessions, call, randomFull[atoms.DataCallSession]())
	}
	s.finish(atoms.KindDataCallSession)
}

func concatCapped(a, b []int32, limit int) []int32 {
	out := make([]int32, 0, min(len(a)+len(b), limit))
	out = append(out, a[:min(len(a), limit)]...)
	return append(out, b[:min(len(b), limit-len(out))]...)
}

// AddImsRegistrationStats folds IMS registration durations into the store.
func (s *Store) AddImsRegistrationStats(stats *atoms.ImsRegistrationStats) {
	s.mu.Lock()
	var held *atoms.ImsRegistrationStats
	s.snap.ImsRegistrationStats, held = upsert(s, atoms.KindImsRegistrationStats, s.snap.ImsRegistrationStats, stats,
		(*atoms.ImsRegistrationStats).Key,
		func(dst, src *atoms.ImsRegistrationStats) {
			d, v := dst.Durations(), src.Durations()
			for i := range d {
				*d[i] += *v[i]
			}
		},
		imsRegistrationFull)
	held.LastUsedMillis = s.nowMillis()
	s.finish(atoms.KindImsRegistrationStats)
}

// AddImsRegistrationTermination counts an IMS deregistration.
func (s *Store) AddImsRegistrationTermination(t *atoms.ImsRegistrationTermination) {
	s.mu.Lock()
	var held *atoms.ImsRegistrationTermination
	s.snap.ImsRegistrationTerminations, held = upsert(s, atoms.KindImsRegistrationTermination, s.snap.ImsRegistrationTerminations, t,
		(*atoms.ImsRegistrationTermination).Key,
		func(dst, src *atoms.ImsRegistrationTermination) { dst.Count += src.Count },
		imsTerminationFull)
	held.LastUsedMillis = s.nowMillis()
	s.finish(atoms.KindImsRegistrationTermination)
}

// AddNetworkRequests counts network requests per carrier and capability.
func (s *Store) AddNetworkRequests(n *atoms.NetworkRequests) {
	s.mu.Lock()
	s.snap.NetworkRequests, _ = upsert(s, atoms.KindNetworkRequests, s.snap.NetworkRequests, n,
		(*atoms.NetworkRequests).Key,
		func(dst, src *atoms.NetworkRequests) { dst.RequestCount += src.RequestCount },
		randomFull[atoms.NetworkRequests]())
	s.finish(atoms.KindNetworkRequests)
}

// AddCarrierIDMismatch records an unresolved SIM identity. It reports false
// if the same identity is already stored. When full, the oldest entry is
// dropped and the new one appended.
func (s *Store) AddCarrierIDMismatch(m *atoms.CarrierIDMismatch) bool {
	s.mu.Lock()
	key := m.Key()
	for _, stored := range s.snap.CarrierIDMismatches {
		if stored.Key() == key {
			s.metrics.added(atoms.KindCarrierIDMismatch, "ignored")
			s.mu.Unlock()
			return false
		}
	}
	items := s.snap.CarrierIDMismatches
	maxLength := s.profile.MaxLength(atoms.KindCarrierIDMismatch)
	if len(items) >= maxLength {
		items = append(slices.Clone(items[len(items)-maxLength+1:]), m)
		s.metrics.added(atoms.KindCarrierIDMismatch, bounded.Evicted.String())
	} else {
		items = append(items, m)
		s.metrics.added(atoms.KindCarrierIDMismatch, bounded.Inserted.String())
	}
	s.snap.CarrierIDMismatches = items
	s.finish(atoms.KindCarrierIDMismatch)
	return true
}

// AddOutgoingShortCodeSms counts one message to a premium short code.
func (s *Store) AddOutgoingShortCodeSms(sms *atoms.OutgoingShortCodeSms) {
	sms.ShortCodeSmsCount = 1
	s.mu.Lock()
	s.snap.OutgoingShortCodeSms, _ = upsert(s, atoms.KindOutgoingShortCodeSms, s.snap.OutgoingShortCodeSms, sms,
		(*atoms.OutgoingShortCodeSms).Key,
		func(dst, _ *atoms.OutgoingShortCodeSms) { dst.ShortCodeSmsCount++ },
		randomFull[atoms.OutgoingShortCodeSms]())
	s.finish(atoms.KindOutgoingShortCodeSms)
}

// AddSatelliteController folds counters into the singleton controller record.
func (s *Store) AddSatelliteController(stats *atoms.SatelliteController) {
	s.mu.Lock()
	if len(s.snap.SatelliteControllers) == 0 {
		s.snap.SatelliteControllers = []*atoms.SatelliteController{{}}
		s.metrics.added(atoms.KindSatelliteController, bounded.Inserted.String())
	} else {
		s.metrics.added(atoms.KindSatelliteController, "merged")
	}
	dst, src := s.snap.SatelliteControllers[0].Counters(), stats.Counters()
	for i := range dst {
		*dst[i] += *src[i]
	}
	s.finish(atoms.KindSatelliteController)
}

// AddSatelliteSession counts one satellite session initialization.
func (s *Store) AddSatelliteSession(sess *atoms.SatelliteSession) {
	sess.Count = 1
	s.mu.Lock()
	s.snap.SatelliteSessions, _ = upsert(s, atoms.KindSatelliteSession, s.snap.SatelliteSessions, sess,
		(*atoms.SatelliteSession).Key,
		func(dst, _ *atoms.SatelliteSession) { dst.Count++ },
		randomFull[atoms.SatelliteSession]())
	s.finish(atoms.KindSatelliteSession)
}

// AddGbaEvent counts one GBA authentication.
func (s *Store) AddGbaEvent(e *atoms.GbaEvent) {
	e.Count = 1
	s.mu.Lock()
	s.snap.GbaEvents, _ = upsert(s, atoms.KindGbaEvent, s.snap.GbaEvents, e,
		(*atoms.GbaEvent).Key,
		func(dst, _ *atoms.GbaEvent) { dst.Count++ },
		randomFull[atoms.GbaEvent]())
	s.finish(atoms.KindGbaEvent)
}

// AddUnmeteredNetworks ORs bitmask into the phone's unmetered RAT mask. A
// different carrier id resets the mask first. Nothing is written when the
// stored state does not change.
func (s *Store) AddUnmeteredNetworks(phoneID, carrierID int32, bitmask int64) {
	s.mu.Lock()
	i := slices.IndexFunc(s.snap.UnmeteredNetworks, func(u *atoms.UnmeteredNetworks) bool {
		return u.PhoneID == phoneID
	})
	if i < 0 {
		if len(s.snap.UnmeteredNetworks) >= s.profile.MaxLength(atoms.KindUnmeteredNetworks) {
			s.logger.Warn("too many phones for unmetered networks", "phone_id", phoneID)
			s.metrics.added(atoms.KindUnmeteredNetworks, bounded.Dropped.String())
			s.mu.Unlock()
			return
		}
		s.snap.UnmeteredNetworks = append(s.snap.UnmeteredNetworks, &atoms.UnmeteredNetworks{
			PhoneID:   phoneID,
			CarrierID: carrierID,
			Bitmask:   bitmask,
		})
		s.metrics.added(atoms.KindUnmeteredNetworks, bounded.Inserted.String())
		s.finish(atoms.KindUnmeteredNetworks)
		return
	}

	u := s.snap.UnmeteredNetworks[i]
	changed := false
	if u.CarrierID != carrierID {
		u.CarrierID = carrierID
		u.Bitmask = 0
		changed = true
	}
	if u.Bitmask|bitmask != u.Bitmask {
		u.Bitmask |= bitmask
		changed = true
	}
	if !changed {
		s.metrics.added(atoms.KindUnmeteredNetworks, "ignored")
		s.mu.Unlock()
		return
	}
	s.metrics.added(atoms.KindUnmeteredNetworks, "merged")
	s.finish(atoms.KindUnmeteredNetworks)
}

// SetCarrierIDTableVersion stores version if it is newer than the stored
// one and reports whether it was.
func (s *Store) SetCarrierIDTableVersion(version int32) bool {
	s.mu.Lock()
	if s.snap.CarrierIDTableVersion >= version {
		s.mu.Unlock()
		return false
	}
	s.snap.CarrierIDTableVersion = version
	s.mu.Unlock()
	s.updated()
	return true
}

// CarrierIDTableVersion returns the stored carrier id table version, or
// atoms.UnknownCarrierIDListVersion.
func (s *Store) CarrierIDTableVersion() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.CarrierIDTableVersion
}

// RecordAutoDataSwitchToggle counts one toggle of the auto data switch.
func (s *Store) RecordAutoDataSwitchToggle() {
	s.mu.Lock()
	s.snap.AutoDataSwitchToggleCount++
	s.mu.Unlock()
	s.updated()
}
