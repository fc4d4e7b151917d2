package storage

import (
	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/bounded"
)

// Each stored kind resolves its full-collection behavior here. A kind not
// listed uses random eviction.
var (
	voiceCallFull = bounded.Evict(bounded.PreferUnprotected(func(c *atoms.VoiceCallSession) bool {
		return c.IsEmergency
	}))

	incomingSmsFull = bounded.MergeOrEvict(
		func(s *atoms.IncomingSms) uint64 { return s.Hash },
		func(s *atoms.IncomingSms) int64 { return int64(s.Count) },
		atoms.MergeIncomingSms,
	)
	outgoingSmsFull = bounded.MergeOrEvict(
		func(s *atoms.OutgoingSms) uint64 { return s.Hash },
		func(s *atoms.OutgoingSms) int64 { return int64(s.Count) },
		atoms.MergeOutgoingSms,
	)

	serviceStateFull = bounded.Evict(bounded.LeastRecentlyUsed(func(s *atoms.CellularServiceState) int64 {
		return s.LastUsedMillis
	}))
	dataSwitchFull = bounded.Evict(bounded.LeastRecentlyUsed(func(s *atoms.CellularDataServiceSwitch) int64 {
		return s.LastUsedMillis
	}))
	imsRegistrationFull = bounded.Evict(bounded.LeastRecentlyUsed(func(s *atoms.ImsRegistrationStats) int64 {
		return s.LastUsedMillis
	}))
	imsTerminationFull = bounded.Evict(bounded.LeastRecentlyUsed(func(t *atoms.ImsRegistrationTermination) int64 {
		return t.LastUsedMillis
	}))
)

func randomFull[T any]() bounded.FullPolicy[T] {
	return bounded.Evict(bounded.Random[T]())
}
