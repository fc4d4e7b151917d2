package atoms

// VoiceCallSession describes one completed voice call. Sessions are never
// merged; the store keeps a random sample when it runs out of room.
type VoiceCallSession struct {
	BearerAtStart              int32  `json:"bearer_at_start" yaml:"bearer_at_start"`
	BearerAtEnd                int32  `json:"bearer_at_end" yaml:"bearer_at_end"`
	Direction                  int32  `json:"direction" yaml:"direction"`
	SetupDurationMillis        int32  `json:"setup_duration_millis" yaml:"setup_duration_millis"`
	SetupFailed                bool   `json:"setup_failed" yaml:"setup_failed"`
	DisconnectReasonCode       int32  `json:"disconnect_reason_code" yaml:"disconnect_reason_code"`
	DisconnectExtraCode        int32  `json:"disconnect_extra_code" yaml:"disconnect_extra_code"`
	DisconnectExtraMessage     string `json:"disconnect_extra_message" yaml:"disconnect_extra_message"`
	RatAtStart                 int32  `json:"rat_at_start" yaml:"rat_at_start"`
	RatAtEnd                   int32  `json:"rat_at_end" yaml:"rat_at_end"`
	RatSwitchCount             int64  `json:"rat_switch_count" yaml:"rat_switch_count"`
	CodecBitmask               int64  `json:"codec_bitmask" yaml:"codec_bitmask"`
	ConcurrentCallCountAtStart int32  `json:"concurrent_call_count_at_start" yaml:"concurrent_call_count_at_start"`
	ConcurrentCallCountAtEnd   int32  `json:"concurrent_call_count_at_end" yaml:"concurrent_call_count_at_end"`
	SimSlotIndex               int32  `json:"sim_slot_index" yaml:"sim_slot_index"`
	IsMultiSim                 bool   `json:"is_multi_sim" yaml:"is_multi_sim"`
	IsEsim                     bool   `json:"is_esim" yaml:"is_esim"`
	CarrierID                  int32  `json:"carrier_id" yaml:"carrier_id"`
	SrvccCompleted             bool   `json:"srvcc_completed" yaml:"srvcc_completed"`
	SrvccFailureCount          int64  `json:"srvcc_failure_count" yaml:"srvcc_failure_count"`
	SrvccCancellationCount     int64  `json:"srvcc_cancellation_count" yaml:"srvcc_cancellation_count"`
	RttEnabled                 bool   `json:"rtt_enabled" yaml:"rtt_enabled"`
	IsEmergency                bool   `json:"is_emergency" yaml:"is_emergency"`
	IsRoaming                  bool   `json:"is_roaming" yaml:"is_roaming"`
	SignalStrengthAtEnd        int32  `json:"signal_strength_at_end" yaml:"signal_strength_at_end"`
	BandAtEnd                  int32  `json:"band_at_end" yaml:"band_at_end"`
	CallDurationBucket         int32  `json:"call_duration_bucket" yaml:"call_duration_bucket"`
	LastKnownRat               int32  `json:"last_known_rat" yaml:"last_known_rat"`
}

// VoiceCallRatUsage accumulates call time per carrier and radio technology.
type VoiceCallRatUsage struct {
	CarrierID           int32 `json:"carrier_id" yaml:"carrier_id"`
	Rat                 int32 `json:"rat" yaml:"rat"`
	TotalDurationMillis int64 `json:"total_duration_millis" yaml:"total_duration_millis"`
	CallCount           int64 `json:"call_count" yaml:"call_count"`
}

// VoiceCallRatUsageKey is the dimension tuple of a VoiceCallRatUsage.
type VoiceCallRatUsageKey struct {
	CarrierID int32
	Rat       int32
}

func (u *VoiceCallRatUsage) Key() VoiceCallRatUsageKey {
	return VoiceCallRatUsageKey{CarrierID: u.CarrierID, Rat: u.Rat}
}

// SortKey orders usages by carrier then RAT.
func (u *VoiceCallRatUsage) SortKey() int64 {
	return int64(u.CarrierID)<<32 | int64(uint32(u.Rat))
}
