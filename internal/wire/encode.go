package wire

import (
	"math/rand/v2"
	"sync"

	"github.com/roach88/atomstore/internal/atoms"
)

// Encoder converts records into events. It is safe for concurrent use.
type Encoder struct {
	Rounder Rounder

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEncoder returns an encoder that rounds durations to bucket. rng
// supplies the per-event tag that keeps identical voice call sessions
// from collapsing into one on the receiving side.
func NewEncoder(bucket Rounder, rng *rand.Rand) *Encoder {
	return &Encoder{Rounder: bucket, rng: rng}
}

func (e *Encoder) tag() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Int32()
}

func (e *Encoder) VoiceCallSession(s *atoms.VoiceCallSession) Event {
	return NewEvent(atoms.KindVoiceCallSession,
		F("bearer_at_start", Int32(s.BearerAtStart)),
		F("bearer_at_end", Int32(s.BearerAtEnd)),
		F("direction", Int32(s.Direction)),
		F("setup_failed", Bool(s.SetupFailed)),
		F("disconnect_reason_code", Int32(s.DisconnectReasonCode)),
		F("disconnect_extra_code", Int32(s.DisconnectExtraCode)),
		F("disconnect_extra_message", String(s.DisconnectExtraMessage)),
		F("rat_at_start", Int32(s.RatAtStart)),
		F("rat_at_end", Int32(s.RatAtEnd)),
		F("rat_switch_count", Int64(s.RatSwitchCount)),
		F("codec_bitmask", Int64(s.CodecBitmask)),
		F("concurrent_call_count_at_start", Int32(s.ConcurrentCallCountAtStart)),
		F("concurrent_call_count_at_end", Int32(s.ConcurrentCallCountAtEnd)),
		F("sim_slot_index", Int32(s.SimSlotIndex)),
		F("is_multi_sim", Bool(s.IsMultiSim)),
		F("is_esim", Bool(s.IsEsim)),
		F("carrier_id", Int32(s.CarrierID)),
		F("srvcc_completed", Bool(s.SrvccCompleted)),
		F("srvcc_failure_count", Int64(s.SrvccFailureCount)),
		F("srvcc_cancellation_count", Int64(s.SrvccCancellationCount)),
		F("rtt_enabled", Bool(s.RttEnabled)),
		F("is_emergency", Bool(s.IsEmergency)),
		F("is_roaming", Bool(s.IsRoaming)),
		F("dimension", Int32(e.tag())),
		F("signal_strength_at_end", Int32(s.SignalStrengthAtEnd)),
		F("band_at_end", Int32(s.BandAtEnd)),
		F("setup_duration_millis", Int32(s.SetupDurationMillis)),
		F("call_duration", Int32(s.CallDurationBucket)),
		F("last_known_rat", Int32(s.LastKnownRat)),
	)
}

func (e *Encoder) VoiceCallRatUsage(u *atoms.VoiceCallRatUsage) Event {
	return NewEvent(atoms.KindVoiceCallRatUsage,
		F("carrier_id", Int32(u.CarrierID)),
		F("rat", Int32(u.Rat)),
		F("total_duration_seconds", Int32(e.Rounder.Seconds(u.TotalDurationMillis))),
		F("call_count", Int64(u.CallCount)),
	)
}

func (e *Encoder) IncomingSms(s *atoms.IncomingSms) Event {
	return NewEvent(atoms.KindIncomingSms,
		F("sms_format", Int32(s.SmsFormat)),
		F("sms_tech", Int32(s.SmsTech)),
		F("rat", Int32(s.Rat)),
		F("sms_type", Int32(s.SmsType)),
		F("total_parts", Int32(s.TotalParts)),
		F("received_parts", Int32(s.ReceivedParts)),
		F("blocked", Bool(s.Blocked)),
		F("error", Int32(s.Error)),
		F("is_roaming", Bool(s.IsRoaming)),
		F("sim_slot_index", Int32(s.SimSlotIndex)),
		F("is_multi_sim", Bool(s.IsMultiSim)),
		F("is_esim", Bool(s.IsEsim)),
		F("carrier_id", Int32(s.CarrierID)),
		F("message_id", Int64(s.MessageID)),
		F("count", Int32(s.Count)),
		F("is_managed_profile", Bool(s.IsManagedProfile)),
	)
}

func (e *Encoder) OutgoingSms(s *atoms.OutgoingSms) Event {
	return NewEvent(atoms.KindOutgoingSms,
		F("sms_format", Int32(s.SmsFormat)),
		F("sms_tech", Int32(s.SmsTech)),
		F("rat", Int32(s.Rat)),
		F("send_result", Int32(s.SendResult)),
		F("error_code", Int32(s.ErrorCode)),
		F("is_roaming", Bool(s.IsRoaming)),
		F("is_from_default_app", Bool(s.IsFromDefaultApp)),
		F("sim_slot_index", Int32(s.SimSlotIndex)),
		F("is_multi_sim", Bool(s.IsMultiSim)),
		F("is_esim", Bool(s.IsEsim)),
		F("carrier_id", Int32(s.CarrierID)),
		F("message_id", Int64(s.MessageID)),
		F("retry_id", Int32(s.RetryID)),
		F("interval_millis", Int64(s.IntervalMillis)),
		F("count", Int32(s.Count)),
		F("send_error_code", Int32(s.SendErrorCode)),
		F("network_error_code", Int32(s.NetworkErrorCode)),
		F("is_managed_profile", Bool(s.IsManagedProfile)),
	)
}

func (e *Encoder) DataCallSession(d *atoms.DataCallSession) Event {
	return NewEvent(atoms.KindDataCallSession,
		F("dimension", Int32(d.Dimension)),
		F("is_multi_sim", Bool(d.IsMultiSim)),
		F("is_esim", Bool(d.IsEsim)),
		F("apn_type_bitmask", Int32(d.ApnTypeBitmask)),
		F("carrier_id", Int32(d.CarrierID)),
		F("is_roaming", Bool(d.IsRoaming)),
		F("rat_at_end", Int32(d.RatAtEnd)),
		F("oos_at_end", Bool(d.OosAtEnd)),
		F("rat_switch_count", Int64(d.RatSwitchCount)),
		F("is_opportunistic", Bool(d.IsOpportunistic)),
		F("ip_type", Int32(d.IPType)),
		F("setup_failed", Bool(d.SetupFailed)),
		F("failure_cause", Int32(d.FailureCause)),
		F("suggested_retry_millis", Int32(d.SuggestedRetryMillis)),
		F("deactivate_reason", Int32(d.DeactivateReason)),
		F("duration_minutes", Int32(e.Rounder.Minutes(d.DurationMinutes*60_000))),
		F("ongoing", Bool(d.Ongoing)),
		F("band_at_end", Int32(d.BandAtEnd)),
		F("handover_failure_causes", Int32Array(d.HandoverFailureCauses)),
		F("handover_failure_rat", Int32Array(d.HandoverFailureRat)),
		F("is_non_dds", Bool(d.IsNonDds)),
	)
}

func (e *Encoder) CellularServiceState(s *atoms.CellularServiceState) Event {
	return NewEvent(atoms.KindCellularServiceState,
		F("voice_rat", Int32(s.VoiceRat)),
		F("data_rat", Int32(s.DataRat)),
		F("voice_roaming_type", Int32(s.VoiceRoamingType)),
		F("data_roaming_type", Int32(s.DataRoamingType)),
		F("is_endc", Bool(s.IsEndc)),
		F("sim_slot_index", Int32(s.SimSlotIndex)),
		F("is_multi_sim", Bool(s.IsMultiSim)),
		F("carrier_id", Int32(s.CarrierID)),
		F("total_time_seconds", Int32(e.Rounder.Seconds(s.TotalTimeMillis))),
		F("is_emergency_only", Bool(s.IsEmergencyOnly)),
		F("is_internet_pdn_up", Bool(s.IsInternetPdnUp)),
		F("fold_state", Int32(s.FoldState)),
	)
}

func (e *Encoder) CellularDataServiceSwitch(s *atoms.CellularDataServiceSwitch) Event {
	return NewEvent(atoms.KindCellularDataServiceSwitch,
		F("rat_from", Int32(s.RatFrom)),
		F("rat_to", Int32(s.RatTo)),
		F("sim_slot_index", Int32(s.SimSlotIndex)),
		F("is_multi_sim", Bool(s.IsMultiSim)),
		F("carrier_id", Int32(s.CarrierID)),
		F("switch_count", Int32(s.SwitchCount)),
	)
}

func (e *Encoder) ImsRegistrationStats(s *atoms.ImsRegistrationStats) Event {
	return NewEvent(atoms.KindImsRegistrationStats,
		F("carrier_id", Int32(s.CarrierID)),
		F("sim_slot_index", Int32(s.SimSlotIndex)),
		F("rat", Int32(s.Rat)),
		F("registered_seconds", Int32(e.Rounder.Seconds(s.RegisteredMillis))),
		F("voice_capable_seconds", Int32(e.Rounder.Seconds(s.VoiceCapableMillis))),
		F("voice_available_seconds", Int32(e.Rounder.Seconds(s.VoiceAvailableMillis))),
		F("sms_capable_seconds", Int32(e.Rounder.Seconds(s.SmsCapableMillis))),
		F("sms_available_seconds", Int32(e.Rounder.Seconds(s.SmsAvailableMillis))),
		F("video_capable_seconds", Int32(e.Rounder.Seconds(s.VideoCapableMillis))),
		F("video_available_seconds", Int32(e.Rounder.Seconds(s.VideoAvailableMillis))),
		F("ut_capable_seconds", Int32(e.Rounder.Seconds(s.UtCapableMillis))),
		F("ut_available_seconds", Int32(e.Rounder.Seconds(s.UtAvailableMillis))),
	)
}

func (e *Encoder) ImsRegistrationTermination(t *atoms.ImsRegistrationTermination) Event {
	return NewEvent(atoms.KindImsRegistrationTermination,
		F("carrier_id", Int32(t.CarrierID)),
		F("is_multi_sim", Bool(t.IsMultiSim)),
		F("rat_at_end", Int32(t.RatAtEnd)),
		F("setup_failed", Bool(t.SetupFailed)),
		F("reason_code", Int32(t.ReasonCode)),
		F("extra_code", Int32(t.ExtraCode)),
		F("extra_message", String(t.ExtraMessage)),
		F("count", Int32(t.Count)),
	)
}

func (e *Encoder) NetworkRequests(n *atoms.NetworkRequests) Event {
	return NewEvent(atoms.KindNetworkRequests,
		F("carrier_id", Int32(n.CarrierID)),
		F("capability", Int32(n.Capability)),
		F("request_count", Int32(n.RequestCount)),
	)
}

func (e *Encoder) OutgoingShortCodeSms(s *atoms.OutgoingShortCodeSms) Event {
	return NewEvent(atoms.KindOutgoingShortCodeSms,
		F("category", Int32(s.Category)),
		F("xml_version", Int32(s.XMLVersion)),
		F("short_code_sms_count", Int32(s.ShortCodeSmsCount)),
	)
}

func (e *Encoder) SatelliteController(c *atoms.SatelliteController) Event {
	names := [...]string{
		"count_of_satellite_service_enablements_success",
		"count_of_satellite_service_enablements_fail",
		"count_of_outgoing_datagram_success",
		"count_of_outgoing_datagram_fail",
		"count_of_incoming_datagram_success",
		"count_of_incoming_datagram_fail",
		"count_of_datagram_type_sos_sms_success",
		"count_of_datagram_type_sos_sms_fail",
		"count_of_datagram_type_location_sharing_success",
		"count_of_datagram_type_location_sharing_fail",
		"count_of_provision_success",
		"count_of_provision_fail",
		"count_of_deprovision_success",
		"count_of_deprovision_fail",
		"total_service_uptime_sec",
		"total_battery_consumption_percent",
		"total_battery_charged_time_sec",
	}
	counters := c.Counters()
	fields := make([]Field, len(counters))
	for i, p := range counters {
		fields[i] = F(names[i], Int32(*p))
	}
	return NewEvent(atoms.KindSatelliteController, fields...)
}

func (e *Encoder) SatelliteSession(s *atoms.SatelliteSession) Event {
	return NewEvent(atoms.KindSatelliteSession,
		F("satellite_service_initialization_result", Int32(s.SatelliteServiceInitializationResult)),
		F("satellite_technology", Int32(s.SatelliteTechnology)),
		F("count", Int32(s.Count)),
	)
}

func (e *Encoder) GbaEvent(g *atoms.GbaEvent) Event {
	return NewEvent(atoms.KindGbaEvent,
		F("carrier_id", Int32(g.CarrierID)),
		F("slot_id", Int32(g.SlotID)),
		F("successful", Bool(g.Successful)),
		F("failed_reason", Int32(g.FailedReason)),
		F("count", Int32(g.Count)),
	)
}

// CarrierIDTableVersion encodes the live carrier id table version.
func (e *Encoder) CarrierIDTableVersion(version int32) Event {
	return NewEvent(atoms.KindCarrierIDTableVersion, F("table_version", Int32(version)))
}

// SupportedRadioAccessFamily encodes the union of the phones' RAF bitmasks.
func (e *Encoder) SupportedRadioAccessFamily(raf int64) Event {
	return NewEvent(atoms.KindSupportedRadioAccessFamily, F("supported_network_type_bitmask", Int64(raf)))
}
