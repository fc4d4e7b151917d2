package atoms

import "encoding/json"

// Snapshot is the persisted state of the store.
type Snapshot struct {
	BuildID string `json:"build_id"`

	VoiceCallSessions           []*VoiceCallSession           `json:"voice_call_sessions"`
	VoiceCallRatUsages          []*VoiceCallRatUsage          `json:"voice_call_rat_usages"`
	IncomingSms                 []*IncomingSms                `json:"incoming_sms"`
	OutgoingSms                 []*OutgoingSms                `json:"outgoing_sms"`
	DataCallSessions            []*DataCallSession            `json:"data_call_sessions"`
	CellularServiceStates       []*CellularServiceState       `json:"cellular_service_states"`
	CellularDataServiceSwitches []*CellularDataServiceSwitch  `json:"cellular_data_service_switches"`
	ImsRegistrationStats        []*ImsRegistrationStats       `json:"ims_registration_stats"`
	ImsRegistrationTerminations []*ImsRegistrationTermination `json:"ims_registration_terminations"`
	NetworkRequests             []*NetworkRequests            `json:"network_requests"`
	CarrierIDMismatches         []*CarrierIDMismatch          `json:"carrier_id_mismatches"`
	OutgoingShortCodeSms        []*OutgoingShortCodeSms       `json:"outgoing_short_code_sms"`
	SatelliteControllers        []*SatelliteController        `json:"satellite_controllers"`
	SatelliteSessions           []*SatelliteSession           `json:"satellite_sessions"`
	GbaEvents                   []*GbaEvent                   `json:"gba_events"`
	UnmeteredNetworks           []*UnmeteredNetworks          `json:"unmetered_networks"`

	CarrierIDTableVersion     int32 `json:"carrier_id_table_version"`
	AutoDataSwitchToggleCount int32 `json:"auto_data_switch_toggle_count"`

	// PullTimestamps maps a drained kind's name to the wall time of its last
	// successful drain, in milliseconds since the epoch.
	PullTimestamps map[string]int64 `json:"pull_timestamps_millis"`
}

// NewSnapshot returns an empty snapshot whose pull timestamps are all set to
// nowMillis, so nothing can be pulled before data had time to accumulate.
func NewSnapshot(buildID string, nowMillis int64) *Snapshot {
	s := &Snapshot{
		BuildID:               buildID,
		CarrierIDTableVersion: UnknownCarrierIDListVersion,
		PullTimestamps:        make(map[string]int64),
	}
	for _, k := range DrainedKinds() {
		s.PullTimestamps[k.String()] = nowMillis
	}
	s.FillEmpty()
	return s
}

// FillEmpty replaces nil collections with empty ones.
func (s *Snapshot) FillEmpty() {
	if s.VoiceCallSessions == nil {
		s.VoiceCallSessions = []*VoiceCallSession{}
	}
	if s.VoiceCallRatUsages == nil {
		s.VoiceCallRatUsages = []*VoiceCallRatUsage{}
	}
	if s.IncomingSms == nil {
		s.IncomingSms = []*IncomingSms{}
	}
	if s.OutgoingSms == nil {
		s.OutgoingSms = []*OutgoingSms{}
	}
	if s.DataCallSessions == nil {
		s.DataCallSessions = []*DataCallSession{}
	}
	if s.CellularServiceStates == nil {
		s.CellularServiceStates = []*CellularServiceState{}
	}
	if s.CellularDataServiceSwitches == nil {
		s.CellularDataServiceSwitches = []*CellularDataServiceSwitch{}
	}
	if s.ImsRegistrationStats == nil {
		s.ImsRegistrationStats = []*ImsRegistrationStats{}
	}
	if s.ImsRegistrationTerminations == nil {
		s.ImsRegistrationTerminations = []*ImsRegistrationTermination{}
	}
	if s.NetworkRequests == nil {
		s.NetworkRequests = []*NetworkRequests{}
	}
	if s.CarrierIDMismatches == nil {
		s.CarrierIDMismatches = []*CarrierIDMismatch{}
	}
	if s.OutgoingShortCodeSms == nil {
		s.OutgoingShortCodeSms = []*OutgoingShortCodeSms{}
	}
	if s.SatelliteControllers == nil {
		s.SatelliteControllers = []*SatelliteController{}
	}
	if s.SatelliteSessions == nil {
		s.SatelliteSessions = []*SatelliteSession{}
	}
	if s.GbaEvents == nil {
		s.GbaEvents = []*GbaEvent{}
	}
	if s.UnmeteredNetworks == nil {
		s.UnmeteredNetworks = []*UnmeteredNetworks{}
	}
	if s.PullTimestamps == nil {
		s.PullTimestamps = make(map[string]int64)
	}
}

// Len returns the number of records stored for k.
func (s *Snapshot) Len(k Kind) int {
	switch k {
	case KindVoiceCallSession:
		return len(s.VoiceCallSessions)
	case KindVoiceCallRatUsage:
		return len(s.VoiceCallRatUsages)
	case KindIncomingSms:
		return len(s.IncomingSms)
	case KindOutgoingSms:
		return len(s.OutgoingSms)
	case KindDataCallSession:
		return len(s.DataCallSessions)
	case KindCellularServiceState:
		return len(s.CellularServiceStates)
	case KindCellularDataServiceSwitch:
		return len(s.CellularDataServiceSwitches)
	case KindImsRegistrationStats:
		return len(s.ImsRegistrationStats)
	case KindImsRegistrationTermination:
		return len(s.ImsRegistrationTerminations)
	case KindNetworkRequests:
		return len(s.NetworkRequests)
	case KindCarrierIDMismatch:
		return len(s.CarrierIDMismatches)
	case KindOutgoingShortCodeSms:
		return len(s.OutgoingShortCodeSms)
	case KindSatelliteController:
		return len(s.SatelliteControllers)
	case KindSatelliteSession:
		return len(s.SatelliteSessions)
	case KindGbaEvent:
		return len(s.GbaEvents)
	case KindUnmeteredNetworks:
		return len(s.UnmeteredNetworks)
	default:
		return 0
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() (*Snapshot, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var c Snapshot
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.FillEmpty()
	return &c, nil
}
