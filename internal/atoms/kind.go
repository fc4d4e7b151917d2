package atoms

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned by ParseKind for names that match no kind.
var ErrUnknownKind = errors.New("unknown atom kind")

// Kind identifies an atom schema.
type Kind int

const (
	KindUnknown Kind = iota
	KindVoiceCallSession
	KindVoiceCallRatUsage
	KindIncomingSms
	KindOutgoingSms
	KindDataCallSession
	KindCellularServiceState
	KindCellularDataServiceSwitch
	KindImsRegistrationStats
	KindImsRegistrationTermination
	KindNetworkRequests
	KindCarrierIDMismatch
	KindOutgoingShortCodeSms
	KindSatelliteController
	KindSatelliteSession
	KindGbaEvent
	KindUnmeteredNetworks
	KindCarrierIDTableVersion
	KindSupportedRadioAccessFamily
)

// kindInfo describes how a kind is stored and exported.
//   - stored: the kind has a collection in the snapshot.
//   - drained: the kind is exported through drain-for-pull and carries a
//     pull timestamp in the snapshot.
//   - live: the kind is read from the running subsystems at pull time and
//     never stored.
type kindInfo struct {
	name    string
	atomID  int32
	stored  bool
	drained bool
	live    bool
}

var kinds = map[Kind]kindInfo{
	KindVoiceCallSession:           {name: "voice_call_session", atomID: 10001, stored: true, drained: true},
	KindVoiceCallRatUsage:          {name: "voice_call_rat_usage", atomID: 10002, stored: true, drained: true},
	KindIncomingSms:                {name: "incoming_sms", atomID: 10003, stored: true, drained: true},
	KindOutgoingSms:                {name: "outgoing_sms", atomID: 10004, stored: true, drained: true},
	KindDataCallSession:            {name: "data_call_session", atomID: 10005, stored: true, drained: true},
	KindCellularServiceState:       {name: "cellular_service_state", atomID: 10006, stored: true, drained: true},
	KindCellularDataServiceSwitch:  {name: "cellular_data_service_switch", atomID: 10007, stored: true, drained: true},
	KindImsRegistrationStats:       {name: "ims_registration_stats", atomID: 10008, stored: true, drained: true},
	KindImsRegistrationTermination: {name: "ims_registration_termination", atomID: 10009, stored: true, drained: true},
	KindNetworkRequests:            {name: "network_requests", atomID: 10010, stored: true, drained: true},
	KindCarrierIDMismatch:          {name: "carrier_id_mismatch", atomID: 10011, stored: true},
	KindOutgoingShortCodeSms:       {name: "outgoing_short_code_sms", atomID: 10012, stored: true, drained: true},
	KindSatelliteController:        {name: "satellite_controller", atomID: 10013, stored: true, drained: true},
	KindSatelliteSession:           {name: "satellite_session", atomID: 10014, stored: true, drained: true},
	KindGbaEvent:                   {name: "gba_event", atomID: 10015, stored: true, drained: true},
	KindUnmeteredNetworks:          {name: "unmetered_networks", atomID: 10016, stored: true},
	KindCarrierIDTableVersion:      {name: "carrier_id_table_version", atomID: 10017, live: true},
	KindSupportedRadioAccessFamily: {name: "supported_radio_access_family", atomID: 10018, live: true},
}

// allKinds lists every known kind in declaration order.
var allKinds = func() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := KindVoiceCallSession; k <= KindSupportedRadioAccessFamily; k++ {
		out = append(out, k)
	}
	return out
}()

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// DrainedKinds returns the kinds exported through drain-for-pull.
func DrainedKinds() []Kind {
	var out []Kind
	for _, k := range allKinds {
		if kinds[k].drained {
			out = append(out, k)
		}
	}
	return out
}

// String returns the snake_case name used in config files, CLI arguments
// and the snapshot's pull timestamp map.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// AtomID returns the numeric id carried by wire events of this kind.
func (k Kind) AtomID() int32 {
	return kinds[k].atomID
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Stored reports whether the kind has a collection in the store.
func (k Kind) Stored() bool { return kinds[k].stored }

// Drained reports whether the kind is exported via drain-for-pull.
func (k Kind) Drained() bool { return kinds[k].drained }

// Live reports whether the kind is computed at pull time.
func (k Kind) Live() bool { return kinds[k].live }

// ParseKind resolves a kind from its name.
func ParseKind(name string) (Kind, error) {
	for _, k := range allKinds {
		if kinds[k].name == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// KindForAtomID resolves a kind from its wire atom id.
func KindForAtomID(id int32) (Kind, bool) {
	for _, k := range allKinds {
		if kinds[k].atomID == id {
			return k, true
		}
	}
	return KindUnknown, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
