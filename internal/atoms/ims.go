package atoms

// ImsRegistrationStats accumulates IMS registration and capability time per
// carrier, slot and RAT.
type ImsRegistrationStats struct {
	CarrierID            int32 `json:"carrier_id" yaml:"carrier_id"`
	SimSlotIndex         int32 `json:"sim_slot_index" yaml:"sim_slot_index"`
	Rat                  int32 `json:"rat" yaml:"rat"`
	RegisteredMillis     int64 `json:"registered_millis" yaml:"registered_millis"`
	VoiceCapableMillis   int64 `json:"voice_capable_millis" yaml:"voice_capable_millis"`
	VoiceAvailableMillis int64 `json:"voice_available_millis" yaml:"voice_available_millis"`
	SmsCapableMillis     int64 `json:"sms_capable_millis" yaml:"sms_capable_millis"`
	SmsAvailableMillis   int64 `json:"sms_available_millis" yaml:"sms_available_millis"`
	VideoCapableMillis   int64 `json:"video_capable_millis" yaml:"video_capable_millis"`
	VideoAvailableMillis int64 `json:"video_available_millis" yaml:"video_available_millis"`
	UtCapableMillis      int64 `json:"ut_capable_millis" yaml:"ut_capable_millis"`
	UtAvailableMillis    int64 `json:"ut_available_millis" yaml:"ut_available_millis"`
	LastUsedMillis       int64 `json:"last_used_millis" yaml:"-"`
}

// ImsRegistrationKey is the dimension tuple of an ImsRegistrationStats.
type ImsRegistrationKey struct {
	CarrierID    int32
	SimSlotIndex int32
	Rat          int32
}

func (s *ImsRegistrationStats) Key() ImsRegistrationKey {
	return ImsRegistrationKey{CarrierID: s.CarrierID, SimSlotIndex: s.SimSlotIndex, Rat: s.Rat}
}

// Durations returns pointers to every duration measure, in wire order.
func (s *ImsRegistrationStats) Durations() []*int64 {
	return []*int64{
		&s.RegisteredMillis,
		&s.VoiceCapableMillis,
		&s.VoiceAvailableMillis,
		&s.SmsCapableMillis,
		&s.SmsAvailableMillis,
		&s.VideoCapableMillis,
		&s.VideoAvailableMillis,
		&s.UtCapableMillis,
		&s.UtAvailableMillis,
	}
}

// ImsRegistrationTermination counts IMS deregistrations by cause.
type ImsRegistrationTermination struct {
	CarrierID      int32  `json:"carrier_id" yaml:"carrier_id"`
	IsMultiSim     bool   `json:"is_multi_sim" yaml:"is_multi_sim"`
	RatAtEnd       int32  `json:"rat_at_end" yaml:"rat_at_end"`
	SetupFailed    bool   `json:"setup_failed" yaml:"setup_failed"`
	ReasonCode     int32  `json:"reason_code" yaml:"reason_code"`
	ExtraCode      int32  `json:"extra_code" yaml:"extra_code"`
	ExtraMessage   string `json:"extra_message" yaml:"extra_message"`
	Count          int32  `json:"count" yaml:"count"`
	LastUsedMillis int64  `json:"last_used_millis" yaml:"-"`
}

// ImsTerminationKey is the dimension tuple of an ImsRegistrationTermination.
type ImsTerminationKey struct {
	CarrierID    int32
	IsMultiSim   bool
	RatAtEnd     int32
	SetupFailed  bool
	ReasonCode   int32
	ExtraCode    int32
	ExtraMessage string
}

func (t *ImsRegistrationTermination) Key() ImsTerminationKey {
	return ImsTerminationKey{
		CarrierID:    t.CarrierID,
		IsMultiSim:   t.IsMultiSim,
		RatAtEnd:     t.RatAtEnd,
		SetupFailed:  t.SetupFailed,
		ReasonCode:   t.ReasonCode,
		ExtraCode:    t.ExtraCode,
		ExtraMessage: NormalizeText(t.ExtraMessage),
	}
}

// GbaEvent counts GBA authentication outcomes.
type GbaEvent struct {
	CarrierID    int32 `json:"carrier_id" yaml:"carrier_id"`
	SlotID       int32 `json:"slot_id" yaml:"slot_id"`
	Successful   bool  `json:"successful" yaml:"successful"`
	FailedReason int32 `json:"failed_reason" yaml:"failed_reason"`
	Count        int32 `json:"count" yaml:"count"`
}

// GbaEventKey is the dimension tuple of a GbaEvent.
type GbaEventKey struct {
	CarrierID    int32
	SlotID       int32
	Successful   bool
	FailedReason int32
}

func (g *GbaEvent) Key() GbaEventKey {
	return GbaEventKey{CarrierID: g.CarrierID, SlotID: g.SlotID, Successful: g.Successful, FailedReason: g.FailedReason}
}
