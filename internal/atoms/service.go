package atoms

// CellularServiceState accumulates time spent in one service configuration.
type CellularServiceState struct {
	VoiceRat         int32 `json:"voice_rat" yaml:"voice_rat"`
	DataRat          int32 `json:"data_rat" yaml:"data_rat"`
	VoiceRoamingType int32 `json:"voice_roaming_type" yaml:"voice_roaming_type"`
	DataRoamingType  int32 `json:"data_roaming_type" yaml:"data_roaming_type"`
	IsEndc           bool  `json:"is_endc" yaml:"is_endc"`
	SimSlotIndex     int32 `json:"sim_slot_index" yaml:"sim_slot_index"`
	IsMultiSim       bool  `json:"is_multi_sim" yaml:"is_multi_sim"`
	CarrierID        int32 `json:"carrier_id" yaml:"carrier_id"`
	TotalTimeMillis  int64 `json:"total_time_millis" yaml:"total_time_millis"`
	IsEmergencyOnly  bool  `json:"is_emergency_only" yaml:"is_emergency_only"`
	IsInternetPdnUp  bool  `json:"is_internet_pdn_up" yaml:"is_internet_pdn_up"`
	FoldState        int32 `json:"fold_state" yaml:"fold_state"`
	LastUsedMillis   int64 `json:"last_used_millis" yaml:"-"`
}

// ServiceStateKey is the dimension tuple of a CellularServiceState.
type ServiceStateKey struct {
	VoiceRat         int32
	DataRat          int32
	VoiceRoamingType int32
	DataRoamingType  int32
	IsEndc           bool
	SimSlotIndex     int32
	IsMultiSim       bool
	CarrierID        int32
	IsEmergencyOnly  bool
	IsInternetPdnUp  bool
	FoldState        int32
}

func (s *CellularServiceState) Key() ServiceStateKey {
	return ServiceStateKey{
		VoiceRat:         s.VoiceRat,
		DataRat:          s.DataRat,
		VoiceRoamingType: s.VoiceRoamingType,
		DataRoamingType:  s.DataRoamingType,
		IsEndc:           s.IsEndc,
		SimSlotIndex:     s.SimSlotIndex,
		IsMultiSim:       s.IsMultiSim,
		CarrierID:        s.CarrierID,
		IsEmergencyOnly:  s.IsEmergencyOnly,
		IsInternetPdnUp:  s.IsInternetPdnUp,
		FoldState:        s.FoldState,
	}
}

// CellularDataServiceSwitch counts transitions between data RATs.
type CellularDataServiceSwitch struct {
	RatFrom        int32 `json:"rat_from" yaml:"rat_from"`
	RatTo          int32 `json:"rat_to" yaml:"rat_to"`
	SimSlotIndex   int32 `json:"sim_slot_index" yaml:"sim_slot_index"`
	IsMultiSim     bool  `json:"is_multi_sim" yaml:"is_multi_sim"`
	CarrierID      int32 `json:"carrier_id" yaml:"carrier_id"`
	SwitchCount    int32 `json:"switch_count" yaml:"switch_count"`
	LastUsedMillis int64 `json:"last_used_millis" yaml:"-"`
}

// DataServiceSwitchKey is the dimension tuple of a CellularDataServiceSwitch.
type DataServiceSwitchKey struct {
	RatFrom      int32
	RatTo        int32
	SimSlotIndex int32
	IsMultiSim   bool
	CarrierID    int32
}

func (s *CellularDataServiceSwitch) Key() DataServiceSwitchKey {
	return DataServiceSwitchKey{
		RatFrom:      s.RatFrom,
		RatTo:        s.RatTo,
		SimSlotIndex: s.SimSlotIndex,
		IsMultiSim:   s.IsMultiSim,
		CarrierID:    s.CarrierID,
	}
}
