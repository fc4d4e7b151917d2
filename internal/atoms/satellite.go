package atoms

// SatelliteController is a singleton aggregate: the store holds exactly one
// and folds every update into it.
type SatelliteController struct {
	CountOfSatelliteServiceEnablementsSuccess int32 `json:"count_of_satellite_service_enablements_success" yaml:"count_of_satellite_service_enablements_success"`
	CountOfSatelliteServiceEnablementsFail    int32 `json:"count_of_satellite_service_enablements_fail" yaml:"count_of_satellite_service_enablements_fail"`
	CountOfOutgoingDatagramSuccess            int32 `json:"count_of_outgoing_datagram_success" yaml:"count_of_outgoing_datagram_success"`
	CountOfOutgoingDatagramFail               int32 `json:"count_of_outgoing_datagram_fail" yaml:"count_of_outgoing_datagram_fail"`
	CountOfIncomingDatagramSuccess            int32 `json:"count_of_incoming_datagram_success" yaml:"count_of_incoming_datagram_success"`
	CountOfIncomingDatagramFail               int32 `json:"count_of_incoming_datagram_fail" yaml:"count_of_incoming_datagram_fail"`
	CountOfDatagramTypeSosSmsSuccess          int32 `json:"count_of_datagram_type_sos_sms_success" yaml:"count_of_datagram_type_sos_sms_success"`
	CountOfDatagramTypeSosSmsFail             int32 `json:"count_of_datagram_type_sos_sms_fail" yaml:"count_of_datagram_type_sos_sms_fail"`
	CountOfDatagramTypeLocationSharingSuccess int32 `json:"count_of_datagram_type_location_sharing_success" yaml:"count_of_datagram_type_location_sharing_success"`
	CountOfDatagramTypeLocationSharingFail    int32 `json:"count_of_datagram_type_location_sharing_fail" yaml:"count_of_datagram_type_location_sharing_fail"`
	CountOfProvisionSuccess                   int32 `json:"count_of_provision_success" yaml:"count_of_provision_success"`
	CountOfProvisionFail                      int32 `json:"count_of_provision_fail" yaml:"count_of_provision_fail"`
	CountOfDeprovisionSuccess                 int32 `json:"count_of_deprovision_success" yaml:"count_of_deprovision_success"`
	CountOfDeprovisionFail                    int32 `json:"count_of_deprovision_fail" yaml:"count_of_deprovision_fail"`
	TotalServiceUptimeSec                     int32 `json:"total_service_uptime_sec" yaml:"total_service_uptime_sec"`
	TotalBatteryConsumptionPercent            int32 `json:"total_battery_consumption_percent" yaml:"total_battery_consumption_percent"`
	TotalBatteryChargedTimeSec                int32 `json:"total_battery_charged_time_sec" yaml:"total_battery_charged_time_sec"`
}

// Counters returns pointers to every measure, in wire order.
func (c *SatelliteController) Counters() []*int32 {
	return []*int32{
		&c.CountOfSatelliteServiceEnablementsSuccess,
		&c.CountOfSatelliteServiceEnablementsFail,
		&c.CountOfOutgoingDatagramSuccess,
		&c.CountOfOutgoingDatagramFail,
		&c.CountOfIncomingDatagramSuccess,
		&c.CountOfIncomingDatagramFail,
		&c.CountOfDatagramTypeSosSmsSuccess,
		&c.CountOfDatagramTypeSosSmsFail,
		&c.CountOfDatagramTypeLocationSharingSuccess,
		&c.CountOfDatagramTypeLocationSharingFail,
		&c.CountOfProvisionSuccess,
		&c.CountOfProvisionFail,
		&c.CountOfDeprovisionSuccess,
		&c.CountOfDeprovisionFail,
		&c.TotalServiceUptimeSec,
		&c.TotalBatteryConsumptionPercent,
		&c.TotalBatteryChargedTimeSec,
	}
}

// SatelliteSession counts satellite session initializations by outcome.
type SatelliteSession struct {
	SatelliteServiceInitializationResult int32 `json:"satellite_service_initialization_result" yaml:"satellite_service_initialization_result"`
	SatelliteTechnology                  int32 `json:"satellite_technology" yaml:"satellite_technology"`
	Count                                int32 `json:"count" yaml:"count"`
}

// SatelliteSessionKey is the dimension tuple of a SatelliteSession.
type SatelliteSessionKey struct {
	InitializationResult int32
	Technology           int32
}

func (s *SatelliteSession) Key() SatelliteSessionKey {
	return SatelliteSessionKey{InitializationResult: s.SatelliteServiceInitializationResult, Technology: s.SatelliteTechnology}
}
