package atoms

// HandoverFailureLimit caps the handover failure history kept per data call.
const HandoverFailureLimit = 15

// DataCallSession describes one data connection. Segments of the same
// connection share the random Dimension tag assigned when the session opened;
// the store uses that tag, not field equality, to fold segments together.
type DataCallSession struct {
	Dimension             int32   `json:"dimension" yaml:"dimension"`
	IsMultiSim            bool    `json:"is_multi_sim" yaml:"is_multi_sim"`
	IsEsim                bool    `json:"is_esim" yaml:"is_esim"`
	ApnTypeBitmask        int32   `json:"apn_type_bitmask" yaml:"apn_type_bitmask"`
	CarrierID             int32   `json:"carrier_id" yaml:"carrier_id"`
	IsRoaming             bool    `json:"is_roaming" yaml:"is_roaming"`
	RatAtEnd              int32   `json:"rat_at_end" yaml:"rat_at_end"`
	OosAtEnd              bool    `json:"oos_at_end" yaml:"oos_at_end"`
	RatSwitchCount        int64   `json:"rat_switch_count" yaml:"rat_switch_count"`
	IsOpportunistic       bool    `json:"is_opportunistic" yaml:"is_opportunistic"`
	IPType                int32   `json:"ip_type" yaml:"ip_type"`
	SetupFailed           bool    `json:"setup_failed" yaml:"setup_failed"`
	FailureCause          int32   `json:"failure_cause" yaml:"failure_cause"`
	SuggestedRetryMillis  int32   `json:"suggested_retry_millis" yaml:"suggested_retry_millis"`
	DeactivateReason      int32   `json:"deactivate_reason" yaml:"deactivate_reason"`
	DurationMinutes       int64   `json:"duration_minutes" yaml:"duration_minutes"`
	Ongoing               bool    `json:"ongoing" yaml:"ongoing"`
	BandAtEnd             int32   `json:"band_at_end" yaml:"band_at_end"`
	HandoverFailureCauses []int32 `json:"handover_failure_causes" yaml:"handover_failure_causes"`
	HandoverFailureRat    []int32 `json:"handover_failure_rat" yaml:"handover_failure_rat"`
	IsNonDds              bool    `json:"is_non_dds" yaml:"is_non_dds"`
}

// Clone returns a deep copy of the session.
func (d *DataCallSession) Clone() *DataCallSession {
	c := *d
	c.HandoverFailureCauses = append([]int32(nil), d.HandoverFailureCauses...)
	c.HandoverFailureRat = append([]int32(nil), d.HandoverFailureRat...)
	return &c
}

// HandoverDirection packs a source and target RAT into one value.
func HandoverDirection(sourceRat, targetRat int32) int32 {
	return sourceRat | targetRat<<16
}

// AddHandoverFailure records a failure cause for a RAT pair. Pairs already
// present and failures past HandoverFailureLimit are dropped. It reports
// whether the failure was recorded.
func (d *DataCallSession) AddHandoverFailure(cause, sourceRat, targetRat int32) bool {
	direction := HandoverDirection(sourceRat, targetRat)
	for i := range d.HandoverFailureCauses {
		if d.HandoverFailureCauses[i] == cause && i < len(d.HandoverFailureRat) && d.HandoverFailureRat[i] == direction {
			return false
		}
	}
	if len(d.HandoverFailureCauses) >= HandoverFailureLimit {
		return false
	}
	d.HandoverFailureCauses = append(d.HandoverFailureCauses, cause)
	d.HandoverFailureRat = append(d.HandoverFailureRat, direction)
	return true
}

// NetworkRequests counts network requests per carrier and capability.
type NetworkRequests struct {
	CarrierID    int32 `json:"carrier_id" yaml:"carrier_id"`
	Capability   int32 `json:"capability" yaml:"capability"`
	RequestCount int32 `json:"request_count" yaml:"request_count"`
}

// NetworkRequestsKey is the dimension tuple of a NetworkRequests record.
type NetworkRequestsKey struct {
	CarrierID  int32
	Capability int32
}

func (n *NetworkRequests) Key() NetworkRequestsKey {
	return NetworkRequestsKey{CarrierID: n.CarrierID, Capability: n.Capability}
}

// UnmeteredNetworks holds the RAT bitmask seen as unmetered for one phone.
type UnmeteredNetworks struct {
	PhoneID   int32 `json:"phone_id" yaml:"phone_id"`
	CarrierID int32 `json:"carrier_id" yaml:"carrier_id"`
	Bitmask   int64 `json:"unmetered_networks_bitmask" yaml:"unmetered_networks_bitmask"`
}
