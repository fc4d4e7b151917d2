package atoms

// Profile selects the maximum collection length for every stored kind.
// Low-memory devices keep fewer records between pulls.
type Profile struct {
	LowMemory bool
}

// capacities holds {low-memory, normal} limits per kind.
var capacities = map[Kind][2]int{
	KindVoiceCallSession:           {10, 50},
	KindVoiceCallRatUsage:          {50, 50},
	KindIncomingSms:                {5, 25},
	KindOutgoingSms:                {5, 25},
	KindDataCallSession:            {5, 15},
	KindCellularServiceState:       {10, 50},
	KindCellularDataServiceSwitch:  {5, 50},
	KindImsRegistrationStats:       {5, 10},
	KindImsRegistrationTermination: {5, 10},
	KindNetworkRequests:            {20, 20},
	KindCarrierIDMismatch:          {8, 40},
	KindOutgoingShortCodeSms:       {5, 10},
	KindSatelliteController:        {1, 1},
	KindSatelliteSession:           {5, 15},
	KindGbaEvent:                   {5, 10},
	KindUnmeteredNetworks:          {8, 8},
}

// MaxLength returns the collection limit for k, or 0 for kinds that are not
// stored.
func (p Profile) MaxLength(k Kind) int {
	c, ok := capacities[k]
	if !ok {
		return 0
	}
	if p.LowMemory {
		return c[0]
	}
	return c[1]
}
