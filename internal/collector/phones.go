package collector

import (
	"github.com/roach88/atomstore/internal/session"
)

// Concluder is a session tracker that can commit its open segment.
type Concluder interface {
	Conclude()
}

// Phone is the collector's view of one active phone.
type Phone interface {
	// RadioAccessFamily returns the network type bitmask the phone supports.
	RadioAccessFamily() int64
	// CarrierIDListVersion returns the version of the carrier id table the
	// phone loaded.
	CarrierIDListVersion() int32
	// ServiceStateStats returns the phone's service state tracker, or nil.
	ServiceStateStats() Concluder
	// ImsStats returns the phone's IMS tracker, or nil when the phone has no
	// IMS stack.
	ImsStats() Concluder
}

// PhoneSource lists the phones that are up. An empty list means the
// subsystem is not ready.
type PhoneSource interface {
	Phones() []Phone
}

// TrackedPhone is a Phone backed by session trackers.
type TrackedPhone struct {
	RAF          int64
	TableVersion int32
	ServiceState *session.ServiceStateTracker
	Ims          *session.ImsRegistrationTracker
}

func (p *TrackedPhone) RadioAccessFamily() int64    { return p.RAF }
func (p *TrackedPhone) CarrierIDListVersion() int32 { return p.TableVersion }

func (p *TrackedPhone) ServiceStateStats() Concluder {
	if p.ServiceState == nil {
		return nil
	}
	return p.ServiceState
}

func (p *TrackedPhone) ImsStats() Concluder {
	if p.Ims == nil {
		return nil
	}
	return p.Ims
}

// StaticPhones is a fixed PhoneSource.
type StaticPhones []Phone

func (s StaticPhones) Phones() []Phone { return s }
