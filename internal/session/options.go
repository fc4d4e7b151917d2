package session

import (
	"log/slog"
	"math/rand/v2"

	"github.com/coder/quartz"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/bounded"
)

// ServiceStateSink receives closed service state segments.
type ServiceStateSink interface {
	AddServiceState(state *atoms.CellularServiceState, sw *atoms.CellularDataServiceSwitch)
}

// ImsSink receives closed IMS registration segments and deregistrations.
type ImsSink interface {
	AddImsRegistrationStats(stats *atoms.ImsRegistrationStats)
	AddImsRegistrationTermination(t *atoms.ImsRegistrationTermination)
}

// DataCallSink receives data call segments.
type DataCallSink interface {
	AddDataCallSession(call *atoms.DataCallSession)
}

// Options configures a tracker. Zero values are replaced with defaults.
type Options struct {
	Clock  quartz.Clock
	Logger *slog.Logger

	// Rand assigns data call dimension tags. It is used only by the
	// tracker it is given to and must not be shared.
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Rand == nil {
		o.Rand = bounded.NewRand()
	}
	return o
}
