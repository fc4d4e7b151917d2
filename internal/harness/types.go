package harness

import (
	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/wire"
)

// PullTrace records one pull step.
type PullTrace struct {
	Step   int          `json:"step"`
	Kind   atoms.Kind   `json:"kind"`
	Result string       `json:"result"`
	Events []wire.Event `json:"events"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every pull expectation and assertion held.
	Pass bool `json:"pass"`

	// Pulls lists every pull step in order. Used for event assertions and
	// golden comparison.
	Pulls []PullTrace `json:"pulls"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stored maps each stored kind's name to its record count after the
	// last step.
	Stored map[string]int `json:"stored,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Pulls:  []PullTrace{},
		Errors: []string{},
		Stored: make(map[string]int),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddPull appends a pull to the trace.
func (r *Result) AddPull(step int, k atoms.Kind, result string, events []wire.Event) {
	r.Pulls = append(r.Pulls, PullTrace{Step: step, Kind: k, Result: result, Events: events})
}

// Events returns every event pulled for k, in pull order.
func (r *Result) Events(k atoms.Kind) []wire.Event {
	var out []wire.Event
	for _, p := range r.Pulls {
		if p.Kind == k {
			out = append(out, p.Events...)
		}
	}
	return out
}
