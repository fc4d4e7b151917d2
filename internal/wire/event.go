package wire

import (
	"strings"

	"github.com/roach88/atomstore/internal/atoms"
)

// Event is one pulled atom instance.
type Event struct {
	Kind   atoms.Kind `json:"atom"`
	AtomID int32      `json:"atom_id"`
	Fields []Field    `json:"fields"`
}

// NewEvent builds an event of kind k from fields in schema order.
func NewEvent(k atoms.Kind, fields ...Field) Event {
	return Event{Kind: k, AtomID: k.AtomID(), Fields: fields}
}

// Get returns the value of the named field.
func (e Event) Get(name string) (Value, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (e Event) Names() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Name
	}
	return out
}

// String renders the event on one line as kind{name=value ...}.
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteByte('{')
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		if f.Value != nil {
			b.WriteString(f.Value.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}
