package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/wire"
)

// AssertionError is returned when an assertion fails.
// It includes the pulled events to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Events   []wire.Event // Events of the asserted kind
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Events) > 0 {
		fmt.Fprintf(&buf, "\nPulled events:\n")
		for i, ev := range e.Events {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, ev)
		}
	}
	return buf.String()
}

// CheckAssertion evaluates one assertion against a finished result.
func CheckAssertion(r *Result, a Assertion) error {
	k, err := atoms.ParseKind(a.Kind)
	if err != nil {
		return err
	}

	switch a.Type {
	case AssertStoredCount:
		if got := r.Stored[k.String()]; got != a.Count {
			return &AssertionError{
				Type:     AssertStoredCount,
				Expected: fmt.Sprintf("%d stored %s records", a.Count, k),
				Actual:   fmt.Sprintf("%d", got),
			}
		}
	case AssertEventCount:
		events := r.Events(k)
		if len(events) != a.Count {
			return &AssertionError{
				Type:     AssertEventCount,
				Expected: fmt.Sprintf("%d %s events", a.Count, k),
				Actual:   fmt.Sprintf("%d", len(events)),
				Events:   events,
			}
		}
	case AssertEventContains:
		events := r.Events(k)
		for _, ev := range events {
			if matchFields(ev, a.Fields) {
				return nil
			}
		}
		return &AssertionError{
			Type:     AssertEventContains,
			Expected: fmt.Sprintf("%s event with %s", k, formatFields(a.Fields)),
			Actual:   "not found",
			Events:   events,
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// matchFields reports whether every wanted field is present in ev with an
// equal value.
func matchFields(ev wire.Event, want map[string]any) bool {
	for name, w := range want {
		v, ok := ev.Get(name)
		if !ok || !valueEquals(v, w) {
			return false
		}
	}
	return true
}

// valueEquals compares a wire value with a value decoded from YAML.
func valueEquals(v wire.Value, want any) bool {
	switch v := v.(type) {
	case wire.Int32:
		n, ok := toInt64(want)
		return ok && n == int64(v)
	case wire.Int64:
		n, ok := toInt64(want)
		return ok && n == int64(v)
	case wire.Bool:
		b, ok := want.(bool)
		return ok && b == bool(v)
	case wire.String:
		s, ok := want.(string)
		return ok && s == string(v)
	case wire.Int32Array:
		list, ok := want.([]any)
		if !ok || len(list) != len(v) {
			return false
		}
		for i, item := range list {
			n, ok := toInt64(item)
			if !ok || n != int64(v[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// formatFields renders fields in name order.
func formatFields(fields map[string]any) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, fields[name])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
