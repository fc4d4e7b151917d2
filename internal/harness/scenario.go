package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/atomstore/internal/atoms"
)

// Scenario is a scripted sequence of adds, clock moves and pulls.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed drives the store's insert positions and the collector's event
	// tags. Zero is a valid seed.
	Seed uint64 `yaml:"seed,omitempty"`

	LowMemory bool `yaml:"low_memory,omitempty"`
	Debug     bool `yaml:"debug,omitempty"`

	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario action. Exactly one of Add, Advance, Pull, Flush,
// Clear and Restart is set.
type Step struct {
	// Add names the kind of Record.
	Add    string    `yaml:"add,omitempty"`
	Record yaml.Node `yaml:"record,omitempty"`

	Advance time.Duration `yaml:"advance,omitempty"`

	Pull   string      `yaml:"pull,omitempty"`
	Expect *PullExpect `yaml:"expect,omitempty"`

	Flush   bool `yaml:"flush,omitempty"`
	Clear   bool `yaml:"clear,omitempty"`
	Restart bool `yaml:"restart,omitempty"`
}

// PullExpect checks a pull step's outcome. Unset fields are not checked.
type PullExpect struct {
	Result string `yaml:"result,omitempty"`
	Events *int   `yaml:"events,omitempty"`
}

// Assertion validates the final store or the pulled events.
type Assertion struct {
	// Type is one of stored_count, event_count or event_contains.
	Type string `yaml:"type"`

	Kind string `yaml:"kind"`

	// Count is used by stored_count and event_count.
	Count int `yaml:"count,omitempty"`

	// Fields is used by event_contains. Subset match against one event.
	Fields map[string]any `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertStoredCount   = "stored_count"
	AssertEventCount    = "event_count"
	AssertEventContains = "event_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	actions := 0
	for _, set := range []bool{st.Add != "", st.Advance != 0, st.Pull != "", st.Flush, st.Clear, st.Restart} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one action is required, got %d", index, actions)
	}

	switch {
	case st.Add != "":
		k, err := atoms.ParseKind(st.Add)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		if !k.Stored() {
			return fmt.Errorf("steps[%d]: kind %s cannot be added", index, k)
		}
		if st.Record.Kind == 0 {
			return fmt.Errorf("steps[%d]: record is required for add", index)
		}
	case st.Advance < 0:
		return fmt.Errorf("steps[%d]: advance must be positive", index)
	case st.Pull != "":
		if _, err := atoms.ParseKind(st.Pull); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}

	if st.Expect != nil && st.Pull == "" {
		return fmt.Errorf("steps[%d]: expect is only valid on pull steps", index)
	}
	if st.Record.Kind != 0 && st.Add == "" {
		return fmt.Errorf("steps[%d]: record is only valid on add steps", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if _, err := atoms.ParseKind(a.Kind); err != nil {
		return fmt.Errorf("assertions[%d]: %w", index, err)
	}

	switch a.Type {
	case AssertStoredCount, AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertEventContains:
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields are required for event_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
