package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a navigation scenario: a story, a sequence of engine
// operations with per-step expectations, and assertions over the trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Story is a path to a story document. Resolved relative to the
	// scenario file by LoadScenario.
	Story string `yaml:"story,omitempty"`

	// Passages defines an inline story when Story is empty.
	Passages []PassageDef `yaml:"passages,omitempty"`

	// Start is the start passage of an inline story.
	Start string `yaml:"start,omitempty"`

	// Session is the fixed session id. Defaults to DefaultSession.
	Session string `yaml:"session,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DefaultSession is the session id used when a scenario sets none.
const DefaultSession = "test-session"

// PassageDef is an inline passage record. Text is unescaped source.
type PassageDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Tags string `yaml:"tags,omitempty"`
	Text string `yaml:"text"`
}

// Step is one engine operation.
type Step struct {
	Action    string            `yaml:"action"`
	Passage   string            `yaml:"passage,omitempty"`
	Meta      map[string]any    `yaml:"meta,omitempty"`
	NoHistory bool              `yaml:"no_history,omitempty"`
	Slot      string            `yaml:"slot,omitempty"`
	Query     map[string]string `yaml:"query,omitempty"`
	Values    map[string]any    `yaml:"values,omitempty"`
	Raw       string            `yaml:"raw,omitempty"`
	Expect    *Expect           `yaml:"expect,omitempty"`
}

// Step actions.
const (
	ActionStart      = "start"
	ActionShow       = "show"
	ActionBack       = "back"
	ActionReset      = "reset"
	ActionSave       = "save"
	ActionLoad       = "load"
	ActionDelete     = "delete"
	ActionPutRaw     = "put_raw"
	ActionSetState   = "set_state"
	ActionSetGlobals = "set_globals"
)

// Expect lists the checks made after a step. Unset fields are skipped.
// State and Globals must match exactly.
type Expect struct {
	Passage    string         `yaml:"passage,omitempty"`
	HistoryLen *int           `yaml:"history_len,omitempty"`
	Checkpoint *int           `yaml:"checkpoint,omitempty"`
	HasHistory *bool          `yaml:"has_history,omitempty"`
	State      map[string]any `yaml:"state,omitempty"`
	Globals    map[string]any `yaml:"globals,omitempty"`
	Loaded     *bool          `yaml:"loaded,omitempty"`
	Error      string         `yaml:"error,omitempty"`
}

// Assertion validates the final trace or state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Event is the trace event type (trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Passage narrows Event to one passage id.
	Passage string `yaml:"passage,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected relative order of event labels
	// ("type" or "type:passage") for trace_order.
	Events []string `yaml:"events,omitempty"`

	// Partition is state, globals or meta (final_state).
	Partition string `yaml:"partition,omitempty"`

	// Expect holds the expected values (final_state, subset match).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. A relative Story path
// is resolved against the scenario file's directory. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Story != "" && !filepath.IsAbs(scenario.Story) {
		scenario.Story = filepath.Join(filepath.Dir(path), scenario.Story)
	}
	if scenario.Story != "" {
		if _, err := os.Stat(scenario.Story); err != nil {
			return nil, fmt.Errorf("invalid scenario: story file not found: %s", scenario.Story)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
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
	if s.Story == "" && len(s.Passages) == 0 {
		return fmt.Errorf("either story or passages is required")
	}
	if s.Story != "" && len(s.Passages) > 0 {
		return fmt.Errorf("story and passages are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, p := range s.Passages {
		if p.ID == "" && p.Name == "" {
			return fmt.Errorf("passages[%d]: id or name is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionShow:
		if s.Passage == "" {
			return fmt.Errorf("steps[%d]: passage is required for show", index)
		}
	case ActionSetState, ActionSetGlobals:
		if s.Values == nil {
			return fmt.Errorf("steps[%d]: values is required for %s (use {} to clear)", index, s.Action)
		}
	case ActionPutRaw:
		if s.Slot == "" {
			return fmt.Errorf("steps[%d]: slot is required for put_raw", index)
		}
	case ActionStart, ActionBack, ActionReset, ActionSave, ActionLoad, ActionDelete:
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, s.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		switch a.Partition {
		case "state", "globals", "meta":
		default:
			return fmt.Errorf("assertions[%d]: partition must be state, globals or meta, got %q", index, a.Partition)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
