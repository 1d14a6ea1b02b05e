package harness

// Trace event types.
const (
	EventStoryStarted   = "story_started"
	EventPassageHidden  = "passage_hidden"
	EventPassageShowing = "passage_showing"
	EventPassageShown   = "passage_shown"
	EventError          = "error"
)

// TraceEvent is one recorded engine event or step failure.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Step    int            `json:"step"`
	Type    string         `json:"type"`
	Passage string         `json:"passage,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	State   map[string]any `json:"state,omitempty"`
	Session string         `json:"session,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Label renders the event as "type" or "type:passage", the form used by
// trace_order assertions.
func (e TraceEvent) Label() string {
	if e.Passage == "" {
		return e.Type
	}
	return e.Type + ":" + e.Passage
}

// Final is the engine state after the last step.
type Final struct {
	Passage    string         `json:"passage"`
	State      map[string]any `json:"state"`
	Globals    map[string]any `json:"globals"`
	HistoryLen int            `json:"history_len"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains the engine events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Final Final `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
