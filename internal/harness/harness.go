package harness

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/net/html"

	"github.com/roach88/storyloom/internal/engine"
	"github.com/roach88/storyloom/internal/passage"
	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/state"
	"github.com/roach88/storyloom/internal/store"
	"github.com/roach88/storyloom/internal/story"
)

// Harness executes one scenario against one engine.
type Harness struct {
	engine *engine.Engine
	store  *store.Store
	clock  *engine.Clock
	result *Result
	step   int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory SQLite store. Step and
// assertion failures are reported in the result; the returned error is
// reserved for scenarios that cannot run at all (unloadable story, store
// failure).
func Run(scenario *Scenario) (*Result, error) {
	src, err := loadStory(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	sessionID := scenario.Session
	if sessionID == "" {
		sessionID = DefaultSession
	}
	ids := make([]string, 0, len(scenario.Steps))
	for _, step := range scenario.Steps {
		if step.Action == ActionStart {
			ids = append(ids, sessionID)
		}
	}

	h := &Harness{
		store:  st,
		clock:  engine.NewClock(),
		result: NewResult(),
	}
	h.engine = engine.New(src,
		engine.WithStore(st),
		engine.WithIDGenerator(engine.NewFixedGenerator(ids...)),
	)
	h.subscribe()

	ctx := context.Background()
	for i, step := range scenario.Steps {
		h.step = i
		loaded, err := h.execute(ctx, step)
		h.check(i, step, loaded, err)
	}

	h.result.Final = h.final()

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, &AssertionContext{Engine: h.engine}) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

func loadStory(s *Scenario) (*story.Story, error) {
	if s.Story != "" {
		return story.Load(s.Story)
	}
	records := make([]passage.RawRecord, len(s.Passages))
	for i, p := range s.Passages {
		records[i] = passage.RawRecord{
			ID:     p.ID,
			Name:   p.Name,
			Tags:   p.Tags,
			Source: html.EscapeString(p.Text),
		}
	}
	return story.New(story.Info{Name: s.Name, StartNode: s.Start}, records)
}

func (h *Harness) record(ev TraceEvent) {
	ev.Seq = h.clock.Next()
	ev.Step = h.step
	h.result.Trace = append(h.result.Trace, ev)
}

func (h *Harness) subscribe() {
	ev := h.engine.Events()
	ev.Started.Subscribe(func(e engine.StoryStarted) {
		h.record(TraceEvent{Type: EventStoryStarted, Session: e.Session})
	})
	ev.Hidden.Subscribe(func(e engine.PassageHidden) {
		h.record(TraceEvent{Type: EventPassageHidden, Passage: e.Passage.ID})
	})
	ev.Showing.Subscribe(func(e engine.PassageShowing) {
		h.record(TraceEvent{Type: EventPassageShowing, Passage: e.Passage.ID, Meta: state.Clone(e.Meta)})
	})
	ev.Shown.Subscribe(func(e engine.PassageShown) {
		h.record(TraceEvent{
			Type:    EventPassageShown,
			Passage: e.Passage.ID,
			Meta:    state.Clone(e.Meta),
			State:   state.Clone(e.State.State()),
		})
	})
}

// execute runs one step. loaded is only meaningful for load steps.
func (h *Harness) execute(ctx context.Context, step Step) (loaded bool, err error) {
	e := h.engine
	switch step.Action {
	case ActionStart:
		query := url.Values{}
		for k, v := range step.Query {
			query.Set(k, v)
		}
		return false, e.Start(ctx, query)
	case ActionShow:
		if step.NoHistory {
			return false, e.ShowNoHistory(ctx, step.Passage, step.Meta)
		}
		return false, e.Show(ctx, step.Passage, step.Meta)
	case ActionBack:
		return false, e.PopHistory(ctx)
	case ActionReset:
		return false, e.Reset(ctx)
	case ActionSave:
		return false, e.Save(ctx, step.Slot)
	case ActionLoad:
		slot := step.Slot
		if slot == "" {
			slot = session.DefaultSlot
		}
		return e.TryLoad(ctx, slot)
	case ActionDelete:
		slot := step.Slot
		if slot == "" {
			slot = session.DefaultSlot
		}
		return false, e.DeleteSave(ctx, slot)
	case ActionPutRaw:
		return false, h.store.Put(ctx, session.Key(e.Story().ID(), step.Slot), step.Raw)
	case ActionSetState:
		e.State().SetState(state.Clone(step.Values))
		return false, nil
	case ActionSetGlobals:
		e.State().SetGlobals(state.Clone(step.Values))
		return false, nil
	default:
		return false, fmt.Errorf("unknown action %q", step.Action)
	}
}

// check records step errors and evaluates the step's expectations.
func (h *Harness) check(index int, step Step, loaded bool, err error) {
	prefix := fmt.Sprintf("steps[%d] %s", index, step.Action)
	exp := step.Expect
	if exp == nil {
		exp = &Expect{}
	}

	if err != nil {
		code := errorCode(err)
		h.record(TraceEvent{Type: EventError, Error: code})
		if exp.Error != code {
			h.result.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, err))
		}
	} else if exp.Error != "" {
		h.result.AddError(fmt.Sprintf("%s: expected error %s, got none", prefix, exp.Error))
	}

	e := h.engine
	if exp.Passage != "" {
		got := ""
		if p, perr := e.Passage(); perr == nil {
			got = p.ID
		}
		if got != exp.Passage {
			h.result.AddError(fmt.Sprintf("%s: passage = %q, expected %q", prefix, got, exp.Passage))
		}
	}
	if exp.HistoryLen != nil && len(e.History()) != *exp.HistoryLen {
		h.result.AddError(fmt.Sprintf("%s: history_len = %d, expected %d", prefix, len(e.History()), *exp.HistoryLen))
	}
	if exp.Checkpoint != nil && e.LastCheckpointIndex() != *exp.Checkpoint {
		h.result.AddError(fmt.Sprintf("%s: checkpoint = %d, expected %d", prefix, e.LastCheckpointIndex(), *exp.Checkpoint))
	}
	if exp.HasHistory != nil && e.HasHistory() != *exp.HasHistory {
		h.result.AddError(fmt.Sprintf("%s: has_history = %t, expected %t", prefix, e.HasHistory(), *exp.HasHistory))
	}
	if exp.State != nil && !valuesEqual(e.State().State(), exp.State) {
		h.result.AddError(fmt.Sprintf("%s: state = %v, expected %v", prefix, e.State().State(), exp.State))
	}
	if exp.Globals != nil && !valuesEqual(e.State().Globals(), exp.Globals) {
		h.result.AddError(fmt.Sprintf("%s: globals = %v, expected %v", prefix, e.State().Globals(), exp.Globals))
	}
	if exp.Loaded != nil && loaded != *exp.Loaded {
		h.result.AddError(fmt.Sprintf("%s: loaded = %t, expected %t", prefix, loaded, *exp.Loaded))
	}
}

func (h *Harness) final() Final {
	f := Final{
		State:      state.Clone(h.engine.State().State()),
		Globals:    state.Clone(h.engine.State().Globals()),
		HistoryLen: len(h.engine.History()),
	}
	if p, err := h.engine.Passage(); err == nil {
		f.Passage = p.ID
	}
	return f
}

// errorCode maps an error to the code used in traces and expectations.
func errorCode(err error) string {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	if passage.IsConfigParseError(err) {
		return "CONFIG_PARSE"
	}
	return "ERROR"
}
