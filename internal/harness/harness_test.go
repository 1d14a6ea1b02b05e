package harness

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func twoPassages() []PassageDef {
	return []PassageDef{
		{ID: "1", Name: "Start", Text: "Begin. [[Next]]"},
		{ID: "2", Name: "Next", Text: "#!{title: \"Onward\"}!#Keep going."},
	}
}

func TestRun_AllScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_StepExpectationFailure(t *testing.T) {
	scenario := &Scenario{
		Name:     "wrong_expectation",
		Start:    "1",
		Passages: twoPassages(),
		Steps: []Step{
			{Action: ActionStart},
			{Action: ActionShow, Passage: "Next", Expect: &Expect{Passage: "1", HistoryLen: intp(5)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `steps[1] show: passage = "2", expected "1"`)
	assert.Contains(t, result.Errors[1], "history_len = 1, expected 5")
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:     "unexpected_error",
		Start:    "1",
		Passages: twoPassages(),
		Steps: []Step{
			{Action: ActionStart},
			{Action: ActionShow, Passage: "Missing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Equal(t, "PASSAGE_NOT_FOUND", last.Error)
	assert.Equal(t, 1, last.Step)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:     "missing_error",
		Start:    "1",
		Passages: twoPassages(),
		Steps: []Step{
			{Action: ActionStart, Expect: &Expect{Error: "CORRUPT_SAVE"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"steps[0] start: expected error CORRUPT_SAVE, got none"}, result.Errors)
}

func TestRun_StartQuerySelectsSlot(t *testing.T) {
	scenario := &Scenario{
		Name:     "slot_query",
		Start:    "1",
		Passages: twoPassages(),
		Steps: []Step{
			{Action: ActionStart},
			{Action: ActionShow, Passage: "Next"},
			{Action: ActionSave, Slot: "a"},
			{Action: ActionStart, Query: map[string]string{"slot": "a"},
				Expect: &Expect{Passage: "2", HistoryLen: intp(2)}},
			{Action: ActionStart, Query: map[string]string{"slot": "a", "newgame": ""},
				Expect: &Expect{Passage: "1"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	started := 0
	for _, ev := range result.Trace {
		if ev.Type == EventStoryStarted {
			started++
			assert.Equal(t, DefaultSession, ev.Session)
		}
	}
	assert.Equal(t, 3, started)
}

func TestRun_DeleteSave(t *testing.T) {
	scenario := &Scenario{
		Name:     "delete_save",
		Start:    "1",
		Passages: twoPassages(),
		Session:  "fixed",
		Steps: []Step{
			{Action: ActionStart},
			{Action: ActionSave},
			{Action: ActionDelete},
			{Action: ActionLoad, Expect: &Expect{Loaded: boolp(false)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "fixed", result.Trace[0].Session)
}

func TestRun_FinalState(t *testing.T) {
	scenario := &Scenario{
		Name:     "final",
		Start:    "1",
		Passages: twoPassages(),
		Steps: []Step{
			{Action: ActionStart},
			{Action: ActionSetState, Values: map[string]any{"hp": 10}},
			{Action: ActionSetGlobals, Values: map[string]any{"seen": true}},
			{Action: ActionShow, Passage: "2"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "2", result.Final.Passage)
	assert.Equal(t, map[string]any{"hp": 10}, result.Final.State)
	assert.Equal(t, map[string]any{"seen": true}, result.Final.Globals)
	assert.Equal(t, 1, result.Final.HistoryLen)
}

func TestRun_BadStory(t *testing.T) {
	scenario := &Scenario{
		Name:  "bad_config",
		Start: "1",
		Passages: []PassageDef{
			{ID: "1", Name: "Start", Text: "ok"},
			{ID: "2", Name: "Config", Tags: "config", Text: "{not: valid: here"},
		},
		Steps: []Step{{Action: ActionStart}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load story")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "ERROR", errorCode(assert.AnError))
}
