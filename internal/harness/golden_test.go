package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden files are written by hand or regenerated with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_RewindSkipsTransient(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "rewind_skips_transient.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_SaveLoadRoundtrip(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "save_load_roundtrip.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_Marshal(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "tiny",
		Trace: []TraceEvent{
			{Seq: 1, Type: EventPassageShown, Passage: "1", State: map[string]any{"b": 1, "a": 2}},
		},
		Final: Final{Passage: "1", State: map[string]any{}, Globals: map[string]any{}},
	}

	data, err := snap.Marshal()
	require.NoError(t, err)
	require.Equal(t, `{
  "scenario_name": "tiny",
  "trace": [
    {
      "seq": 1,
      "step": 0,
      "type": "passage_shown",
      "passage": "1",
      "state": {
        "a": 2,
        "b": 1
      }
    }
  ],
  "final": {
    "passage": "1",
    "state": {},
    "globals": {},
    "history_len": 0
  }
}
`, string(data))
}
