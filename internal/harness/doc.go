// Package harness runs navigation scenarios against a real engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: rewind_skips_transient
//	description: "Rewinding skips placeholder entries"
//	start: "1"
//	passages:
//	  - {id: "1", name: Start, text: "[[Second]]"}
//	  - {id: "2", name: Second, text: "[[Third]]"}
//	steps:
//	  - action: start
//	    expect: {passage: "1", history_len: 0}
//	  - action: show
//	    passage: "2"
//	  - action: show
//	    passage: "3"
//	    no_history: true
//	  - action: back
//	    expect: {passage: "1", state: {}}
//	assertions:
//	  - type: trace_count
//	    event: passage_shown
//	    count: 4
//
// A scenario either lists passages inline or points at a story document
// with story: (relative to the scenario file).
//
// # Steps
//
//   - start: Engine.Start with an optional query map
//   - show: Show or ShowNoHistory (no_history: true) with passage and meta
//   - back, reset: PopHistory, Reset
//   - save, load, delete: slot operations (empty slot means the default)
//   - put_raw: write raw text into a slot, bypassing the codec
//   - set_state, set_globals: replace a partition with values
//
// Each step may carry expect: passage, history_len, checkpoint,
// has_history, state, globals, loaded and error (an error code).
//
// # Assertion Types
//
//   - trace_contains: an event of the given type (and passage) occurred
//   - trace_order: events occurred in the given relative order
//   - trace_count: an event type (optionally per passage) occurred N times
//   - final_state: a partition contains the expected values (subset match)
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite store, a fixed session id and a
// logical clock, so traces are identical across runs and can be compared
// against golden files with RunWithGolden.
package harness
