// Package engine implements the story navigation engine.
//
// The engine owns the current passage, the story state and the history
// stack. It resolves passages through a Source, announces every transition
// on its own event buses, and saves/restores sessions through a
// session.Store. It never renders markup; renderers subscribe to
// Events().Shown and pull what they need.
//
// TRANSITIONS:
//
// A show resolves the target first. If resolution fails nothing changes.
// Otherwise, in order:
//  1. PassageHidden(previous), when a passage was showing
//  2. PassageShowing(next, meta)
//  3. history is amended relative to the passage being left
//  4. current passage and meta are replaced
//  5. PassageShown(state, next, meta)
//
// HISTORY:
//
// Each entry is a snapshot {state, meta, passage} of the departure point or
// a nil placeholder for a transient show. Consecutive placeholders collapse
// to one. The very first show has no departure point and records nothing.
// Rewinding truncates history at the nearest checkpoint before the most
// recent entry, restores that snapshot's state and shows its passage again
// with history, so the checkpoint is re-pushed as the new top entry.
//
// CONCURRENCY:
//
// An Engine is not safe for concurrent use. Callers must not start a
// transition while another is in flight; there is no internal queue.
// Event listeners must not trigger transitions from PassageHidden or
// PassageShowing.
package engine
