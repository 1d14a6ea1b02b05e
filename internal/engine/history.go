package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/state"
)

// History returns a copy of the history stack. Entries are shared; callers
// must not mutate them.
func (e *Engine) History() []*session.Snapshot {
	out := make([]*session.Snapshot, len(e.history))
	copy(out, e.history)
	return out
}

// pushHistory records the passage being left. Nothing is recorded before
// the first passage is shown.
func (e *Engine) pushHistory() {
	if e.passage == nil {
		return
	}
	e.history = append(e.history, &session.Snapshot{
		State:   state.Clone(e.state.State()),
		Meta:    state.Clone(e.state.Meta()),
		Passage: e.passage.ID,
	})
	slog.Debug("push history", "passage", e.passage.ID, "len", len(e.history))
}

// pushEmptyHistory appends a placeholder unless history is empty or already
// ends with one.
func (e *Engine) pushEmptyHistory() {
	n := len(e.history)
	if n > 0 && e.history[n-1] != nil {
		e.history = append(e.history, nil)
		slog.Debug("push history placeholder", "len", len(e.history))
	}
}

// HasHistory reports whether a checkpoint exists strictly before the most
// recent entry.
func (e *Engine) HasHistory() bool {
	for i := 0; i < len(e.history)-1; i++ {
		if e.history[i] != nil {
			return true
		}
	}
	return false
}

// LastCheckpointIndex returns the index of the nearest non-placeholder entry
// before the most recent one, or -1.
func (e *Engine) LastCheckpointIndex() int {
	if len(e.history) <= 1 {
		return -1
	}
	for i := len(e.history) - 2; i >= 0; i-- {
		if e.history[i] != nil {
			return i
		}
	}
	return -1
}

// PopHistory rewinds to the last checkpoint. Without one it resets the
// story. The checkpoint and everything after it are discarded; showing the
// checkpoint's passage pushes a fresh entry for the passage being left. If the
// checkpoint's passage no longer resolves, nothing changes.
func (e *Engine) PopHistory(ctx context.Context) error {
	cp := e.LastCheckpointIndex()
	if cp < 0 {
		return e.Reset(ctx)
	}

	snap := e.history[cp]
	target, err := e.resolve(ctx, snap.Passage)
	if err != nil {
		slog.Warn("rewind failed", "checkpoint", cp, "passage", snap.Passage, "error", err)
		return err
	}

	e.history = e.history[:cp]
	e.state.SetState(state.Clone(snap.State))

	slog.Info("rewind history", "checkpoint", cp, "passage", snap.Passage)
	e.display(target, state.Clone(snap.Meta), recordHistory)
	return nil
}
