package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/storyloom/internal/passage"
	"github.com/roach88/storyloom/internal/state"
)

// historyMode says how a show amends history.
type historyMode int

const (
	recordHistory historyMode = iota // push a snapshot of the departure point
	transient                        // push a placeholder
	fresh                            // leave history untouched
)

// Show displays the passage with the given id or title and records the
// departure point in history. meta may be nil.
func (e *Engine) Show(ctx context.Context, idOrName string, meta map[string]any) error {
	return e.show(ctx, idOrName, meta, recordHistory)
}

// ShowNoHistory displays a passage as a transient step: history receives a
// placeholder instead of a snapshot.
func (e *Engine) ShowNoHistory(ctx context.Context, idOrName string, meta map[string]any) error {
	return e.show(ctx, idOrName, meta, transient)
}

func (e *Engine) show(ctx context.Context, idOrName string, meta map[string]any, mode historyMode) error {
	next, err := e.resolve(ctx, idOrName)
	if err != nil {
		slog.Warn("show failed", "passage", idOrName, "error", err)
		return err
	}
	e.display(next, meta, mode)
	return nil
}

// display makes next the current passage. It cannot fail, so callers resolve
// first and mutate state only once resolution has succeeded.
func (e *Engine) display(next *passage.Passage, meta map[string]any, mode historyMode) {
	if meta == nil {
		meta = map[string]any{}
	}

	if e.passage != nil {
		e.events.Hidden.Publish(PassageHidden{Engine: e, Passage: e.passage})
	}
	e.events.Showing.Publish(PassageShowing{Engine: e, Passage: next, Meta: meta})

	switch mode {
	case recordHistory:
		e.pushHistory()
	case transient:
		e.pushEmptyHistory()
	}

	e.passage = next
	e.state.SetMeta(meta)
	seq := e.clock.Next()

	slog.Debug("show passage",
		"passage", next.ID,
		"seq", seq,
		"history", len(e.history),
	)

	e.events.Shown.Publish(PassageShown{
		Engine:  e,
		State:   e.state,
		Passage: next,
		Meta:    meta,
		Seq:     seq,
	})
}

// Reset clears state and history and shows the start passage. The start
// passage is shown without a history entry, so history is empty afterwards.
// Globals survive.
func (e *Engine) Reset(ctx context.Context) error {
	start, err := e.resolve(ctx, e.source.StartPassage())
	if err != nil {
		slog.Warn("reset failed", "start", e.source.StartPassage(), "error", err)
		return err
	}

	slog.Info("reset story", "start", start.ID)
	e.state.SetState(state.Map{})
	e.history = nil
	e.display(start, nil, fresh)
	return nil
}
