package engine

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/roach88/storyloom/internal/session"
)

// Query parameters read by Start.
const (
	QuerySlot    = "slot"
	QueryNewGame = "newgame"
)

// Start begins a play session. StoryStarted is published first. The save
// slot comes from query "slot" (DefaultSlot when absent); a "newgame"
// parameter forces a fresh start. A stored session is restored when
// present. A slot that cannot be restored falls through to the start
// passage; failures are logged, not returned.
func (e *Engine) Start(ctx context.Context, query url.Values) error {
	e.session = e.ids.Generate()
	e.events.Started.Publish(StoryStarted{Engine: e, Session: e.session})

	slot := session.DefaultSlot
	if vals, ok := query[QuerySlot]; ok {
		slot = ""
		if len(vals) > 0 {
			slot = vals[0]
		}
	}
	if query.Has(QueryNewGame) {
		slot = ""
	}

	if slot != "" {
		loaded, err := e.TryLoad(ctx, slot)
		switch {
		case err != nil && IsCorruptSave(err):
			slog.Error("ignoring unreadable save", "event", "corrupt_save", "slot", slot, "error", err)
		case err != nil:
			slog.Warn("save not restored", "slot", slot, "error", err)
		case loaded:
			return nil
		}
	}

	slog.Debug("start story", "session", e.session, "start", e.source.StartPassage())
	return e.show(ctx, e.source.StartPassage(), nil, recordHistory)
}
