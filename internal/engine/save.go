package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/state"
)

// Snapshot captures the session as a save record. It fails with
// ErrNoPassageLoaded before the first show.
func (e *Engine) Snapshot() (session.Record, error) {
	p, err := e.Passage()
	if err != nil {
		return session.Record{}, err
	}

	history := make([]*session.Snapshot, len(e.history))
	for i, h := range e.history {
		if h == nil {
			continue
		}
		history[i] = &session.Snapshot{
			State:   state.Clone(h.State),
			Meta:    state.Clone(h.Meta),
			Passage: h.Passage,
		}
	}

	return session.Record{
		State:       state.Clone(e.state.State()),
		PassageName: p.ID,
		Meta:        state.Clone(e.state.Meta()),
		Globals:     state.Clone(e.state.Globals()),
		History:     history,
	}, nil
}

// Restore replaces state, globals and history from rec, then shows the
// recorded passage with its meta. That show records history, so the
// restored history gains one entry for the passage being left, if any. A
// record naming a missing passage leaves the session untouched.
func (e *Engine) Restore(ctx context.Context, rec session.Record) error {
	target, err := e.resolve(ctx, rec.PassageName)
	if err != nil {
		return err
	}

	e.state.SetState(state.Clone(rec.State))
	e.state.SetGlobals(state.Clone(rec.Globals))
	e.history = make([]*session.Snapshot, len(rec.History))
	copy(e.history, rec.History)

	e.display(target, state.Clone(rec.Meta), recordHistory)
	return nil
}

// Save stores the session under slot. An empty slot means DefaultSlot.
//
// The record is stored as JSON, so state survives a Save and TryLoad round
// trip only in JSON shape: Go integers come back as float64, and structs come
// back as map[string]any.
func (e *Engine) Save(ctx context.Context, slot string) error {
	if slot == "" {
		slot = session.DefaultSlot
	}

	rec, err := e.Snapshot()
	if err != nil {
		return err
	}
	if err := state.Validate(rec.State); err != nil {
		return fmt.Errorf("save %q: %w", slot, err)
	}

	encoded, err := session.Encode(rec)
	if err != nil {
		return fmt.Errorf("save %q: %w", slot, err)
	}
	if err := e.store.Put(ctx, session.Key(e.source.ID(), slot), encoded); err != nil {
		return fmt.Errorf("save %q: %w", slot, err)
	}

	slog.Info("saved session", "slot", slot, "passage", rec.PassageName, "history", len(rec.History))
	return nil
}

// TryLoad restores the session stored under slot. It returns (false, nil)
// when the slot is absent and (false, err) with a CORRUPT_SAVE error when
// the stored value cannot be decoded. Nothing changes unless it returns true.
func (e *Engine) TryLoad(ctx context.Context, slot string) (bool, error) {
	raw, ok, err := e.store.Get(ctx, session.Key(e.source.ID(), slot))
	if err != nil {
		return false, fmt.Errorf("load %q: %w", slot, err)
	}
	if !ok {
		slog.Debug("save slot absent", "slot", slot)
		return false, nil
	}

	rec, err := session.Decode(raw)
	if err != nil {
		return false, newCorruptSave(slot, err)
	}

	if err := e.Restore(ctx, rec); err != nil {
		return false, fmt.Errorf("load %q: %w", slot, err)
	}

	slog.Info("loaded session", "slot", slot, "passage", rec.PassageName)
	return true, nil
}

// DeleteSave removes a save slot. Deleting an absent slot is not an error.
func (e *Engine) DeleteSave(ctx context.Context, slot string) error {
	if err := e.store.Delete(ctx, session.Key(e.source.ID(), slot)); err != nil {
		return fmt.Errorf("delete save %q: %w", slot, err)
	}
	return nil
}

// Saves lists the slots stored for this story, sorted.
func (e *Engine) Saves(ctx context.Context) ([]string, error) {
	return session.Slots(ctx, e.store, e.source.ID())
}
