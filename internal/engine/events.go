package engine

import (
	"github.com/roach88/storyloom/internal/events"
	"github.com/roach88/storyloom/internal/passage"
	"github.com/roach88/storyloom/internal/state"
)

// StoryStarted is published by Start before any save slot is consulted.
type StoryStarted struct {
	Engine  *Engine
	Session string
}

// PassageHidden is published when the current passage is about to be
// replaced.
type PassageHidden struct {
	Engine  *Engine
	Passage *passage.Passage
}

// PassageShowing is published before history and the current passage are
// updated.
type PassageShowing struct {
	Engine  *Engine
	Passage *passage.Passage
	Meta    map[string]any
}

// PassageShown is published once the transition is complete. Seq is the
// engine clock value for this transition.
type PassageShown struct {
	Engine  *Engine
	State   *state.State
	Passage *passage.Passage
	Meta    map[string]any
	Seq     int64
}

// Events groups the per-engine buses. Listeners subscribe with an optional
// priority; lower values run first.
type Events struct {
	Started *events.Bus[StoryStarted]
	Hidden  *events.Bus[PassageHidden]
	Showing *events.Bus[PassageShowing]
	Shown   *events.Bus[PassageShown]
}

// NewEvents creates an empty set of buses.
func NewEvents() *Events {
	return &Events{
		Started: events.New[StoryStarted]("story_started"),
		Hidden:  events.New[PassageHidden]("passage_hidden"),
		Showing: events.New[PassageShowing]("passage_showing"),
		Shown:   events.New[PassageShown]("passage_shown"),
	}
}
