package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/storyloom/internal/passage"
	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/state"
)

// Source is the story document as the engine sees it. *story.Story
// implements it.
type Source interface {
	// ID identifies the story for save keys.
	ID() string

	// StartPassage names the passage shown on a fresh start.
	StartPassage() string

	// Config is the merged story configuration.
	Config() map[string]any

	// Lookup resolves an id or title. A missing passage is (nil, false, nil);
	// errors are reserved for resolution failures.
	Lookup(ctx context.Context, idOrName string) (*passage.Passage, bool, error)
}

// DefaultResolveTimeout bounds a single passage resolution.
const DefaultResolveTimeout = 5 * time.Second

// Engine drives navigation for one play session.
type Engine struct {
	source   Source
	store    session.Store
	renderer Renderer
	events   *Events
	clock    *Clock
	ids      IDGenerator

	state   *state.State
	passage *passage.Passage
	history []*session.Snapshot
	session string

	resolveTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the save store. Default: an in-memory store.
func WithStore(s session.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithRenderer sets the renderer used by Render. Default: TextRenderer.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithEvents shares a set of buses with the engine. Default: NewEvents().
func WithEvents(ev *Events) Option {
	return func(e *Engine) { e.events = ev }
}

// WithState replaces the initial state. Config is still taken from the
// source.
func WithState(st *state.State) Option {
	return func(e *Engine) { e.state = st }
}

// WithResolveTimeout bounds each passage resolution. Zero disables the bound.
func WithResolveTimeout(d time.Duration) Option {
	return func(e *Engine) { e.resolveTimeout = d }
}

// WithIDGenerator sets the session id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithClock sets the transition clock. Default: NewClock().
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine for src. No passage is shown until Start, Show or
// Restore is called.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		source:         src,
		resolveTimeout: DefaultResolveTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = session.NewMemoryStore()
	}
	if e.renderer == nil {
		e.renderer = TextRenderer{}
	}
	if e.events == nil {
		e.events = NewEvents()
	}
	if e.clock == nil {
		e.clock = NewClock()
	}
	if e.ids == nil {
		e.ids = UUIDv7Generator{}
	}
	if e.state == nil {
		e.state = state.New()
	}
	e.state.SetConfig(state.Clone(src.Config()))

	return e
}

// Story returns the source the engine navigates.
func (e *Engine) Story() Source { return e.source }

// Events returns the engine's event buses.
func (e *Engine) Events() *Events { return e.events }

// State returns the live story state.
func (e *Engine) State() *state.State { return e.state }

// Meta returns the meta passed to the current passage.
func (e *Engine) Meta() map[string]any { return e.state.Meta() }

// Session returns the id assigned by the most recent Start, or "".
func (e *Engine) Session() string { return e.session }

// Seq returns the number of completed transitions.
func (e *Engine) Seq() int64 { return e.clock.Current() }

// Passage returns the current passage, or ErrNoPassageLoaded before the
// first show completes.
func (e *Engine) Passage() (*passage.Passage, error) {
	if e.passage == nil {
		return nil, ErrNoPassageLoaded
	}
	return e.passage, nil
}

// resolve looks up idOrName, bounded by the resolve timeout.
func (e *Engine) resolve(ctx context.Context, idOrName string) (*passage.Passage, error) {
	if e.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.resolveTimeout)
		defer cancel()
	}

	p, ok, err := e.source.Lookup(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("resolve passage %q: %w", idOrName, err)
	}
	if !ok || p == nil {
		return nil, NewPassageNotFound(idOrName)
	}
	return p, nil
}
