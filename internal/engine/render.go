package engine

import (
	"context"

	"github.com/roach88/storyloom/internal/passage"
	"github.com/roach88/storyloom/internal/state"
)

// Renderer turns a passage body into output. Template evaluation lives
// behind this interface; the engine only supplies the passage and state.
type Renderer interface {
	Render(ctx context.Context, p *passage.Passage, st *state.State) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, p *passage.Passage, st *state.State) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, p *passage.Passage, st *state.State) (string, error) {
	return f(ctx, p, st)
}

// TextRenderer returns the passage body unchanged.
type TextRenderer struct{}

// Render implements Renderer.
func (TextRenderer) Render(_ context.Context, p *passage.Passage, _ *state.State) (string, error) {
	return p.Text, nil
}

// Render renders a passage against the current state without navigating.
// It fails with PASSAGE_NOT_FOUND exactly as Show does.
func (e *Engine) Render(ctx context.Context, idOrName string) (string, error) {
	p, err := e.resolve(ctx, idOrName)
	if err != nil {
		return "", err
	}
	return e.renderer.Render(ctx, p, e.state)
}

// RenderTitle resolves the current passage's title against the current
// state.
func (e *Engine) RenderTitle() (string, error) {
	p, err := e.Passage()
	if err != nil {
		return "", err
	}
	return p.RenderTitle(e.state)
}
