package passage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyloom/internal/state"
)

func TestParse_PlainRecord(t *testing.T) {
	p, err := Parse(RawRecord{ID: "3", Name: "Forest", Tags: "dark level=2", Source: "You are &lt;lost&gt; &amp; alone."})
	require.NoError(t, err)

	assert.Equal(t, "3", p.ID)
	assert.Equal(t, "Forest", p.Name)
	assert.Equal(t, Literal("Forest"), p.Title)
	assert.Equal(t, "You are <lost> & alone.", p.Text)
	assert.Empty(t, p.Meta)
	assert.Empty(t, p.Source, "source is only kept on request")
	assert.Equal(t, Tags{"dark": {Flag: true}, "level": {Value: "2"}}, p.Tags)
}

func TestParse_HeaderOverridesRecord(t *testing.T) {
	src := `  #!{ id: "forest", title: &quot;Dark Forest&quot;, tags: {level: "3", night: true, dark: false} }!#The trees close in.`
	p, err := Parse(RawRecord{ID: "3", Name: "Forest", Tags: "dark level=2", Source: src}, PreserveSource())
	require.NoError(t, err)

	assert.Equal(t, "forest", p.ID)
	assert.Equal(t, Literal("Dark Forest"), p.Title)
	assert.Equal(t, "Forest", p.Name)
	assert.Equal(t, "The trees close in.", p.Text)
	assert.Equal(t, Tags{"level": {Value: "3"}, "night": {Flag: true}}, p.Tags)
	assert.Contains(t, p.Source, "#!{")
	assert.Equal(t, "Dark Forest", p.Meta["title"])
}

func TestParse_JSONHeader(t *testing.T) {
	src := `#!{"title": "Cellar", "weight": 4, "items": ["lamp", "rope"]}!#Damp.`
	p, err := Parse(RawRecord{ID: "9", Name: "cellar", Source: src})
	require.NoError(t, err)

	assert.Equal(t, Literal("Cellar"), p.Title)
	assert.Equal(t, 4, p.Meta["weight"])
	assert.Equal(t, []any{"lamp", "rope"}, p.Meta["items"])
	assert.Equal(t, "Damp.", p.Text)
}

func TestParse_NumericHeaderID(t *testing.T) {
	p, err := Parse(RawRecord{ID: "1", Name: "a", Source: `#!{id: 42}!#x`})
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID)
}

func TestParse_Fallbacks(t *testing.T) {
	p, err := Parse(RawRecord{Source: "body"})
	require.NoError(t, err)

	assert.Equal(t, FallbackID, p.ID)
	assert.Equal(t, Literal(UnnamedTitle), p.Title)
}

func TestParse_MalformedHeaderIsFatal(t *testing.T) {
	_, err := Parse(RawRecord{ID: "5", Name: "Broken", Source: `#!{ title: "x", }}!#text`})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrConfigParse))
	assert.True(t, IsConfigParseError(err))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "5", pe.Passage)
	assert.Equal(t, "header", pe.Field)
}

func TestParse_HeaderMustBeAtStart(t *testing.T) {
	p, err := Parse(RawRecord{ID: "1", Name: "a", Source: `intro #!{title: "x"}!#`})
	require.NoError(t, err)

	assert.Equal(t, Literal("a"), p.Title)
	assert.Equal(t, `intro #!{title: "x"}!#`, p.Text)
}

func TestParse_ComputedTitle(t *testing.T) {
	src := `#!{title: {lua: "'Room ' .. s.room"}}!#A room.`
	p, err := Parse(RawRecord{ID: "7", Name: "room", Source: src})
	require.NoError(t, err)

	_, isComputed := p.Title.(Computed)
	require.True(t, isComputed)
	assert.Equal(t, "room", p.DisplayTitle(), "computed titles are looked up by name")

	st := state.New()
	st.SetState(state.Map{"room": "North"})

	title, err := p.RenderTitle(st)
	require.NoError(t, err)
	assert.Equal(t, "Room North", title)
}

func TestParse_ComputedTitleChunk(t *testing.T) {
	src := `#!{title: {lua: "if s.lit then return 'Bright hall' end return passage.name"}}!#`
	p, err := Parse(RawRecord{ID: "8", Name: "Hall", Source: src})
	require.NoError(t, err)

	st := state.New()
	title, err := p.RenderTitle(st)
	require.NoError(t, err)
	assert.Equal(t, "Hall", title)

	st.SetState(state.Map{"lit": true})
	title, err = p.RenderTitle(st)
	require.NoError(t, err)
	assert.Equal(t, "Bright hall", title)
}

func TestParse_ComputedTitleSyntaxError(t *testing.T) {
	_, err := Parse(RawRecord{ID: "8", Source: `#!{title: {lua: "return (("}}!#`})
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "title", pe.Field)
}

func TestParse_NameFromHeader(t *testing.T) {
	p, err := Parse(RawRecord{ID: "2", Name: "old", Source: `#!{name: "new"}!#`})
	require.NoError(t, err)

	assert.Equal(t, "new", p.Name)
	assert.Equal(t, Literal("old"), p.Title)
}

func TestRenderTitle_Literal(t *testing.T) {
	p := &Passage{ID: "1", Name: "Start", Title: Literal("Start")}
	got, err := p.RenderTitle(nil)
	require.NoError(t, err)
	assert.Equal(t, "Start", got)
	assert.Equal(t, "1 (Start)", p.String())
}

func TestRenderTitle_GoComputed(t *testing.T) {
	p := &Passage{ID: "1", Name: "Start"}
	p.Title = Computed(func(p *Passage, st *state.State) (string, error) {
		return p.Name + "!", nil
	})

	got, err := p.RenderTitle(state.New())
	require.NoError(t, err)
	assert.Equal(t, "Start!", got)
}
