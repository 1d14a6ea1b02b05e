package engine

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyloom/internal/session"
	"github.com/roach88/storyloom/internal/state"
)

// playSession drives an engine into a non-trivial state: history with a
// placeholder, nested state and globals.
func playSession(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()

	startFresh(t, e)
	e.State().SetState(state.Map{"name": "Ada", "gold": 12.5, "bag": []any{"rope", map[string]any{"lamp": true}}})
	e.State().SetGlobals(state.Map{"volume": 0.25})
	require.NoError(t, e.Show(ctx, "2", map[string]any{"via": "link"}))
	require.NoError(t, e.ShowNoHistory(ctx, "3", nil))
	require.NoError(t, e.Show(ctx, "4", map[string]any{"choice": "left"}))
}

func TestSaveTryLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := session.NewMemoryStore()

	saver := New(newTestStory(t), WithStore(st))
	playSession(t, saver)
	require.NoError(t, saver.Save(ctx, "slot-a"))

	want, err := saver.Snapshot()
	require.NoError(t, err)

	loader := New(newTestStory(t), WithStore(st))
	ok, err := loader.TryLoad(ctx, "slot-a")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := loader.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.Globals, got.Globals)
	assert.Equal(t, want.History, got.History)
	assert.Equal(t, want.Meta, got.Meta)
	assert.Equal(t, "4", currentID(t, loader))
}

func TestSaveTryLoad_NumbersComeBackAsFloat64(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	startFresh(t, e)
	e.State().SetState(state.Map{"coins": 3})
	require.NoError(t, e.Save(ctx, "n"))

	ok, err := e.TryLoad(ctx, "n")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.Map{"coins": 3.0}, e.State().State())
}

func TestTryLoad_IntoRunningSessionRecordsDeparture(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	playSession(t, e)
	require.NoError(t, e.Save(ctx, "s"))
	saved := e.History()

	require.NoError(t, e.Show(ctx, "1", nil))

	ok, err := e.TryLoad(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)

	h := e.History()
	require.Len(t, h, len(saved)+1)
	assert.Equal(t, saved, h[:len(saved)])
	assert.Equal(t, "1", h[len(h)-1].Passage)
	assert.Equal(t, "4", currentID(t, e))
}

func TestTryLoad_Absent(t *testing.T) {
	e, _ := newTestEngine(t)
	startFresh(t, e)
	e.State().SetState(state.Map{"keep": "me"})

	ok, err := e.TryLoad(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, state.Map{"keep": "me"}, e.State().State())
}

func TestTryLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not a save"},
		{"truncated packing", "\u0550\u0230"},
		{"bad json", `{"state": `},
		{"missing passage", `{"state": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, st := newTestEngine(t)
			startFresh(t, e)
			e.State().SetState(state.Map{"keep": "me"})
			require.NoError(t, st.Put(ctx, session.Key(testStoryID, "bad"), tt.value))

			ok, err := e.TryLoad(ctx, "bad")
			assert.False(t, ok)
			require.Error(t, err)
			assert.True(t, IsCorruptSave(err))
			assert.ErrorIs(t, err, session.ErrCorrupt)
			assert.Equal(t, state.Map{"keep": "me"}, e.State().State())
			assert.Equal(t, "1", currentID(t, e))
		})
	}
}

func TestTryLoad_DanglingPassage(t *testing.T) {
	ctx := context.Background()
	e, st := newTestEngine(t)
	startFresh(t, e)

	raw, err := session.Encode(session.Record{PassageName: "gone", State: map[string]any{"x": "y"}})
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, session.Key(testStoryID, "old"), raw))

	ok, err := e.TryLoad(ctx, "old")
	assert.False(t, ok)
	assert.True(t, IsPassageNotFound(err))
	assert.Equal(t, state.Map{}, e.State().State(), "state untouched")
}

func TestSave_DefaultSlotAndListing(t *testing.T) {
	ctx := context.Background()
	e, st := newTestEngine(t)
	startFresh(t, e)

	require.NoError(t, e.Save(ctx, ""))
	require.NoError(t, e.Save(ctx, "zeta"))
	require.NoError(t, e.Save(ctx, "alpha"))

	_, ok, err := st.Get(ctx, session.Key(testStoryID, session.DefaultSlot))
	require.NoError(t, err)
	assert.True(t, ok)

	slots, err := e.Saves(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{session.DefaultSlot, "alpha", "zeta"}, slots)

	require.NoError(t, e.DeleteSave(ctx, "alpha"))
	require.NoError(t, e.DeleteSave(ctx, "never-saved"))
	slots, err = e.Saves(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{session.DefaultSlot, "zeta"}, slots)
}

func TestSave_RejectsNonJSONState(t *testing.T) {
	e, _ := newTestEngine(t)
	startFresh(t, e)
	e.State().SetState(state.Map{"fn": func() {}})

	err := e.Save(context.Background(), "s")
	assert.Error(t, err)
}

func TestSave_BeforeShow(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.Save(context.Background(), "s")
	assert.ErrorIs(t, err, ErrNoPassageLoaded)
}

func TestSave_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	startFresh(t, e)

	require.NoError(t, e.Save(ctx, "s"))
	require.NoError(t, e.Show(ctx, "3", nil))
	require.NoError(t, e.Save(ctx, "s"))

	fresh := New(newTestStory(t), WithStore(e.store))
	ok, err := fresh.TryLoad(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", currentID(t, fresh))
}

func TestStart_RestoresDefaultSlot(t *testing.T) {
	ctx := context.Background()
	st := session.NewMemoryStore()

	first := New(newTestStory(t), WithStore(st))
	playSession(t, first)
	require.NoError(t, first.Save(ctx, ""))

	second := New(newTestStory(t), WithStore(st))
	var shown int
	second.Events().Shown.Subscribe(func(PassageShown) { shown++ })

	require.NoError(t, second.Start(ctx, nil))
	assert.Equal(t, "4", currentID(t, second))
	assert.Equal(t, 1, shown, "restore performs the only show")
	assert.Equal(t, "Ada", second.State().State()["name"])
}

func TestStart_SlotSelection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		query url.Values
		want  string
	}{
		{"default slot", url.Values{}, "4"},
		{"named slot", url.Values{"slot": {"named"}}, "2"},
		{"unknown slot", url.Values{"slot": {"missing"}}, "1"},
		{"empty slot", url.Values{"slot": {""}}, "1"},
		{"newgame", url.Values{"newgame": {""}}, "1"},
		{"newgame wins over slot", url.Values{"slot": {"named"}, "newgame": {"1"}}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := session.NewMemoryStore()
			seed := New(newTestStory(t), WithStore(st))
			startFresh(t, seed)
			require.NoError(t, seed.Show(ctx, "4", nil))
			require.NoError(t, seed.Save(ctx, session.DefaultSlot))
			require.NoError(t, seed.Show(ctx, "2", nil))
			require.NoError(t, seed.Save(ctx, "named"))

			e := New(newTestStory(t), WithStore(st))
			require.NoError(t, e.Start(ctx, tt.query))
			assert.Equal(t, tt.want, currentID(t, e))
		})
	}
}

func TestStart_CorruptDefaultFallsThrough(t *testing.T) {
	ctx := context.Background()
	e, st := newTestEngine(t)
	require.NoError(t, st.Put(ctx, session.Key(testStoryID, session.DefaultSlot), "@@@"))

	require.NoError(t, e.Start(ctx, nil))
	assert.Equal(t, "1", currentID(t, e))
	assert.Empty(t, e.History())
}

func TestRestore_ClonesRecord(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	rec := session.Record{
		State:       map[string]any{"n": map[string]any{"x": 1.0}},
		PassageName: "3",
		Globals:     map[string]any{"g": "v"},
		History:     []*session.Snapshot{snap("1", nil), nil},
	}
	require.NoError(t, e.Restore(ctx, rec))

	e.State().State()["n"].(map[string]any)["x"] = 2.0
	assert.Equal(t, 1.0, rec.State["n"].(map[string]any)["x"])
	assert.Equal(t, "3", currentID(t, e))
	assert.Len(t, e.History(), 2)
}
