package passage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetByIDAndTitle(t *testing.T) {
	repo, err := Load([]RawRecord{
		{ID: "1", Name: "Start", Source: "Begin."},
		{ID: "3", Name: "Forest", Source: "Trees."},
	})
	require.NoError(t, err)

	byID, ok := repo.Get("3")
	require.True(t, ok)
	byTitle, ok := repo.Get("Forest")
	require.True(t, ok)
	assert.Same(t, byID, byTitle)

	_, ok = repo.Get("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, 2, repo.Len())
}

func TestRepository_IDWinsOverTitle(t *testing.T) {
	repo := NewRepository(
		&Passage{ID: "2", Name: "a", Title: Literal("1")},
		&Passage{ID: "1", Name: "b", Title: Literal("b")},
	)

	p, ok := repo.Get("1")
	require.True(t, ok)
	assert.Equal(t, "b", p.Name)
}

func TestRepository_TitleScanIsNFC(t *testing.T) {
	repo := NewRepository(&Passage{ID: "1", Name: "Caf\u00e9", Title: Literal("Caf\u00e9")})

	// Decomposed form: "e" followed by a combining acute accent.
	p, ok := repo.Get("Cafe\u0301")
	require.True(t, ok)
	assert.Equal(t, "1", p.ID)
}

func TestRepository_DuplicateIDLastWins(t *testing.T) {
	repo := NewRepository(
		&Passage{ID: "1", Name: "first", Title: Literal("first")},
		&Passage{ID: "1", Name: "second", Title: Literal("second")},
	)

	p, ok := repo.Get("1")
	require.True(t, ok)
	assert.Equal(t, "second", p.Name)
	assert.Equal(t, 1, repo.Len())
}

func TestRepository_AllInDocumentOrder(t *testing.T) {
	repo := NewRepository(
		&Passage{ID: "b", Title: Literal("B")},
		&Passage{ID: "a", Title: Literal("A")},
		&Passage{ID: "b", Title: Literal("B2")},
	)
	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "B2", all[0].DisplayTitle())
	assert.Equal(t, "a", all[1].ID)
}

func TestRepository_SharedTitleResolvesToFirstInDocument(t *testing.T) {
	repo := NewRepository(
		&Passage{ID: "10", Name: "late", Title: Literal("Cave")},
		&Passage{ID: "2", Name: "early", Title: Literal("Cave")},
	)

	p, ok := repo.Get("Cave")
	require.True(t, ok)
	assert.Equal(t, "10", p.ID)
}

func TestLoad_AbortsOnBadHeader(t *testing.T) {
	_, err := Load([]RawRecord{
		{ID: "1", Name: "ok", Source: "fine"},
		{ID: "2", Name: "bad", Source: "#!{ nope: }!#"},
	})
	assert.True(t, IsConfigParseError(err))
}
