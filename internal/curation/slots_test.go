package curation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/models"
)

func TestRegistrySetAndGet(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	a := seedArticle(t, db, "Slot Test A", models.ArticleStatusPublished, time.Now())

	require.NoError(t, registry.Set(ctx(), models.SlotMain, a))

	state, err := registry.Get(ctx())
	require.NoError(t, err)
	require.NotNil(t, state.Main)
	assert.Equal(t, a, state.Main.ID)
	assert.Nil(t, state.Second)
}

func TestRegistrySetRejectsUnpublished(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	draft := seedArticle(t, db, "Slot Draft", models.ArticleStatusDraft, time.Time{})

	err := registry.Set(ctx(), models.SlotMain, draft)
	require.ErrorIs(t, err, ErrNotFound)

	err = registry.Set(ctx(), models.SlotMain, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrySetValidation(t *testing.T) {
	_, registry, _, _, _ := testEngine(t)

	require.ErrorIs(t, registry.Set(ctx(), models.Slot("hero"), uuid.New()), ErrValidation)
	require.ErrorIs(t, registry.Set(ctx(), models.SlotMain, uuid.Nil), ErrValidation)
	require.ErrorIs(t, registry.Remove(ctx(), models.Slot("hero")), ErrValidation)
}

func TestRegistryMutualExclusion(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	a := seedArticle(t, db, "Exclusive", models.ArticleStatusPublished, time.Now())

	require.NoError(t, registry.Set(ctx(), models.SlotMain, a))
	require.NoError(t, registry.Set(ctx(), models.SlotSecond, a))

	// The article must occupy exactly one slot, never both.
	state, err := registry.Get(ctx())
	require.NoError(t, err)
	assert.Nil(t, state.Main)
	require.NotNil(t, state.Second)
	assert.Equal(t, a, state.Second.ID)
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	a := seedArticle(t, db, "Removable", models.ArticleStatusPublished, time.Now())

	require.NoError(t, registry.Set(ctx(), models.SlotMain, a))
	require.NoError(t, registry.Remove(ctx(), models.SlotMain))
	// Clearing an already-empty slot is a no-op success.
	require.NoError(t, registry.Remove(ctx(), models.SlotMain))

	state, err := registry.Get(ctx())
	require.NoError(t, err)
	assert.Nil(t, state.Main)
}

func TestRegistrySwapIsSelfInverse(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	a := seedArticle(t, db, "Swap A", models.ArticleStatusPublished, time.Now())
	b := seedArticle(t, db, "Swap B", models.ArticleStatusPublished, time.Now())

	require.NoError(t, registry.Set(ctx(), models.SlotMain, a))
	require.NoError(t, registry.Set(ctx(), models.SlotSecond, b))

	require.NoError(t, registry.Swap(ctx()))
	state, err := registry.Get(ctx())
	require.NoError(t, err)
	assert.Equal(t, b, state.Main.ID)
	assert.Equal(t, a, state.Second.ID)

	// Applying swap twice restores the original configuration.
	require.NoError(t, registry.Swap(ctx()))
	state, err = registry.Get(ctx())
	require.NoError(t, err)
	assert.Equal(t, a, state.Main.ID)
	assert.Equal(t, b, state.Second.ID)
}

func TestRegistrySwapWithEmptySlot(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	a := seedArticle(t, db, "Swap Lone", models.ArticleStatusPublished, time.Now())

	require.NoError(t, registry.Set(ctx(), models.SlotMain, a))
	require.NoError(t, registry.Swap(ctx()))

	state, err := registry.Get(ctx())
	require.NoError(t, err)
	assert.Nil(t, state.Main)
	require.NotNil(t, state.Second)
	assert.Equal(t, a, state.Second.ID)
}

func TestRegistryGetHidesUnpublishedOccupant(t *testing.T) {
	db, registry, _, _, _ := testEngine(t)
	a := seedArticle(t, db, "Soon Unpublished", models.ArticleStatusPublished, time.Now())

	require.NoError(t, registry.Set(ctx(), models.SlotMain, a))

	// Flip the status behind the registry's back; the read must not
	// surface a non-published occupant.
	_, err := db.Exec(`UPDATE articles SET status = 'draft' WHERE id = $1`, a)
	require.NoError(t, err)

	state, err := registry.Get(ctx())
	require.NoError(t, err)
	assert.Nil(t, state.Main)
}
