package recipes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavoriteAlternates(t *testing.T) {
	store := newTestStore(t)
	alice := addTestUser(t, store, "alice")
	id := addTestRecipe(t, store, alice, "Soup", "Dinner", "")

	action, err := store.ToggleFavorite(alice, id)
	require.NoError(t, err)
	assert.Equal(t, FavoriteAdded, action)

	action, err = store.ToggleFavorite(alice, id)
	require.NoError(t, err)
	assert.Equal(t, FavoriteRemoved, action)
}

func TestOddToggleCountLeavesOneRow(t *testing.T) {
	store := newTestStore(t)
	alice := addTestUser(t, store, "alice")
	id := addTestRecipe(t, store, alice, "Soup", "Dinner", "")

	for i := 0; i < 5; i++ {
		_, err := store.ToggleFavorite(alice, id)
		require.NoError(t, err)
	}

	ids, err := store.GetFavoriteIds(alice)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ids)
	assert.True(t, store.IsFavorite(alice, id))
}

// The relation has no enforced referential integrity: toggling a pair that
// references nothing still alternates cleanly, matching declared-only keys.
func TestToggleNonexistentPair(t *testing.T) {
	store := newTestStore(t)

	action, err := store.ToggleFavorite(999, 888)
	require.NoError(t, err)
	assert.Equal(t, FavoriteAdded, action)

	action, err = store.ToggleFavorite(999, 888)
	require.NoError(t, err)
	assert.Equal(t, FavoriteRemoved, action)
}

func TestGetUserFavorites(t *testing.T) {
	store := newTestStore(t)
	alice := addTestUser(t, store, "alice")
	bob := addTestUser(t, store, "bob")

	soup := addTestRecipe(t, store, bob, "Soup", "Dinner", "")
	stew := addTestRecipe(t, store, bob, "Stew", "Dinner", "")
	addTestRecipe(t, store, bob, "Pie", "Dessert", "")

	for _, id := range []int64{soup, stew} {
		_, err := store.ToggleFavorite(alice, id)
		require.NoError(t, err)
	}

	favorites, err := store.GetUserFavorites(alice)
	require.NoError(t, err)
	require.Len(t, favorites, 2)

	// newest first, with the author's username joined in
	assert.Equal(t, stew, favorites[0].Id)
	assert.Equal(t, soup, favorites[1].Id)
	assert.Equal(t, "bob", favorites[0].Author)
}

func TestFavoritesPagination(t *testing.T) {
	store := newTestStore(t)
	alice := addTestUser(t, store, "alice")

	for i := 0; i < 9; i++ {
		id := addTestRecipe(t, store, alice, "Recipe", "Dinner", "")
		_, err := store.ToggleFavorite(alice, id)
		require.NoError(t, err)
	}

	firstPage, hasNext, err := store.GetFavoritesPage(alice, 1, 8)
	require.NoError(t, err)
	assert.Len(t, firstPage, 8)
	assert.True(t, hasNext)

	secondPage, hasNext, err := store.GetFavoritesPage(alice, 2, 8)
	require.NoError(t, err)
	assert.Len(t, secondPage, 1)
	assert.False(t, hasNext)
}
