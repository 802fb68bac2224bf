package recipes

import (
	"io"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nmerlini/sapore/pkg/nstring"
	"github.com/nmerlini/sapore/pkg/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage, err := sqlite.New(logger, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	return NewStore(storage.Connection)
}

// addTestUser inserts an account directly, skipping the expensive key
// derivation that repository level registration would perform.
func addTestUser(t *testing.T, store *Store, username string) int64 {
	t.Helper()
	result, err := store.Connection.Exec(
		"INSERT INTO users(username, password) VALUES(?, ?)", username, "irrelevant-hash")
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func addTestRecipe(t *testing.T, store *Store, ownerId int64, title, category, tags string) int64 {
	t.Helper()
	id, err := store.AddRecipe(ownerId, RecipeData{
		Title:        title,
		Ingredients:  "flour, water",
		Instructions: "mix and cook",
		Category:     category,
		Tags:         tags,
	}, nstring.Null())
	require.NoError(t, err)
	return id
}
