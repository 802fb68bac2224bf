package recipes

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ToggleFavorite alternates the (user, recipe) membership: an existing pair is
// removed, a missing one added. The composite primary key arbitrates races
// between identical concurrent requests; a duplicate insertion reports the
// pair as added rather than failing.
func (rs *Store) ToggleFavorite(userId, recipeId int64) (ToggleAction, error) {

	result, err := rs.Connection.Exec(
		`DELETE FROM favorites WHERE user_id = ? AND recipe_id = ?`,
		userId, recipeId,
	)
	if err != nil {
		return "", err
	}
	if deleted, err := result.RowsAffected(); err != nil {
		return "", err
	} else if deleted > 0 {
		return FavoriteRemoved, nil
	}

	_, err = rs.Connection.Exec(
		`INSERT INTO favorites (user_id, recipe_id) VALUES (?, ?)`,
		userId, recipeId,
	)

	// a concurrent identical request slipped in between; the pair exists
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return FavoriteAdded, nil
	}
	if err != nil {
		return "", err
	}
	return FavoriteAdded, nil
}

// GetUserFavorites returns every recipe the user has favorited, joined with
// the author's username, newest first.
func (rs *Store) GetUserFavorites(userId int64) ([]RecipeWithAuthor, error) {
	rows, err := rs.Connection.Query(`
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.category, r.tags, r.image, u.username
		FROM recipes r
		JOIN favorites f ON r.id = f.recipe_id
		JOIN users u ON r.user_id = u.id
		WHERE f.user_id = ?
		ORDER BY r.id DESC`,
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanRecipesWithAuthor(rows)
}

// GetFavoritesPage mirrors GetRecipesPage over the user's favorites.
func (rs *Store) GetFavoritesPage(userId int64, page, size int) ([]RecipeWithAuthor, bool, error) {
	rows, err := rs.Connection.Query(`
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.category, r.tags, r.image, u.username
		FROM recipes r
		JOIN favorites f ON r.id = f.recipe_id
		JOIN users u ON r.user_id = u.id
		WHERE f.user_id = ?
		ORDER BY r.id DESC
		LIMIT ? OFFSET ?`,
		userId, size+1, (page-1)*size,
	)
	if err != nil {
		return nil, false, err
	}
	defer closeRows(rows)

	favorites, err := scanRecipesWithAuthor(rows)
	if err != nil {
		return favorites, false, err
	}

	if len(favorites) > size {
		return favorites[:size], true, nil
	}
	return favorites, false, nil
}

// GetFavoriteIds returns the ids of the user's favorited recipes, so list
// views can flag entries without fetching full records.
func (rs *Store) GetFavoriteIds(userId int64) ([]int64, error) {
	var ids = make([]int64, 0)
	rows, err := rs.Connection.Query(`SELECT recipe_id FROM favorites WHERE user_id = ?`, userId)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (rs *Store) IsFavorite(userId, recipeId int64) (favorited bool) {
	// will return false in the absence of positive results
	err := rs.Connection.QueryRow(
		`SELECT TRUE FROM favorites WHERE user_id = ? AND recipe_id = ?`,
		userId, recipeId,
	).Scan(&favorited)
	return err == nil && favorited
}

// RemoveRecipeFavorites deletes every favorite row referencing the recipe;
// the deletion path calls it explicitly since the schema doesn't cascade.
func (rs *Store) RemoveRecipeFavorites(recipeId int64) error {
	_, err := rs.Connection.Exec(`DELETE FROM favorites WHERE recipe_id = ?`, recipeId)
	return err
}
