package recipes

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nmerlini/sapore/pkg/nstring"
)

type Storer interface {
	AddRecipe(ownerId int64, data RecipeData, image nstring.NString) (int64, error)
	GetRecipe(id int64) (Recipe, error)
	GetRecipesPage(page, size int) ([]RecipeWithAuthor, bool, error)
	GetUserRecipes(ownerId int64) ([]RecipeWithAuthor, error)
	SearchRecipes(query string) ([]RecipeWithAuthor, error)
	SearchTitles(query string, limit int) ([]TitleSuggestion, error)
	GetRecipesByTag(fragment string) ([]RecipeWithAuthor, error)
	UpdateRecipe(id int64, data RecipeData, newImage nstring.NString) error
	DeleteRecipe(id int64) error

	ToggleFavorite(userId, recipeId int64) (ToggleAction, error)
	GetUserFavorites(userId int64) ([]RecipeWithAuthor, error)
	GetFavoritesPage(userId int64, page, size int) ([]RecipeWithAuthor, bool, error)
	GetFavoriteIds(userId int64) ([]int64, error)
	IsFavorite(userId, recipeId int64) bool
	RemoveRecipeFavorites(recipeId int64) error

	AddComment(authorId, recipeId int64, data CommentData) (Comment, error)
	GetRecipeComments(recipeId int64) ([]CommentResponse, error)
	GetComment(id int64) (Comment, error)
	DeleteComment(id int64) error
}

type Store struct {
	Connection *sql.DB
}

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyComment = errors.New("comment is empty")
)

func NewStore(connection *sql.DB) *Store {
	return &Store{connection}
}

func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}

// AddRecipe inserts a new recipe owned by the given user and returns its id.
// Field validation is the caller's precondition; the store writes what it gets.
func (rs *Store) AddRecipe(ownerId int64, data RecipeData, image nstring.NString) (int64, error) {
	result, err := rs.Connection.Exec(`
		INSERT INTO recipes(user_id, title, ingredients, instructions, category, tags, image)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		ownerId, data.Title, data.Ingredients, data.Instructions, data.Category, data.Tags, image,
	)
	if err != nil {
		return 0, fmt.Errorf("couldn't add recipe %q: %w", data.Title, err)
	}
	return result.LastInsertId()
}

func (rs *Store) GetRecipe(id int64) (recipe Recipe, err error) {
	if err = rs.Connection.QueryRow(`
		SELECT id, user_id, title, ingredients, instructions, category, tags, image
		FROM recipes WHERE id = ?`,
		id,
	).Scan(
		&recipe.Id,
		&recipe.UserId,
		&recipe.Title,
		&recipe.Ingredients,
		&recipe.Instructions,
		&recipe.Category,
		&recipe.Tags,
		&recipe.Image,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return recipe, ErrNotFound
		}
		return recipe, err
	}
	return recipe, nil
}

// GetRecipesPage returns one page of recipes joined with their authors'
// usernames, newest first. Descending ids track insertion order, which keeps
// pages stable while older entries shift. One extra row is fetched to signal
// whether a further page exists.
func (rs *Store) GetRecipesPage(page, size int) ([]RecipeWithAuthor, bool, error) {
	rows, err := rs.Connection.Query(`
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.category, r.tags, r.image, u.username
		FROM recipes r JOIN users u ON r.user_id = u.id
		ORDER BY r.id DESC
		LIMIT ? OFFSET ?`,
		size+1, (page-1)*size,
	)
	if err != nil {
		return nil, false, err
	}
	defer closeRows(rows)

	recipes, err := scanRecipesWithAuthor(rows)
	if err != nil {
		return recipes, false, err
	}

	if len(recipes) > size {
		return recipes[:size], true, nil
	}
	return recipes, false, nil
}

func (rs *Store) GetUserRecipes(ownerId int64) ([]RecipeWithAuthor, error) {
	rows, err := rs.Connection.Query(`
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.category, r.tags, r.image, u.username
		FROM recipes r JOIN users u ON r.user_id = u.id
		WHERE r.user_id = ?
		ORDER BY r.id DESC`,
		ownerId,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanRecipesWithAuthor(rows)
}

// SearchRecipes matches the query as a case-insensitive substring against
// titles, tags and categories, in three independent OR-ed clauses.
func (rs *Store) SearchRecipes(query string) ([]RecipeWithAuthor, error) {
	var pattern = likePattern(query)
	rows, err := rs.Connection.Query(`
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.category, r.tags, r.image, u.username
		FROM recipes r JOIN users u ON r.user_id = u.id
		WHERE LOWER(r.title) LIKE ? OR LOWER(r.tags) LIKE ? OR LOWER(r.category) LIKE ?
		ORDER BY r.id DESC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanRecipesWithAuthor(rows)
}

// SearchTitles provides short-form suggestions for incremental search boxes.
func (rs *Store) SearchTitles(query string, limit int) ([]TitleSuggestion, error) {
	var suggestions = make([]TitleSuggestion, 0, limit)
	rows, err := rs.Connection.Query(
		`SELECT id, title FROM recipes WHERE LOWER(title) LIKE ? ORDER BY id DESC LIMIT ?`,
		likePattern(query), limit,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var suggestion TitleSuggestion
		if err = rows.Scan(&suggestion.Id, &suggestion.Title); err != nil {
			return suggestions, err
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, rows.Err()
}

func (rs *Store) GetRecipesByTag(fragment string) ([]RecipeWithAuthor, error) {
	rows, err := rs.Connection.Query(`
		SELECT r.id, r.user_id, r.title, r.ingredients, r.instructions, r.category, r.tags, r.image, u.username
		FROM recipes r JOIN users u ON r.user_id = u.id
		WHERE LOWER(r.tags) LIKE ?
		ORDER BY r.id DESC`,
		likePattern(fragment),
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	return scanRecipesWithAuthor(rows)
}

// UpdateRecipe overwrites the five text fields, while the image reference is
// replaced only when a new one is supplied; COALESCE leaves the stored value
// untouched on null.
func (rs *Store) UpdateRecipe(id int64, data RecipeData, newImage nstring.NString) error {
	result, err := rs.Connection.Exec(`
		UPDATE recipes SET
			title = ?,
			ingredients = ?,
			instructions = ?,
			category = ?,
			tags = ?,
			image = COALESCE(?, image)
		WHERE id = ?`,
		data.Title, data.Ingredients, data.Instructions, data.Category, data.Tags, newImage, id,
	)
	if err != nil {
		return err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecipe removes the recipe row and nothing else: dependent favorite
// rows and the stored image file are the caller's explicit responsibility.
func (rs *Store) DeleteRecipe(id int64) error {
	result, err := rs.Connection.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func likePattern(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}

func scanRecipesWithAuthor(rows *sql.Rows) ([]RecipeWithAuthor, error) {
	// initialise an empty slice to avoid null serialisation
	var recipes = make([]RecipeWithAuthor, 0, 8)
	for rows.Next() {
		var recipe RecipeWithAuthor
		if err := rows.Scan(
			&recipe.Id,
			&recipe.UserId,
			&recipe.Title,
			&recipe.Ingredients,
			&recipe.Instructions,
			&recipe.Category,
			&recipe.Tags,
			&recipe.Image,
			&recipe.Author,
		); err != nil {
			return recipes, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}
