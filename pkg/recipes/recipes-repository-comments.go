package recipes

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// AddComment stores a comment with a server-assigned timestamp. Blank text is
// rejected here as well as at the DTO boundary; a comment of pure whitespace
// is worthless no matter who validated it upstream.
func (rs *Store) AddComment(authorId, recipeId int64, data CommentData) (Comment, error) {

	var text = strings.TrimSpace(data.Comment)
	if text == "" {
		return Comment{}, ErrEmptyComment
	}

	var now = time.Now().UTC()
	result, err := rs.Connection.Exec(`
		INSERT INTO comments (user_id, recipe_id, comment_text, created_at) VALUES (?, ?, ?, ?)`,
		authorId, recipeId, text, now,
	)
	if err != nil {
		return Comment{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Comment{}, err
	}

	return Comment{Id: id, UserId: authorId, RecipeId: recipeId, Comment: text, Created: now}, nil
}

// GetRecipeComments returns the recipe's comments joined with their authors'
// usernames, newest first; id breaks creation time ties by insertion order.
func (rs *Store) GetRecipeComments(recipeId int64) ([]CommentResponse, error) {
	var comments = make([]CommentResponse, 0)
	rows, err := rs.Connection.Query(`
		SELECT c.id, u.username, c.user_id, c.comment_text, c.created_at
		FROM comments c JOIN users u ON c.user_id = u.id
		WHERE c.recipe_id = ?
		ORDER BY c.created_at DESC, c.id DESC`,
		recipeId,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var comment CommentResponse
		if err = rows.Scan(&comment.Id, &comment.Author, &comment.UserId, &comment.Comment, &comment.Created); err != nil {
			return comments, err
		}
		comments = append(comments, comment)
	}

	// always a collection, whether or not the recipe exists
	return comments, rows.Err()
}

func (rs *Store) GetComment(id int64) (comment Comment, err error) {
	if err = rs.Connection.QueryRow(`
		SELECT id, user_id, recipe_id, comment_text, created_at FROM comments WHERE id = ?`,
		id,
	).Scan(&comment.Id, &comment.UserId, &comment.RecipeId, &comment.Comment, &comment.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return comment, ErrNotFound
		}
		return comment, err
	}
	return comment, nil
}

// DeleteComment removes the row unconditionally; whether the requester may do
// so is the caller's check, against the fetched comment's author.
func (rs *Store) DeleteComment(id int64) error {
	result, err := rs.Connection.Exec(`DELETE FROM comments WHERE id = ?`, id)
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
