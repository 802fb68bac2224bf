package recipes

import (
	"errors"
	"net/http"

	"github.com/nmerlini/sapore/pkg/auth"
	JSON "github.com/nmerlini/sapore/pkg/json-utilities"
	"github.com/nmerlini/sapore/pkg/rest"
)

// addComment handles the POST "/add_comment/:id" route; any authenticated
// user may comment. The refreshed comment list ships with the response, so
// clients can redraw the fragment without a second request.
func addComment(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		recipeId, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		data, err := JSON.DecodeValidate[CommentData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if _, err = store.GetRecipe(recipeId); errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Recipe not found")
			return
		} else if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch commented recipe")
			JSON.InternalServerError(writer)
			return
		}

		if _, err = store.AddComment(auth.MustGetUserId(request), recipeId, data); err != nil {
			if errors.Is(err, ErrEmptyComment) {
				JSON.BadRequestWithMessage(writer, "Comment cannot be empty")
				return
			}
			rest.Logger(request).WithError(err).Error("couldn't add comment")
			JSON.InternalServerError(writer)
			return
		}

		comments, err := store.GetRecipeComments(recipeId)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch refreshed comments")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Created(writer, struct {
			Success  bool `json:"success"`
			Comments []CommentResponse
			Message  string
		}{true, comments, "Comment added successfully!"})
	}
}

// deleteComment handles the POST "/delete_comment/:id" route; authors only.
func deleteComment(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		comment, err := store.GetComment(id)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Comment not found")
			return
		}
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch comment for deletion")
			JSON.InternalServerError(writer)
			return
		}

		if !comment.AuthoredBy(auth.MustGetUserId(request)) {
			JSON.Forbidden(writer)
			return
		}

		if err = store.DeleteComment(id); err != nil {
			rest.Logger(request).WithError(err).Error("couldn't delete comment")
			JSON.InternalServerError(writer)
			return
		}

		comments, err := store.GetRecipeComments(comment.RecipeId)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch refreshed comments")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Success  bool `json:"success"`
			Comments []CommentResponse
			Message  string
		}{true, comments, "Comment deleted"})
	}
}
