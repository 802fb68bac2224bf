package recipes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nmerlini/sapore/pkg/auth"
	JSON "github.com/nmerlini/sapore/pkg/json-utilities"
	"github.com/nmerlini/sapore/pkg/nstring"
	"github.com/nmerlini/sapore/pkg/rest"
	"github.com/nmerlini/sapore/pkg/storage/images"
	"github.com/nmerlini/sapore/pkg/users"
)

const (
	pageSize = 8

	// uploaded images are capped at 5MB; the slack covers the text fields
	maxImageBytes  = 5 << 20
	maxRequestSize = maxImageBytes + (64 << 10)
)

var errImageTooLarge = errors.New("image exceeds the 5MB limit")

func RegisterHandlers(engine *rest.Engine, store Storer, ur users.UserRepository, sessions auth.Sessions, imageStore images.Storage) {
	var authenticated = auth.Auth(ur, sessions)

	engine.Post("/add_recipe", addRecipe(store, imageStore), authenticated)
	engine.Get("/recipes", getRecipes(store), authenticated)
	engine.Get("/recipe/:id", getRecipeDetail(store), authenticated)
	engine.Get("/recipe/:id/share", shareRecipe(store))
	engine.Post("/edit_recipe/:id", editRecipe(store, imageStore), authenticated)
	engine.Post("/delete_recipe/:id", deleteRecipe(store, imageStore), authenticated)
	engine.Get("/profile", getProfile(store, ur), authenticated)

	engine.Post("/favorite/:id", toggleFavorite(store), authenticated)
	engine.Get("/favorites", getFavorites(store), authenticated)

	engine.Get("/search", searchRecipes(store), authenticated)
	engine.Get("/search_suggestions", searchSuggestions(store))
	engine.Get("/tags/:tag", getRecipesByTag(store), authenticated)

	engine.Post("/add_comment/:id", addComment(store), authenticated)
	engine.Post("/delete_comment/:id", deleteComment(store), authenticated)
}

// parseRecipeForm decodes and validates the multipart recipe fields shared by
// the add and edit routes, with surrounding whitespace removed.
func parseRecipeForm(writer http.ResponseWriter, request *http.Request) (RecipeData, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxRequestSize)
	if err := request.ParseMultipartForm(maxRequestSize); err != nil {
		return RecipeData{}, fmt.Errorf("malformed or oversized form: %w", err)
	}

	var data = RecipeData{
		Title:        request.FormValue("title"),
		Ingredients:  request.FormValue("ingredients"),
		Instructions: request.FormValue("instructions"),
		Category:     request.FormValue("category"),
		Tags:         request.FormValue("tags"),
	}.Trimmed()

	return data, data.Validate()
}

// saveUploadedImage stores an optional image from the named form field and
// returns its reference; a missing file yields a null reference, not an error.
func saveUploadedImage(request *http.Request, field string, imageStore images.Storage) (nstring.NString, error) {
	file, header, err := request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nstring.Null(), nil
	}
	if err != nil {
		return nstring.Null(), err
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxImageBytes {
		return nstring.Null(), errImageTooLarge
	}

	name, err := imageStore.Save(header.Filename, file)
	if err != nil {
		return nstring.Null(), err
	}
	return nstring.New(name), nil
}

// addRecipe handles the POST "/add_recipe" route
func addRecipe(store Storer, imageStore images.Storage) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := parseRecipeForm(writer, request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		image, err := saveUploadedImage(request, "image", imageStore)
		if err != nil {
			JSON.BadRequestWithMessage(writer, fmt.Sprintf("Invalid image file: %v", err))
			return
		}

		id, err := store.AddRecipe(auth.MustGetUserId(request), data, image)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't add recipe")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Created(writer, struct {
			Id    int64
			Image nstring.NString
		}{id, image})
	}
}

// getRecipes handles the GET "/recipes?page=N" route, serving eight recipes
// per page, newest first, along with the requester's favorite flags.
func getRecipes(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var page = rest.GetPageParam(request)
		recipes, hasNext, err := store.GetRecipesPage(page, pageSize)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch recipes page")
			JSON.InternalServerError(writer)
			return
		}

		favoriteIds, err := store.GetFavoriteIds(auth.MustGetUserId(request))
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch favorite ids")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Recipes     []RecipeWithAuthor
			FavoriteIds []int64
			Page        int
			HasNext     bool
		}{recipes, favoriteIds, page, hasNext})
	}
}

// getRecipeDetail handles the GET "/recipe/:id" route
func getRecipeDetail(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		recipe, err := store.GetRecipe(id)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Recipe not found")
			return
		}
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch recipe")
			JSON.InternalServerError(writer)
			return
		}

		comments, err := store.GetRecipeComments(id)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch recipe comments")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Recipe    Recipe
			Comments  []CommentResponse
			Favorited bool
		}{recipe, comments, store.IsFavorite(auth.MustGetUserId(request), id)})
	}
}

// shareRecipe handles the public GET "/recipe/:id/share" route: a read-only
// view without viewer-specific flags, fit for anonymous visitors.
func shareRecipe(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		recipe, err := store.GetRecipe(id)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Recipe not found")
			return
		}
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch shared recipe")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Recipe   Recipe
			ShareUrl string
		}{recipe, fmt.Sprintf("/recipe/%d/share", id)})
	}
}

// editRecipe handles the POST "/edit_recipe/:id" route; owners only. The text
// fields are overwritten wholesale, the image only when a new one is uploaded.
func editRecipe(store Storer, imageStore images.Storage) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		recipe, err := store.GetRecipe(id)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Recipe not found")
			return
		}
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch recipe for edit")
			JSON.InternalServerError(writer)
			return
		}

		if !recipe.OwnedBy(auth.MustGetUserId(request)) {
			JSON.Forbidden(writer)
			return
		}

		data, err := parseRecipeForm(writer, request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		newImage, err := saveUploadedImage(request, "new_image", imageStore)
		if err != nil {
			JSON.BadRequestWithMessage(writer, fmt.Sprintf("Invalid image file: %v", err))
			return
		}

		if err = store.UpdateRecipe(id, data, newImage); err != nil {
			rest.Logger(request).WithError(err).Error("couldn't update recipe")
			JSON.InternalServerError(writer)
			return
		}
		JSON.NoContent(writer)
	}
}

// deleteRecipe handles the POST "/delete_recipe/:id" route; owners only.
// Favorite rows and the stored image don't cascade, so they're removed here.
func deleteRecipe(store Storer, imageStore images.Storage) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		recipe, err := store.GetRecipe(id)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "Recipe not found")
			return
		}
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch recipe for deletion")
			JSON.InternalServerError(writer)
			return
		}

		if !recipe.OwnedBy(auth.MustGetUserId(request)) {
			JSON.Forbidden(writer)
			return
		}

		if err = store.RemoveRecipeFavorites(id); err != nil {
			rest.Logger(request).WithError(err).Error("couldn't remove recipe favorites")
			JSON.InternalServerError(writer)
			return
		}

		if err = store.DeleteRecipe(id); err != nil {
			rest.Logger(request).WithError(err).Error("couldn't delete recipe")
			JSON.InternalServerError(writer)
			return
		}

		// file removal comes last; a leftover image is preferable to a
		// dangling reference on a half-failed deletion
		if recipe.Image.Valid() {
			if err = imageStore.Remove(recipe.Image.String()); err != nil {
				rest.Logger(request).WithError(err).Warning("couldn't remove recipe image")
			}
		}

		JSON.NoContent(writer)
	}
}

// getProfile handles the GET "/profile" route, returning the requester's own
// recipes alongside their favorites.
func getProfile(store Storer, ur users.UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var userId = auth.MustGetUserId(request)

		user, err := ur.GetUserById(userId)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch profile user")
			JSON.InternalServerError(writer)
			return
		}

		recipes, err := store.GetUserRecipes(userId)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch profile recipes")
			JSON.InternalServerError(writer)
			return
		}

		favorites, err := store.GetUserFavorites(userId)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch profile favorites")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Username  string
			Recipes   []RecipeWithAuthor
			Favorites []RecipeWithAuthor
		}{user.Username, recipes, favorites})
	}
}

// toggleFavorite handles the POST "/favorite/:id" route
func toggleFavorite(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		id, err := rest.GetIdParam(request, "id")
		if err != nil {
			JSON.BadRequest(writer)
			return
		}

		action, err := store.ToggleFavorite(auth.MustGetUserId(request), id)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't toggle favorite")
			JSON.InternalServerError(writer)
			return
		}

		var message = "Recipe added to favorites."
		if action == FavoriteRemoved {
			message = "Recipe removed from favorites."
		}

		JSON.Ok(writer, struct {
			Success bool         `json:"success"`
			Action  ToggleAction `json:"action"`
			Message string       `json:"message"`
		}{true, action, message})
	}
}

// getFavorites handles the GET "/favorites?page=N" route
func getFavorites(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var page = rest.GetPageParam(request)
		favorites, hasNext, err := store.GetFavoritesPage(auth.MustGetUserId(request), page, pageSize)
		if err != nil {
			rest.Logger(request).WithError(err).Error("couldn't fetch favorites page")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Favorites []RecipeWithAuthor
			Page      int
			HasNext   bool
		}{favorites, page, hasNext})
	}
}

// searchRecipes handles the GET "/search?query=Q" route
func searchRecipes(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var query = strings.TrimSpace(request.URL.Query().Get("query"))
		if query == "" {
			JSON.BadRequestWithMessage(writer, "Missing search query")
			return
		}

		results, err := store.SearchRecipes(query)
		if err != nil {
			rest.Logger(request).WithError(err).Error("recipe search failed")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Query   string
			Recipes []RecipeWithAuthor
		}{query, results})
	}
}

// searchSuggestions handles the public GET "/search_suggestions?q=Q" route,
// returning up to five title matches for incremental search.
func searchSuggestions(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var query = strings.TrimSpace(request.URL.Query().Get("q"))
		if query == "" {
			JSON.Ok(writer, []TitleSuggestion{})
			return
		}

		suggestions, err := store.SearchTitles(query, 5)
		if err != nil {
			rest.Logger(request).WithError(err).Error("title suggestions failed")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, suggestions)
	}
}

// getRecipesByTag handles the GET "/tags/:tag" route
func getRecipesByTag(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		var tag = rest.GetParam(request, "tag")
		results, err := store.GetRecipesByTag(tag)
		if err != nil {
			rest.Logger(request).WithError(err).Error("tag lookup failed")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, struct {
			Tag     string
			Recipes []RecipeWithAuthor
		}{tag, results})
	}
}
