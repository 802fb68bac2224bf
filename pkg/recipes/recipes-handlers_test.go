package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nmerlini/sapore/pkg/auth"
	"github.com/nmerlini/sapore/pkg/nstring"
	"github.com/nmerlini/sapore/pkg/rest"
	"github.com/nmerlini/sapore/pkg/storage/images"
	"github.com/nmerlini/sapore/pkg/storage/sqlite"
	"github.com/nmerlini/sapore/pkg/users"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, images.Storage) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage, err := sqlite.New(logger, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	imageStore, err := images.New(logger, t.TempDir())
	require.NoError(t, err)

	engine, err := rest.New(rest.Config{Logger: logger})
	require.NoError(t, err)
	engine.Use(engine.RequestLogger())

	var sessions = auth.NewSessions("test secret", time.Hour)
	var usersRepository = users.NewRepository(storage.Connection)

	users.RegisterHandlers(engine, usersRepository, sessions)
	RegisterHandlers(engine, NewStore(storage.Connection), usersRepository, sessions, imageStore)

	server := httptest.NewServer(engine.Handler())
	t.Cleanup(server.Close)
	return server, imageStore
}

// newClient builds an HTTP client with its own cookie jar, standing in for a
// distinct browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	response, err := client.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return response
}

type credentials struct {
	Username string
	Password string
}

func signUp(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()
	response := postJSON(t, client, baseURL+"/register", credentials{username, password})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	_ = response.Body.Close()

	response = postJSON(t, client, baseURL+"/login", credentials{username, password})
	require.Equal(t, http.StatusOK, response.StatusCode)
	_ = response.Body.Close()
}

func recipeForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

// recipeFormWithImage builds a valid recipe form carrying an attached image
// file under the given field name.
func recipeFormWithImage(t *testing.T, field, filename string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range map[string]string{
		"title":        "Soup",
		"ingredients":  "water, vegetables",
		"instructions": "boil everything",
		"category":     "Dinner",
	} {
		require.NoError(t, writer.WriteField(name, value))
	}

	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func postTestRecipe(t *testing.T, client *http.Client, baseURL, title, category string) int64 {
	t.Helper()
	body, contentType := recipeForm(t, map[string]string{
		"title":        title,
		"ingredients":  "water, vegetables",
		"instructions": "boil everything",
		"category":     category,
	})
	response, err := client.Post(baseURL+"/add_recipe", contentType, body)
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()
	require.Equal(t, http.StatusCreated, response.StatusCode)

	var created struct{ Id int64 }
	require.NoError(t, json.NewDecoder(response.Body).Decode(&created))
	require.NotZero(t, created.Id)
	return created.Id
}

func decodeBody(t *testing.T, response *http.Response, target any) {
	t.Helper()
	defer func() { _ = response.Body.Close() }()
	require.NoError(t, json.NewDecoder(response.Body).Decode(target))
}

func TestAnonymousRequestsAreRejected(t *testing.T) {
	server, _ := newTestServer(t)
	client := newClient(t)

	response, err := client.Get(server.URL + "/recipes")
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestRecipeSharingScenario(t *testing.T) {
	server, _ := newTestServer(t)

	// alice registers, signs in and posts a recipe
	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")
	soupId := postTestRecipe(t, alice, server.URL, "Soup", "Dinner")

	// the listing's first page carries the new recipe, attributed to alice
	response, err := alice.Get(server.URL + "/recipes?page=1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var listing struct {
		Recipes []struct {
			Id     int64
			Title  string
			Author string
		}
		Page    int
		HasNext bool
	}
	decodeBody(t, response, &listing)
	require.Len(t, listing.Recipes, 1)
	assert.Equal(t, "Soup", listing.Recipes[0].Title)
	assert.Equal(t, "alice", listing.Recipes[0].Author)
	assert.Equal(t, 1, listing.Page)

	// favoriting reports the addition and shows up in alice's favorites
	response = postJSON(t, alice, fmt.Sprintf("%s/favorite/%d", server.URL, soupId), struct{}{})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var toggle struct {
		Success bool   `json:"success"`
		Action  string `json:"action"`
		Message string `json:"message"`
	}
	decodeBody(t, response, &toggle)
	assert.True(t, toggle.Success)
	assert.Equal(t, "added", toggle.Action)

	response, err = alice.Get(server.URL + "/favorites")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var favorites struct {
		Favorites []struct{ Title string }
	}
	decodeBody(t, response, &favorites)
	require.Len(t, favorites.Favorites, 1)
	assert.Equal(t, "Soup", favorites.Favorites[0].Title)

	// bob can't edit what alice owns
	bob := newClient(t)
	signUp(t, bob, server.URL, "bob", "password two")

	body, contentType := recipeForm(t, map[string]string{
		"title":        "Stolen Soup",
		"ingredients":  "water",
		"instructions": "boil",
		"category":     "Dinner",
	})
	response, err = bob.Post(fmt.Sprintf("%s/edit_recipe/%d", server.URL, soupId), contentType, body)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusForbidden, response.StatusCode)
}

func TestCommentAuthorization(t *testing.T) {
	server, _ := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")
	soupId := postTestRecipe(t, alice, server.URL, "Soup", "Dinner")

	// alice comments on her own recipe
	response := postJSON(t, alice, fmt.Sprintf("%s/add_comment/%d", server.URL, soupId),
		map[string]string{"Comment": "turned out great"})
	require.Equal(t, http.StatusCreated, response.StatusCode)

	var commented struct {
		Comments []struct{ Id int64 }
	}
	decodeBody(t, response, &commented)
	require.Len(t, commented.Comments, 1)
	commentId := commented.Comments[0].Id

	// bob may not delete alice's comment
	bob := newClient(t)
	signUp(t, bob, server.URL, "bob", "password two")

	response = postJSON(t, bob, fmt.Sprintf("%s/delete_comment/%d", server.URL, commentId), struct{}{})
	_ = response.Body.Close()
	assert.Equal(t, http.StatusForbidden, response.StatusCode)

	// its author may
	response = postJSON(t, alice, fmt.Sprintf("%s/delete_comment/%d", server.URL, commentId), struct{}{})
	require.Equal(t, http.StatusOK, response.StatusCode)

	var deleted struct {
		Comments []struct{ Id int64 }
	}
	decodeBody(t, response, &deleted)
	assert.Empty(t, deleted.Comments)
}

func TestShareRouteIsPublic(t *testing.T) {
	server, _ := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")
	soupId := postTestRecipe(t, alice, server.URL, "Soup", "Dinner")

	anonymous := newClient(t)
	response, err := anonymous.Get(fmt.Sprintf("%s/recipe/%d/share", server.URL, soupId))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var shared struct {
		Recipe   struct{ Title string }
		ShareUrl string
	}
	decodeBody(t, response, &shared)
	assert.Equal(t, "Soup", shared.Recipe.Title)
	assert.Equal(t, fmt.Sprintf("/recipe/%d/share", soupId), shared.ShareUrl)
}

func TestDeleteRecipeCleansFavorites(t *testing.T) {
	server, _ := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")
	soupId := postTestRecipe(t, alice, server.URL, "Soup", "Dinner")

	response := postJSON(t, alice, fmt.Sprintf("%s/favorite/%d", server.URL, soupId), struct{}{})
	require.Equal(t, http.StatusOK, response.StatusCode)
	_ = response.Body.Close()

	response = postJSON(t, alice, fmt.Sprintf("%s/delete_recipe/%d", server.URL, soupId), struct{}{})
	require.Equal(t, http.StatusNoContent, response.StatusCode)
	_ = response.Body.Close()

	// the recipe is gone, and so is its favorite row
	response, err := alice.Get(fmt.Sprintf("%s/recipe/%d", server.URL, soupId))
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	response, err = alice.Get(server.URL + "/favorites")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var favorites struct {
		Favorites []struct{ Id int64 }
	}
	decodeBody(t, response, &favorites)
	assert.Empty(t, favorites.Favorites)
}

func TestAddRecipeRejectsDisallowedImageFormat(t *testing.T) {
	server, imageStore := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")

	body, contentType := recipeFormWithImage(t, "image", "payload.exe", []byte("not an image"))
	response, err := alice.Post(server.URL+"/add_recipe", contentType, body)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)

	// nothing reached the uploads directory
	_, err = os.Stat(filepath.Join(imageStore.Path, "payload.exe"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAddRecipeRejectsOversizedImage(t *testing.T) {
	server, _ := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")

	// one byte over the 5MB cap
	body, contentType := recipeFormWithImage(t, "image", "huge.png", make([]byte, (5<<20)+1))
	response, err := alice.Post(server.URL+"/add_recipe", contentType, body)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestDeleteRecipeRemovesStoredImage(t *testing.T) {
	server, imageStore := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")

	body, contentType := recipeFormWithImage(t, "image", "soup.png", []byte("image bytes"))
	response, err := alice.Post(server.URL+"/add_recipe", contentType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	var created struct {
		Id    int64
		Image nstring.NString
	}
	decodeBody(t, response, &created)
	require.True(t, created.Image.Valid())

	var stored = filepath.Join(imageStore.Path, created.Image.String())
	_, err = os.Stat(stored)
	require.NoError(t, err)

	response = postJSON(t, alice, fmt.Sprintf("%s/delete_recipe/%d", server.URL, created.Id), struct{}{})
	require.Equal(t, http.StatusNoContent, response.StatusCode)
	_ = response.Body.Close()

	_, err = os.Stat(stored)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSearchSuggestionsArePublicAndCapped(t *testing.T) {
	server, _ := newTestServer(t)

	alice := newClient(t)
	signUp(t, alice, server.URL, "alice", "password one")
	for i := 0; i < 7; i++ {
		postTestRecipe(t, alice, server.URL, fmt.Sprintf("Chili %d", i), "Dinner")
	}

	anonymous := newClient(t)
	response, err := anonymous.Get(server.URL + "/search_suggestions?q=chili")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var suggestions []struct {
		Id    int64
		Title string
	}
	decodeBody(t, response, &suggestions)
	assert.Len(t, suggestions, 5)
}
