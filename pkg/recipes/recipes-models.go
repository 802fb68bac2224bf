package recipes

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nmerlini/sapore/pkg/nstring"
)

type Recipe struct {
	Id           int64
	UserId       int64
	Title        string
	Ingredients  string
	Instructions string
	Category     string
	Tags         string
	Image        nstring.NString
}

// OwnedBy reports whether the given session-bound user may edit or delete the
// recipe; pure on purpose, so authorisation is testable without a database.
func (r Recipe) OwnedBy(userId int64) bool {
	return r.UserId == userId
}

// RecipeWithAuthor decorates listings with the owner's username.
type RecipeWithAuthor struct {
	Recipe
	Author string
}

type TitleSuggestion struct {
	Id    int64
	Title string
}

// notBlank rejects values that are empty once trimmed, which plain Required
// would let through.
var notBlank = validation.By(func(value interface{}) error {
	if text, ok := value.(string); !ok || strings.TrimSpace(text) == "" {
		return validation.ErrRequired
	}
	return nil
})

// RecipeData carries the five writable text fields; tags may stay empty.
type RecipeData struct {
	Title        string
	Ingredients  string
	Instructions string
	Category     string
	Tags         string
}

func (data RecipeData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Title, notBlank, validation.Length(0, 200)),
		validation.Field(&data.Ingredients, notBlank),
		validation.Field(&data.Instructions, notBlank),
		validation.Field(&data.Category, notBlank, validation.Length(0, 100)),
		validation.Field(&data.Tags, validation.Length(0, 500)),
	)
}

// Trimmed returns a copy with surrounding whitespace removed from every field,
// applied before validation so the store only ever receives clean values.
func (data RecipeData) Trimmed() RecipeData {
	return RecipeData{
		Title:        strings.TrimSpace(data.Title),
		Ingredients:  strings.TrimSpace(data.Ingredients),
		Instructions: strings.TrimSpace(data.Instructions),
		Category:     strings.TrimSpace(data.Category),
		Tags:         strings.TrimSpace(data.Tags),
	}
}

// Favorites

type ToggleAction string

const (
	FavoriteAdded   ToggleAction = "added"
	FavoriteRemoved ToggleAction = "removed"
)

// Comments

type Comment struct {
	Id       int64
	UserId   int64
	RecipeId int64
	Comment  string
	Created  time.Time
}

// AuthoredBy reports whether the given session-bound user may delete the comment.
func (c Comment) AuthoredBy(userId int64) bool {
	return c.UserId == userId
}

type CommentData struct {
	Comment string
}

func (data CommentData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Comment, notBlank, validation.Length(0, 3000)),
	)
}

type CommentResponse struct {
	Id      int64
	Author  string
	UserId  int64
	Comment string
	Created time.Time
}
