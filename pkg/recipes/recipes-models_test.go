package recipes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ownership checks are pure functions over fetched entities, exercised here
// without a database.

func TestRecipeOwnership(t *testing.T) {
	var recipe = Recipe{Id: 1, UserId: 7}

	assert.True(t, recipe.OwnedBy(7))
	assert.False(t, recipe.OwnedBy(8))
	assert.False(t, recipe.OwnedBy(0))
}

func TestCommentAuthorship(t *testing.T) {
	var comment = Comment{Id: 1, UserId: 3, RecipeId: 9}

	assert.True(t, comment.AuthoredBy(3))
	assert.False(t, comment.AuthoredBy(4))
}

func TestRecipeDataValidation(t *testing.T) {
	var valid = RecipeData{
		Title:        "Soup",
		Ingredients:  "water",
		Instructions: "boil",
		Category:     "Dinner",
	}
	assert.NoError(t, valid.Validate())

	// required fields must survive trimming; whitespace alone won't do
	var blankTitle = valid
	blankTitle.Title = "   "
	assert.Error(t, blankTitle.Validate())

	var missingCategory = valid
	missingCategory.Category = ""
	assert.Error(t, missingCategory.Validate())

	// tags stay optional
	var tagless = valid
	tagless.Tags = ""
	assert.NoError(t, tagless.Validate())
}

func TestRecipeDataTrimming(t *testing.T) {
	var data = RecipeData{Title: "  Soup \n", Category: "\tDinner "}.Trimmed()
	assert.Equal(t, "Soup", data.Title)
	assert.Equal(t, "Dinner", data.Category)
}
