package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/testhelpers"
)

func TestCreateRecipe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	dinner := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")

	recipe, err := svc.CreateRecipe(ctx, author.ID, RecipeInput{
		Name:        "pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		ImageURL:    "/media/recipes/pancakes.jpg",
		TagIDs:      []uuid.UUID{dinner.ID},
		Ingredients: []IngredientAmount{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: milk.ID, Amount: 300},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "pancakes", recipe.Name)
	assert.Equal(t, author.ID, recipe.AuthorID)
	assert.False(t, recipe.PubDate.IsZero())
	require.NotNil(t, recipe.Author)
	assert.Equal(t, "author", recipe.Author.Username)

	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "dinner", recipe.Tags[0].Tag.Name)
	require.Len(t, recipe.Ingredients, 2)
}

func TestCreateRecipeUnknownReference(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	dinner := testhelpers.CreateTag(t, db, "dinner")

	_, err := svc.CreateRecipe(ctx, author.ID, RecipeInput{
		Name:        "pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		TagIDs:      []uuid.UUID{dinner.ID},
		Ingredients: []IngredientAmount{
			{IngredientID: uuid.New(), Amount: 200},
		},
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The failed transaction must not leave a recipe behind.
	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipeReplacesJoins(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	dinner := testhelpers.CreateTag(t, db, "dinner")
	lunch := testhelpers.CreateTag(t, db, "lunch")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")

	recipe := testhelpers.CreateRecipe(t, db, author, "cake",
		[]*models.Tag{dinner},
		[]testhelpers.IngredientPortion{{Ingredient: flour, Amount: 100}})

	updated, err := svc.UpdateRecipe(ctx, recipe.ID, RecipeInput{
		Name:        "better cake",
		Text:        "New instructions.",
		CookingTime: 45,
		TagIDs:      []uuid.UUID{lunch.ID},
		Ingredients: []IngredientAmount{
			{IngredientID: sugar.ID, Amount: 80},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "better cake", updated.Name)
	assert.Equal(t, 45, updated.CookingTime)
	// Image kept from the original because the update left it empty.
	assert.Equal(t, recipe.ImageURL, updated.ImageURL)

	require.Len(t, updated.Tags, 1)
	assert.Equal(t, lunch.ID, updated.Tags[0].TagID)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, sugar.ID, updated.Ingredients[0].IngredientID)
	assert.Equal(t, 80, updated.Ingredients[0].Amount)
}

func TestDeleteRecipeCascades(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	fan := testhelpers.CreateUser(t, db, "fan")
	dinner := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	recipe := testhelpers.CreateRecipe(t, db, author, "cake",
		[]*models.Tag{dinner},
		[]testhelpers.IngredientPortion{{Ingredient: flour, Amount: 100}})

	_, err := svc.Favorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(ctx, recipe.ID))

	for _, m := range []interface{}{
		&models.Recipe{}, &models.RecipeTag{}, &models.RecipeIngredient{},
		&models.Favorite{}, &models.Cart{},
	} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count, "%T rows should be gone", m)
	}
}

func TestFavoriteOwnRecipe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateUser(t, db, "author")
	recipe := testhelpers.CreateRecipe(t, db, author, "cake", nil, nil)

	_, err := svc.Favorite(context.Background(), author.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrOwnRecipe)
}

func TestFavoriteTwice(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	fan := testhelpers.CreateUser(t, db, "fan")
	recipe := testhelpers.CreateRecipe(t, db, author, "cake", nil, nil)

	_, err := svc.Favorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.Favorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddOwnRecipeToCart(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateUser(t, db, "author")
	recipe := testhelpers.CreateRecipe(t, db, author, "cake", nil, nil)

	// Unlike favorites, the author's own recipe may be carted.
	_, err := svc.AddToCart(context.Background(), author.ID, recipe.ID)
	assert.NoError(t, err)
}

func TestUnfavoriteMissing(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)

	author := testhelpers.CreateUser(t, db, "author")
	fan := testhelpers.CreateUser(t, db, "fan")
	recipe := testhelpers.CreateRecipe(t, db, author, "cake", nil, nil)

	err := svc.Unfavorite(context.Background(), fan.ID, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListRecipesFilters(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	fan := testhelpers.CreateUser(t, db, "fan")

	dinner := testhelpers.CreateTag(t, db, "dinner")
	lunch := testhelpers.CreateTag(t, db, "lunch")

	cake := testhelpers.CreateRecipe(t, db, alice, "cake", []*models.Tag{dinner}, nil)
	soup := testhelpers.CreateRecipe(t, db, bob, "soup", []*models.Tag{lunch}, nil)
	testhelpers.CreateRecipe(t, db, bob, "stew", []*models.Tag{dinner, lunch}, nil)

	_, err := svc.Favorite(ctx, fan.ID, cake.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, fan.ID, soup.ID)
	require.NoError(t, err)

	all, err := svc.ListRecipes(ctx, RecipeFilter{}, Page{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byAuthor, err := svc.ListRecipes(ctx, RecipeFilter{AuthorID: &bob.ID}, Page{})
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)

	// A recipe carrying both tags still appears once.
	byTags, err := svc.ListRecipes(ctx, RecipeFilter{TagSlugs: []string{"dinner", "lunch"}}, Page{})
	require.NoError(t, err)
	assert.Len(t, byTags, 3)

	favorites, err := svc.ListRecipes(ctx, RecipeFilter{FavoritedBy: &fan.ID}, Page{})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, cake.ID, favorites[0].ID)

	carted, err := svc.ListRecipes(ctx, RecipeFilter{InCartOf: &fan.ID}, Page{})
	require.NoError(t, err)
	require.Len(t, carted, 1)
	assert.Equal(t, soup.ID, carted[0].ID)
}

func TestRelationFlags(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRecipeService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	fan := testhelpers.CreateUser(t, db, "fan")

	cake := testhelpers.CreateRecipe(t, db, author, "cake", nil, nil)
	soup := testhelpers.CreateRecipe(t, db, author, "soup", nil, nil)

	_, err := svc.Favorite(ctx, fan.ID, cake.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, fan.ID, soup.ID)
	require.NoError(t, err)

	favorited, inCart, err := svc.RelationFlags(ctx, fan.ID, []uuid.UUID{cake.ID, soup.ID})
	require.NoError(t, err)
	assert.True(t, favorited[cake.ID])
	assert.False(t, favorited[soup.ID])
	assert.True(t, inCart[soup.ID])
	assert.False(t, inCart[cake.ID])
}
