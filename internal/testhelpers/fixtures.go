package testhelpers

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "correct-horse-battery"

// CreateUser inserts a user whose email derives from the username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		Role:         models.RoleUser,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create fixture user %q: %v", username, err)
	}
	return &user
}

// CreateAdmin inserts a user holding the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := CreateUser(t, db, username)
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote fixture user %q: %v", username, err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTag inserts a tag whose slug derives from the name.
func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := models.Tag{Name: name, Slug: name, Color: "#49B64E"}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create fixture tag %q: %v", name, err)
	}
	return &tag
}

// CreateIngredient inserts a catalog ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create fixture ingredient %q: %v", name, err)
	}
	return &ingredient
}

// IngredientPortion pairs a catalog ingredient with a per-recipe amount
// for CreateRecipe.
type IngredientPortion struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with one tag join per tag and one
// ingredient join per portion.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, portions []IngredientPortion) *models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		Name:        name,
		Text:        "Fixture instructions for " + name,
		CookingTime: 30,
		ImageURL:    "/media/recipes/" + name + ".jpg",
		AuthorID:    author.ID,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create fixture recipe %q: %v", name, err)
	}

	for _, tag := range tags {
		join := models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}
		if err := db.Create(&join).Error; err != nil {
			t.Fatalf("failed to tag fixture recipe %q: %v", name, err)
		}
	}
	for _, p := range portions {
		join := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: p.Ingredient.ID,
			Amount:       p.Amount,
		}
		if err := db.Create(&join).Error; err != nil {
			t.Fatalf("failed to add ingredient to fixture recipe %q: %v", name, err)
		}
	}
	return &recipe
}

// AddToCart inserts a cart row directly.
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()

	cart := models.Cart{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.Create(&cart).Error; err != nil {
		t.Fatalf("failed to add fixture cart row: %v", err)
	}
}
