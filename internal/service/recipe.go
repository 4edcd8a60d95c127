package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// RecipeService handles recipe writes, listing and the favorite/cart
// relations.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount references a catalog ingredient with its per-recipe
// quantity.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput is the validated write payload. Duplicate and bounds checks
// happen at the API boundary; this layer verifies the references exist.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageURL    string
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// CreateRecipe persists the recipe row plus one join row per tag and per
// (ingredient, amount) pair, all in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	recipe := models.Recipe{
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		ImageURL:    in.ImageURL,
		AuthorID:    authorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, in); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return createJoinRows(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces the scalar fields and both join sets wholesale:
// old join rows are deleted and recreated rather than diffed.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			return err
		}
		if err := checkReferences(tx, in); err != nil {
			return err
		}

		recipe.Name = in.Name
		recipe.Text = in.Text
		recipe.CookingTime = in.CookingTime
		if in.ImageURL != "" {
			recipe.ImageURL = in.ImageURL
		}
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createJoinRows(tx, id, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, id)
}

// DeleteRecipe removes the recipe and every row referencing it. The SQL
// schema cascades on its own; doing it explicitly keeps the sqlite test
// setup honest too.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			return err
		}

		for _, join := range []interface{}{
			&models.RecipeTag{}, &models.RecipeIngredient{},
			&models.Favorite{}, &models.Cart{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(join).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// GetRecipe loads a recipe with its author, tags and ingredient detail.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// RecipeFilter narrows a listing. FavoritedBy/InCartOf are only set for
// authenticated callers.
type RecipeFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
}

// ListRecipes pages recipes newest-first with the filter applied.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC")

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Distinct("recipes.*")
	}
	if filter.FavoritedBy != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *filter.FavoritedBy)
	}
	if filter.InCartOf != nil {
		query = query.
			Joins("JOIN carts ON carts.recipe_id = recipes.id").
			Where("carts.user_id = ?", *filter.InCartOf)
	}

	var recipes []models.Recipe
	if err := query.Offset(page.Offset()).Limit(page.Size()).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Favorite adds the (user, recipe) favorite row. Authors cannot favorite
// their own recipes; the check runs here on creation.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, err
	}
	if recipe.AuthorID == userID {
		return nil, ErrOwnRecipe
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &recipe, nil
}

// Unfavorite removes the favorite row, ErrRecordNotFound when absent.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddToCart adds the (user, recipe) cart row. Unlike favorites, users may
// put their own recipes in the cart.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, err
	}

	cart := models.Cart{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &recipe, nil
}

// RemoveFromCart removes the cart row, ErrRecordNotFound when absent.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Cart{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RelationFlags returns the subsets of recipeIDs the user has favorited
// and carted, for annotating list responses in two queries instead of 2n.
func (s *RecipeService) RelationFlags(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	favorited := make(map[uuid.UUID]bool)
	inCart := make(map[uuid.UUID]bool)
	if len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favs []models.Favorite
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&favs).Error; err != nil {
		return nil, nil, err
	}
	for _, f := range favs {
		favorited[f.RecipeID] = true
	}

	var carts []models.Cart
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&carts).Error; err != nil {
		return nil, nil, err
	}
	for _, c := range carts {
		inCart[c.RecipeID] = true
	}

	return favorited, inCart, nil
}

// checkReferences verifies every tag and ingredient the payload points at
// exists, so join-row creation cannot half-succeed.
func checkReferences(tx *gorm.DB, in RecipeInput) error {
	var tagCount int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", in.TagIDs).Count(&tagCount).Error; err != nil {
		return err
	}
	if int(tagCount) != len(in.TagIDs) {
		return fmt.Errorf("unknown tag reference: %w", gorm.ErrRecordNotFound)
	}

	ingredientIDs := make([]uuid.UUID, len(in.Ingredients))
	for i, ing := range in.Ingredients {
		ingredientIDs[i] = ing.IngredientID
	}
	var ingredientCount int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&ingredientCount).Error; err != nil {
		return err
	}
	if int(ingredientCount) != len(in.Ingredients) {
		return fmt.Errorf("unknown ingredient reference: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func createJoinRows(tx *gorm.DB, recipeID uuid.UUID, in RecipeInput) error {
	for _, tagID := range in.TagIDs {
		if err := tx.Create(&models.RecipeTag{RecipeID: recipeID, TagID: tagID}).Error; err != nil {
			return err
		}
	}
	for _, ing := range in.Ingredients {
		join := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ing.IngredientID,
			Amount:       ing.Amount,
		}
		if err := tx.Create(&join).Error; err != nil {
			return err
		}
	}
	return nil
}
