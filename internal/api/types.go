package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/service"
)

// Request payloads.

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Password  string `json:"password" binding:"required,min=8"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
}

type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required,max=200"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time"`
	Image       string                    `json:"image"`
	Tags        []uuid.UUID               `json:"tags"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Slug  string `json:"slug" binding:"required,max=50"`
	Color string `json:"color" binding:"max=50"`
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// Response shapes.

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func toUserResponse(u *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.AvatarURL,
		IsSubscribed: isSubscribed,
	}
}

// CompactRecipe is the short form embedded in subscription listings and
// returned by favorite and cart toggles.
type CompactRecipe struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func toCompactRecipe(r *models.Recipe) CompactRecipe {
	return CompactRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

// SubscriptionResponse is an author profile annotated with a preview of
// their recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []CompactRecipe `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

type IngredientDetail struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID          `json:"id"`
	Tags             []models.Tag       `json:"tags"`
	Author           UserResponse       `json:"author"`
	Ingredients      []IngredientDetail `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	PubDate          time.Time          `json:"pub_date"`
}

// recipeViewContext carries the per-caller annotation state used when
// rendering recipe responses.
type recipeViewContext struct {
	favorited  map[uuid.UUID]bool
	inCart     map[uuid.UUID]bool
	subscribed map[uuid.UUID]bool
}

func toRecipeResponse(r *models.Recipe, view recipeViewContext) RecipeResponse {
	resp := RecipeResponse{
		ID:          r.ID,
		Tags:        make([]models.Tag, 0, len(r.Tags)),
		Ingredients: make([]IngredientDetail, 0, len(r.Ingredients)),
		Name:        r.Name,
		Image:       r.ImageURL,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		PubDate:     r.PubDate,
	}

	for _, rt := range r.Tags {
		if rt.Tag != nil {
			resp.Tags = append(resp.Tags, *rt.Tag)
		}
	}
	for _, ri := range r.Ingredients {
		detail := IngredientDetail{ID: ri.IngredientID, Amount: ri.Amount}
		if ri.Ingredient != nil {
			detail.Name = ri.Ingredient.Name
			detail.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, detail)
	}
	if r.Author != nil {
		resp.Author = toUserResponse(r.Author, view.subscribed[r.AuthorID])
	}

	resp.IsFavorited = view.favorited[r.ID]
	resp.IsInShoppingCart = view.inCart[r.ID]
	return resp
}

// parsePage reads the page/limit query parameters. Unset or malformed
// values fall back to service defaults.
func parsePage(c *gin.Context) service.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return service.Page{Number: page, Limit: limit}
}

// currentUserID returns the authenticated caller's ID, or false for
// anonymous requests.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func currentRole(c *gin.Context) string {
	role, _ := c.Get("role")
	s, _ := role.(string)
	return s
}
