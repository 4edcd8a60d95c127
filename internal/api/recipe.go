package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/service"
)

// RecipeHandler serves recipe CRUD, the favorite and cart toggles, and
// the shopping list download.
type RecipeHandler struct {
	recipeService   *service.RecipeService
	shoppingService *service.ShoppingListService
	userService     *service.UserService
	authService     service.IAuthService
	imageService    service.IImageService
	rateLimiter     *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	shoppingService *service.ShoppingListService,
	userService *service.UserService,
	authService service.IAuthService,
	imageService service.IImageService,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		shoppingService: shoppingService,
		userService:     userService,
		authService:     authService,
		imageService:    imageService,
		rateLimiter:     rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.POST("", h.createChain()...)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromCart)
	}
}

// createChain guards creation with auth and, when Redis is wired, the
// per-user rate limit.
func (h *RecipeHandler) createChain() []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(h.authService)}
	if h.rateLimiter != nil {
		chain = append(chain, h.rateLimiter.RateLimitMiddleware())
	}
	return append(chain, h.CreateRecipe)
}

// ListRecipes pages recipes newest-first. Filters: author, tags (repeated
// slug), and for signed-in callers is_favorited and is_in_shopping_cart.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	callerID, authenticated := currentUserID(c)
	if authenticated {
		// Relation filters only mean something for a signed-in caller;
		// anonymous requests ignore them.
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = &callerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = &callerID
		}
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), filter, parsePage(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}

	view, err := h.buildViewContext(c, recipes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recipes"})
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, toRecipeResponse(&recipes[i], view))
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetRecipe returns the full recipe view.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	view, err := h.buildViewContext(c, []models.Recipe{*recipe})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recipe"})
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe, view))
}

// CreateRecipe validates the payload, stores the image and persists the
// recipe with its tag and ingredient joins.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := currentUserID(c)

	req, in, ok := h.bindRecipeRequest(c)
	if !ok {
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": []string{"this field is required"}}})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, in)
	if err != nil {
		h.writeRecipeError(c, err, "failed to create recipe")
		return
	}

	view, err := h.buildViewContext(c, []models.Recipe{*recipe})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create recipe"})
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(recipe, view))
}

// UpdateRecipe replaces a recipe. Only the author or an admin may write.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	existing, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	userID, _ := currentUserID(c)
	if !middleware.OwnerOrAdminWrite(c.Request.Method, userID, existing.AuthorID, currentRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can edit this recipe"})
		return
	}

	_, in, ok := h.bindRecipeRequest(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, in)
	if err != nil {
		h.writeRecipeError(c, err, "failed to update recipe")
		return
	}

	view, err := h.buildViewContext(c, []models.Recipe{*recipe})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update recipe"})
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe, view))
}

// DeleteRecipe removes a recipe and its relations. Author or admin only.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	existing, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	userID, _ := currentUserID(c)
	if !middleware.OwnerOrAdminWrite(c.Request.Method, userID, existing.AuthorID, currentRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can delete this recipe"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete recipe"})
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteRecipe marks the recipe as a favorite of the caller.
func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, _ := currentUserID(c)

	recipe, err := h.recipeService.Favorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOwnRecipe):
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot favorite your own recipe"})
		case errors.Is(err, service.ErrAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipe is already in favorites"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to favorite recipe"})
		}
		return
	}

	c.JSON(http.StatusCreated, toCompactRecipe(recipe))
}

// UnfavoriteRecipe removes the favorite mark.
func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, _ := currentUserID(c)

	if err := h.recipeService.Unfavorite(c.Request.Context(), userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe is not in favorites"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unfavorite recipe"})
		return
	}
	c.Status(http.StatusNoContent)
}

// AddToCart puts the recipe in the caller's shopping cart.
func (h *RecipeHandler) AddToCart(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, _ := currentUserID(c)

	recipe, err := h.recipeService.AddToCart(c.Request.Context(), userID, recipeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipe is already in the shopping cart"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add recipe to cart"})
		}
		return
	}

	c.JSON(http.StatusCreated, toCompactRecipe(recipe))
}

// RemoveFromCart takes the recipe out of the caller's cart.
func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, _ := currentUserID(c)

	if err := h.recipeService.RemoveFromCart(c.Request.Context(), userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe is not in the shopping cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove recipe from cart"})
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart aggregates the caller's cart into a shopping list
// and streams it as an attachment, plain text by default or PDF when
// format=pdf.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := currentUserID(c)

	items, err := h.shoppingService.Aggregate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build shopping list"})
		return
	}

	switch c.DefaultQuery("format", "txt") {
	case "txt":
		c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", h.shoppingService.RenderText(items))
	case "pdf":
		body, err := h.shoppingService.RenderPDF(items)
		if err != nil {
			log.Printf("pdf render failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render shopping list"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
		c.Data(http.StatusOK, "application/pdf", body)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format, use txt or pdf"})
	}
}

// bindRecipeRequest parses and validates a recipe write payload, storing
// an inline base64 image along the way. Writes the error response itself
// when ok is false.
func (h *RecipeHandler) bindRecipeRequest(c *gin.Context) (RecipeRequest, service.RecipeInput, bool) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return req, service.RecipeInput{}, false
	}
	if fields := validateRecipePayload(&req); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
		return req, service.RecipeInput{}, false
	}

	imageURL := req.Image
	if service.IsDataURI(imageURL) {
		stored, err := h.imageService.StoreBase64(c.Request.Context(), imageURL, "recipes")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"image": []string{"invalid image payload"}}})
			return req, service.RecipeInput{}, false
		}
		imageURL = stored
	}

	in := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
		TagIDs:      req.Tags,
	}
	for _, ing := range req.Ingredients {
		in.Ingredients = append(in.Ingredients, service.IngredientAmount{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}
	return req, in, true
}

// writeRecipeError maps service errors from recipe writes to responses.
func (h *RecipeHandler) writeRecipeError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v", err)})
		return
	}
	log.Printf("%s: %v", fallback, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// buildViewContext loads the per-caller favorite, cart and subscription
// flags for a batch of recipes.
func (h *RecipeHandler) buildViewContext(c *gin.Context, recipes []models.Recipe) (recipeViewContext, error) {
	view := recipeViewContext{
		favorited:  map[uuid.UUID]bool{},
		inCart:     map[uuid.UUID]bool{},
		subscribed: map[uuid.UUID]bool{},
	}

	callerID, authenticated := currentUserID(c)
	if !authenticated || len(recipes) == 0 {
		return view, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}
	favorited, inCart, err := h.recipeService.RelationFlags(c.Request.Context(), callerID, ids)
	if err != nil {
		return view, err
	}
	view.favorited = favorited
	view.inCart = inCart

	seenAuthors := map[uuid.UUID]bool{}
	for i := range recipes {
		authorID := recipes[i].AuthorID
		if seenAuthors[authorID] {
			continue
		}
		seenAuthors[authorID] = true
		subscribed, err := h.userService.IsSubscribed(c.Request.Context(), callerID, authorID)
		if err != nil {
			return view, err
		}
		view.subscribed[authorID] = subscribed
	}
	return view, nil
}
