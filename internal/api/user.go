package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/types"
)

// UserHandler serves registration, profiles and the follow relation.
type UserHandler struct {
	userService  *service.UserService
	authService  service.IAuthService
	imageService service.IImageService
}

func NewUserHandler(userService *service.UserService, authService service.IAuthService, imageService service.IImageService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		authService:  authService,
		imageService: imageService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.POST("", h.Register)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.PATCH("/me", middleware.AuthMiddleware(h.authService), h.UpdateMe)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

// Register creates a new account.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservedUsername):
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"username": []string{"this username is reserved"}}})
		case errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"password": []string{"password must not contain the username"}}})
		case errors.Is(err, service.ErrAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "a user with this email or username already exists"})
		default:
			log.Printf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user, false))
}

// ListUsers pages through accounts; search matches usernames.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), c.Query("search"), parsePage(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	callerID, authenticated := currentUserID(c)
	results := make([]UserResponse, 0, len(users))
	for i := range users {
		subscribed := false
		if authenticated {
			subscribed, _ = h.userService.IsSubscribed(c.Request.Context(), callerID, users[i].ID)
		}
		results = append(results, toUserResponse(&users[i], subscribed))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetUser returns a single profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	subscribed := false
	if callerID, ok := currentUserID(c); ok {
		subscribed, _ = h.userService.IsSubscribed(c.Request.Context(), callerID, id)
	}

	c.JSON(http.StatusOK, toUserResponse(user, subscribed))
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := currentUserID(c)
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user, false))
}

// UpdateMe applies a partial profile update. An avatar submitted as a
// base64 data URI is stored first and replaced by its URL.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	upd := service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Avatar != nil {
		avatarURL := *req.Avatar
		if service.IsDataURI(avatarURL) {
			stored, err := h.imageService.StoreBase64(c.Request.Context(), avatarURL, "avatars")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid avatar image"})
				return
			}
			avatarURL = stored
		}
		upd.AvatarURL = &avatarURL
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, upd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user, false))
}

// SetPassword changes the caller's password and revokes the token that
// made the request.
func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	err := h.userService.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"current_password": []string{"wrong password"}}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	if v, exists := c.Get("claims"); exists {
		if claims, ok := v.(*types.TokenClaims); ok {
			if err := h.authService.BlacklistToken(c.Request.Context(), claims); err != nil {
				log.Printf("failed to revoke token after password change: %v", err)
			}
		}
	}

	c.Status(http.StatusNoContent)
}

// Subscribe follows the author and returns their profile with a recipe
// preview, like a subscriptions listing entry.
func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID, _ := currentUserID(c)

	author, err := h.userService.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot subscribe to yourself"})
		case errors.Is(err, service.ErrAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "already subscribed"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		}
		return
	}

	resp, err := h.subscriptionEntry(c, author, recipesLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Unsubscribe removes the follow.
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID, _ := currentUserID(c)

	if err := h.userService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not subscribed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unsubscribe"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows, each with a recipe
// preview capped by recipes_limit.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := currentUserID(c)

	authors, err := h.userService.Subscriptions(c.Request.Context(), userID, parsePage(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list subscriptions"})
		return
	}

	limit := recipesLimit(c)
	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		entry, err := h.subscriptionEntry(c, &authors[i], limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list subscriptions"})
			return
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *UserHandler) subscriptionEntry(c *gin.Context, author *models.User, limit int) (SubscriptionResponse, error) {
	recipes, count, err := h.userService.AuthorRecipes(c.Request.Context(), author.ID, limit)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	preview := make([]CompactRecipe, 0, len(recipes))
	for i := range recipes {
		preview = append(preview, toCompactRecipe(&recipes[i]))
	}

	return SubscriptionResponse{
		UserResponse: toUserResponse(author, true),
		Recipes:      preview,
		RecipesCount: count,
	}, nil
}

// recipesLimit caps the per-author recipe preview; 0 means no cap.
func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
