package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/service"
)

// SetupAPI wires services and handlers onto the /api group. redisClient
// and s3Config may be nil; token revocation and the recipe rate limit are
// skipped without Redis, and images fall back to local media storage
// without S3.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config, cfg *config.Config) {
	root := router.Group("/api")
	{
		authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
		userService := service.NewUserService(db)
		catalogService := service.NewCatalogService(db)
		recipeService := service.NewRecipeService(db)
		shoppingService := service.NewShoppingListService(db)
		imageService := service.NewImageService(s3Config, cfg.MediaDir, cfg.MediaBaseURL)

		var rateLimiter *middleware.RateLimiter
		if redisClient != nil {
			rateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
		}

		authHandler := NewAuthHandler(authService)
		userHandler := NewUserHandler(userService, authService, imageService)
		catalogHandler := NewCatalogHandler(catalogService, authService)
		recipeHandler := NewRecipeHandler(recipeService, shoppingService, userService, authService, imageService, rateLimiter)

		authHandler.RegisterRoutes(root)
		userHandler.RegisterRoutes(root)
		catalogHandler.RegisterRoutes(root)
		recipeHandler.RegisterRoutes(root)
	}

	router.GET("/health", HealthCheck(db))
}

// HealthCheck reports process and database liveness.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
