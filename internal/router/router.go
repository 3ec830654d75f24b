package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
)

// Handlers bundles every resource handler the router mounts.
type Handlers struct {
	Auth       *api.AuthHandler
	User       *api.UserHandler
	Tag        *api.TagHandler
	Ingredient *api.IngredientHandler
	Recipe     *api.RecipeHandler
}

// SetupRouter configures the application routes. mutationLimiter may be nil
// when Redis is not available (tests, local runs without Redis).
func SetupRouter(
	handlers Handlers,
	authService middleware.TokenValidator,
	allowedOrigins []string,
	mutationLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	v1 := router.Group("/api/v1")

	handlers.Auth.RegisterRoutes(v1)

	// Catalog and recipe reads are public; a valid token still enriches
	// responses with viewer-dependent fields.
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(authService))
	{
		handlers.Tag.RegisterRoutes(public)
		handlers.Ingredient.RegisterRoutes(public)
		handlers.Recipe.RegisterPublicRoutes(public)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		handlers.User.RegisterRoutes(protected)
		handlers.Tag.RegisterAdminRoutes(protected)

		var mutation []gin.HandlerFunc
		if mutationLimiter != nil {
			mutation = append(mutation, mutationLimiter.RateLimitMiddleware())
		}
		handlers.Recipe.RegisterRoutes(protected, mutation...)
	}

	return router
}
