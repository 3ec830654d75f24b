package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
)

// Server wires the services and handlers together and runs the HTTP server.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	db       *gorm.DB
	healthDB *database.DB
}

// New creates a server instance. healthDB, redisClient and imageStore may
// all be nil: health probes fall back to the GORM connection, recipe
// mutations are not rate limited, and data-URI image upload is unavailable.
func New(cfg *config.Config, db *gorm.DB, healthDB *database.DB, redisClient *redis.Client, imageStore service.ImageStore) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	tagService := service.NewTagService(db)
	ingredientService := service.NewIngredientService(db)
	recipeService := service.NewRecipeService(db)
	favoriteService := service.NewFavoriteService(db)
	cartService := service.NewShoppingCartService(db)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)

	handlers := router.Handlers{
		Auth:       api.NewAuthHandler(authService),
		User:       api.NewUserHandler(authService, subscriptionService),
		Tag:        api.NewTagHandler(tagService),
		Ingredient: api.NewIngredientHandler(ingredientService),
		Recipe: api.NewRecipeHandler(
			recipeService,
			favoriteService,
			cartService,
			shoppingListService,
			subscriptionService,
			imageStore,
		),
	}

	var mutationLimiter *middleware.RateLimiter
	if redisClient != nil {
		mutationLimiter = middleware.NewRecipeMutationRateLimiter(redisClient)
	}

	engine := router.SetupRouter(handlers, authService, cfg.AllowedOrigins, mutationLimiter)

	srv := &Server{
		router:   engine,
		db:       db,
		healthDB: healthDB,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}
	engine.GET("/health", srv.healthCheck)
	return srv
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if s.healthDB != nil {
		if err := s.healthDB.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	} else {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
