package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

type UserHandler struct {
	authService         *service.AuthService
	subscriptionService *service.SubscriptionService
}

func NewUserHandler(authService *service.AuthService, subscriptionService *service.SubscriptionService) *UserHandler {
	return &UserHandler{
		authService:         authService,
		subscriptionService: subscriptionService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/me", h.Me)
		users.GET("/subscriptions", h.ListSubscriptions)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", h.Subscribe)
		users.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *UserHandler) userResponse(c *gin.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := h.authService.GetUser(userID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID, ok := middleware.CurrentUserID(c); ok && viewerID != user.ID {
		isSubscribed, err = h.subscriptionService.IsSubscribed(c.Request.Context(), viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	response := newUserResponse(user, isSubscribed)
	return &response, nil
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	users, err := h.authService.ListUsers(limit, offset)
	if err != nil {
		abortWithError(c, err)
		return
	}

	viewerID, hasViewer := middleware.CurrentUserID(c)
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		isSubscribed := false
		if hasViewer && viewerID != users[i].ID {
			isSubscribed, err = h.subscriptionService.IsSubscribed(c.Request.Context(), viewerID, users[i].ID)
			if err != nil {
				abortWithError(c, err)
				return
			}
		}
		responses = append(responses, newUserResponse(&users[i], isSubscribed))
	}

	c.JSON(http.StatusOK, gin.H{"users": responses})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	response, err := h.userResponse(c, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	response, err := h.userResponse(c, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	subscriberID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if _, err := h.subscriptionService.Subscribe(c.Request.Context(), subscriberID, authorID); err != nil {
		abortWithError(c, err)
		return
	}

	response, err := h.userResponse(c, authorID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	subscriberID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), subscriberID, authorID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSubscriptions returns the authors the viewer follows, each with their
// most recent recipes truncated by the recipe_limit query parameter.
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipeLimit, _ := strconv.Atoi(c.Query("recipe_limit"))
	subscriptions, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID, recipeLimit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	responses := make([]SubscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		recipes := make([]ShortRecipeResponse, 0, len(subscription.Recipes))
		for i := range subscription.Recipes {
			recipes = append(recipes, newShortRecipeResponse(&subscription.Recipes[i]))
		}
		responses = append(responses, SubscriptionResponse{
			UserResponse: newUserResponse(&subscription.Author, true),
			Recipes:      recipes,
			RecipesCount: subscription.RecipeCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": responses})
}
