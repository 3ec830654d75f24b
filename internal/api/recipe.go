package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

type RecipeHandler struct {
	recipeService       *service.RecipeService
	favoriteService     *service.MembershipService[models.Favorite, *models.Favorite]
	cartService         *service.MembershipService[models.ShoppingCart, *models.ShoppingCart]
	shoppingListService *service.ShoppingListService
	subscriptionService *service.SubscriptionService
	imageStore          service.ImageStore
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	favoriteService *service.MembershipService[models.Favorite, *models.Favorite],
	cartService *service.MembershipService[models.ShoppingCart, *models.ShoppingCart],
	shoppingListService *service.ShoppingListService,
	subscriptionService *service.SubscriptionService,
	imageStore service.ImageStore,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		favoriteService:     favoriteService,
		cartService:         cartService,
		shoppingListService: shoppingListService,
		subscriptionService: subscriptionService,
		imageStore:          imageStore,
	}
}

// RegisterPublicRoutes mounts the read-only recipe endpoints.
func (h *RecipeHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}
}

// RegisterRoutes mounts the authenticated recipe endpoints. mutation
// middleware (rate limiting) applies only to create/update/delete, not to
// membership toggles or the shopping list download.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, mutation ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/download_shopping_cart", h.DownloadShoppingCart)
		recipes.POST("/:id/favorite", h.AddFavorite)
		recipes.DELETE("/:id/favorite", h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", h.RemoveFromCart)

		mutating := recipes.Group("", mutation...)
		mutating.POST("", h.CreateRecipe)
		mutating.PATCH("/:id", h.UpdateRecipe)
		mutating.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) recipeInput(c *gin.Context, req *RecipeRequest) (*service.RecipeInput, error) {
	imageURL := req.Image
	if imageURL != "" && h.imageStore != nil {
		resolved, err := h.imageStore.Resolve(c.Request.Context(), imageURL)
		if err != nil {
			return nil, err
		}
		imageURL = resolved
	}

	ingredients := make([]service.IngredientAmountInput, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredients = append(ingredients, service.IngredientAmountInput{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	return &service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
		TagIDs:      req.Tags,
		Ingredients: ingredients,
	}, nil
}

// recipeResponse enriches a recipe with the viewer-dependent fields.
func (h *RecipeHandler) recipeResponse(c *gin.Context, recipe *models.Recipe) (*RecipeResponse, error) {
	response := RecipeResponse{
		ID:          recipe.ID,
		Tags:        recipe.Tags,
		Ingredients: newIngredientAmountResponses(recipe.Ingredients),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
	}
	if response.Tags == nil {
		response.Tags = []models.Tag{}
	}

	viewerID, hasViewer := middleware.CurrentUserID(c)

	if recipe.Author != nil {
		isSubscribed := false
		if hasViewer && viewerID != recipe.AuthorID {
			var err error
			isSubscribed, err = h.subscriptionService.IsSubscribed(c.Request.Context(), viewerID, recipe.AuthorID)
			if err != nil {
				return nil, err
			}
		}
		response.Author = newUserResponse(recipe.Author, isSubscribed)
	}

	if hasViewer {
		var err error
		response.IsFavorited, err = h.favoriteService.Contains(c.Request.Context(), viewerID, recipe.ID)
		if err != nil {
			return nil, err
		}
		response.IsInShoppingCart, err = h.cartService.Contains(c.Request.Context(), viewerID, recipe.ID)
		if err != nil {
			return nil, err
		}
	}

	return &response, nil
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeListFilter{}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if tags := c.QueryArray("tags"); len(tags) > 0 {
		filter.TagSlugs = tags
	} else if tags := c.Query("tags"); tags != "" {
		filter.TagSlugs = strings.Split(tags, ",")
	}
	if viewerID, ok := middleware.CurrentUserID(c); ok {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = &viewerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = &viewerID
		}
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	recipes, err := h.recipeService.List(c.Request.Context(), &filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	responses := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		response, err := h.recipeResponse(c, &recipes[i])
		if err != nil {
			abortWithError(c, err)
			return
		}
		responses = append(responses, *response)
	}

	c.JSON(http.StatusOK, gin.H{"recipes": responses})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response, err := h.recipeResponse(c, recipe)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := h.recipeInput(c, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response, err := h.recipeResponse(c, recipe)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := h.recipeInput(c, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), id, userID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response, err := h.recipeResponse(c, recipe)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), id, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// membershipAction runs one add/remove on either membership relation and
// writes the short recipe view on success.
func (h *RecipeHandler) membershipAction(c *gin.Context, add func(userID, recipeID uuid.UUID) error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := add(userID, recipeID); err != nil {
		abortWithError(c, err)
		return
	}

	if c.Request.Method == http.MethodDelete {
		c.Status(http.StatusNoContent)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), recipeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newShortRecipeResponse(recipe))
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.membershipAction(c, func(userID, recipeID uuid.UUID) error {
		_, err := h.favoriteService.Add(c.Request.Context(), userID, recipeID)
		return err
	})
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.membershipAction(c, func(userID, recipeID uuid.UUID) error {
		return h.favoriteService.Remove(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.membershipAction(c, func(userID, recipeID uuid.UUID) error {
		_, err := h.cartService.Add(c.Request.Context(), userID, recipeID)
		return err
	})
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.membershipAction(c, func(userID, recipeID uuid.UUID) error {
		return h.cartService.Remove(c.Request.Context(), userID, recipeID)
	})
}

// DownloadShoppingCart serves the aggregated shopping list as a plain-text
// attachment named shopping_cart.txt.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	report, err := h.shoppingListService.BuildReport(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}
