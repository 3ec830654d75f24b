package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

type apiFixture struct {
	engine *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupAPITest(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db)
	favoriteService := service.NewFavoriteService(db)
	cartService := service.NewShoppingCartService(db)
	subscriptionService := service.NewSubscriptionService(db)

	handlers := router.Handlers{
		Auth:       api.NewAuthHandler(authService),
		User:       api.NewUserHandler(authService, subscriptionService),
		Tag:        api.NewTagHandler(service.NewTagService(db)),
		Ingredient: api.NewIngredientHandler(service.NewIngredientService(db)),
		Recipe: api.NewRecipeHandler(
			recipeService,
			favoriteService,
			cartService,
			service.NewShoppingListService(db),
			subscriptionService,
			nil,
		),
	}

	engine := router.SetupRouter(handlers, authService, []string{"http://localhost:5173"}, nil)
	return &apiFixture{engine: engine, db: db, auth: authService}
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// registerUser creates a user over the API and returns its token and ID.
func (f *apiFixture) registerUser(t *testing.T, username string) (string, uuid.UUID) {
	t.Helper()

	w := f.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims, err := f.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	return resp.Token, claims.UserID
}

func (f *apiFixture) recipePayload(t *testing.T) gin.H {
	t.Helper()
	tag := testhelpers.CreateTestTag(t, f.db, "dinner")
	flour := testhelpers.CreateTestIngredient(t, f.db, "flour", "g")
	return gin.H{
		"name":         "Bread",
		"text":         "Mix and bake.",
		"cooking_time": 90,
		"image":        "https://example.com/bread.png",
		"tags":         []string{tag.ID.String()},
		"ingredients": []gin.H{
			{"id": flour.ID.String(), "amount": 500},
		},
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	f := setupAPITest(t)

	token, _ := f.registerUser(t, "cook")
	require.NotEmpty(t, token)

	w := f.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "cook@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "cook@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.request(t, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var me api.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "cook", me.Username)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupAPITest(t)
	f.registerUser(t, "cook")

	w := f.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      "cook@example.com",
		"username":   "othercook",
		"first_name": "Other",
		"last_name":  "Cook",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateRecipeEndpoint(t *testing.T) {
	f := setupAPITest(t)
	token, _ := f.registerUser(t, "cook")

	w := f.request(t, http.MethodPost, "/api/v1/recipes", token, f.recipePayload(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var recipe api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, "Bread", recipe.Name)
	assert.Equal(t, "cook", recipe.Author.Username)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "flour", recipe.Ingredients[0].Name)
	assert.Equal(t, 500, recipe.Ingredients[0].Amount)

	// The new recipe shows up in the public listing without a token.
	w = f.request(t, http.MethodGet, "/api/v1/recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Recipes []api.RecipeResponse `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Recipes, 1)
	assert.Equal(t, recipe.ID, listing.Recipes[0].ID)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	f := setupAPITest(t)

	w := f.request(t, http.MethodPost, "/api/v1/recipes", "", f.recipePayload(t))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipeValidationError(t *testing.T) {
	f := setupAPITest(t)
	token, _ := f.registerUser(t, "cook")

	payload := f.recipePayload(t)
	payload["tags"] = []string{}

	w := f.request(t, http.MethodPost, "/api/v1/recipes", token, payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tags", resp.Field)
}

func TestUpdateRecipeByNonAuthorForbidden(t *testing.T) {
	f := setupAPITest(t)
	authorToken, _ := f.registerUser(t, "author")
	otherToken, _ := f.registerUser(t, "other")

	payload := f.recipePayload(t)
	w := f.request(t, http.MethodPost, "/api/v1/recipes", authorToken, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var recipe api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	w = f.request(t, http.MethodPatch, "/api/v1/recipes/"+recipe.ID.String(), otherToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.request(t, http.MethodDelete, "/api/v1/recipes/"+recipe.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.request(t, http.MethodDelete, "/api/v1/recipes/"+recipe.ID.String(), authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFavoriteEndpoints(t *testing.T) {
	f := setupAPITest(t)
	token, _ := f.registerUser(t, "cook")

	w := f.request(t, http.MethodPost, "/api/v1/recipes", token, f.recipePayload(t))
	require.Equal(t, http.StatusCreated, w.Code)
	var recipe api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	favoriteURL := fmt.Sprintf("/api/v1/recipes/%s/favorite", recipe.ID)

	w = f.request(t, http.MethodPost, favoriteURL, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var short api.ShortRecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &short))
	assert.Equal(t, recipe.ID, short.ID)

	// Doubling up is a conflict, not a second edge.
	w = f.request(t, http.MethodPost, favoriteURL, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The recipe now lists as favorited for the viewer.
	w = f.request(t, http.MethodGet, "/api/v1/recipes?is_favorited=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Recipes []api.RecipeResponse `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Recipes, 1)
	assert.True(t, listing.Recipes[0].IsFavorited)

	w = f.request(t, http.MethodDelete, favoriteURL, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.request(t, http.MethodDelete, favoriteURL, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	f := setupAPITest(t)
	token, _ := f.registerUser(t, "cook")

	w := f.request(t, http.MethodPost, "/api/v1/recipes", token, f.recipePayload(t))
	require.Equal(t, http.StatusCreated, w.Code)
	var recipe api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	w = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", recipe.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_cart.txt")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "flour (g) - 500\n", w.Body.String())
}

func TestSubscriptionEndpoints(t *testing.T) {
	f := setupAPITest(t)
	subscriberToken, _ := f.registerUser(t, "subscriber")
	authorToken, authorID := f.registerUser(t, "author")

	w := f.request(t, http.MethodPost, "/api/v1/recipes", authorToken, f.recipePayload(t))
	require.Equal(t, http.StatusCreated, w.Code)

	subscribeURL := fmt.Sprintf("/api/v1/users/%s/subscribe", authorID)

	w = f.request(t, http.MethodPost, subscribeURL, subscriberToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var author api.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &author))
	assert.True(t, author.IsSubscribed)

	w = f.request(t, http.MethodPost, subscribeURL, subscriberToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Subscribing to yourself is malformed input, not a conflict.
	w = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%s/subscribe", authorID), authorToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.request(t, http.MethodGet, "/api/v1/users/subscriptions?recipe_limit=1", subscriberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var subs struct {
		Subscriptions []api.SubscriptionResponse `json:"subscriptions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &subs))
	require.Len(t, subs.Subscriptions, 1)
	assert.Equal(t, "author", subs.Subscriptions[0].Username)
	assert.Len(t, subs.Subscriptions[0].Recipes, 1)
	assert.EqualValues(t, 1, subs.Subscriptions[0].RecipesCount)

	w = f.request(t, http.MethodDelete, subscribeURL, subscriberToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.request(t, http.MethodDelete, subscribeURL, subscriberToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicCatalogEndpoints(t *testing.T) {
	f := setupAPITest(t)

	tag := testhelpers.CreateTestTag(t, f.db, "dinner")
	testhelpers.CreateTestIngredient(t, f.db, "salt", "g")
	testhelpers.CreateTestIngredient(t, f.db, "sea salt", "g")

	w := f.request(t, http.MethodGet, "/api/v1/tags", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodGet, "/api/v1/tags/"+tag.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.request(t, http.MethodGet, "/api/v1/ingredients?name=salt", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 2)
	assert.Equal(t, "salt", ingredients[0].Name)

	// Tag creation is not on the public surface.
	w = f.request(t, http.MethodPost, "/api/v1/tags", "", gin.H{
		"name": "Lunch", "color": "#49B64E", "slug": "lunch",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetRecipeNotFound(t *testing.T) {
	f := setupAPITest(t)

	w := f.request(t, http.MethodGet, "/api/v1/recipes/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.request(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
