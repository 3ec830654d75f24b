package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func createRecipeForMembership(t *testing.T, db *gorm.DB) (*models.User, *models.Recipe) {
	t.Helper()
	user := testhelpers.CreateTestUser(t, db)
	tag := testhelpers.CreateTestTag(t, db, "dinner")
	ingredient := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	recipe, err := service.NewRecipeService(db).Create(context.Background(), user.ID, &service.RecipeInput{
		Name:        "Bread",
		Text:        "Mix and bake.",
		CookingTime: 90,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []service.IngredientAmountInput{{IngredientID: ingredient.ID, Amount: 500}},
	})
	require.NoError(t, err)
	return user, recipe
}

func TestFavoriteAddRemove(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, recipe := createRecipeForMembership(t, db)
	favorites := service.NewFavoriteService(db)
	ctx := context.Background()

	edge, err := favorites.Add(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, edge.UserID)
	assert.Equal(t, recipe.ID, edge.RecipeID)

	contains, err := favorites.Contains(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, contains)

	require.NoError(t, favorites.Remove(ctx, user.ID, recipe.ID))
	contains, err = favorites.Contains(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, contains)
}

func TestFavoriteDuplicateAdd(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, recipe := createRecipeForMembership(t, db)
	favorites := service.NewFavoriteService(db)
	ctx := context.Background()

	_, err := favorites.Add(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = favorites.Add(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	// Exactly one edge regardless of how many adds raced in.
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFavoriteUnknownRecipe(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateTestUser(t, db)
	favorites := service.NewFavoriteService(db)

	_, err := favorites.Add(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFavoriteRemoveMissing(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, recipe := createRecipeForMembership(t, db)

	err := service.NewFavoriteService(db).Remove(context.Background(), user.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestShoppingCartIsIndependentOfFavorites(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, recipe := createRecipeForMembership(t, db)
	favorites := service.NewFavoriteService(db)
	cart := service.NewShoppingCartService(db)
	ctx := context.Background()

	_, err := favorites.Add(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	inCart, err := cart.Contains(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, inCart, "favoriting must not touch the cart")

	_, err = cart.Add(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	require.NoError(t, favorites.Remove(ctx, user.ID, recipe.ID))

	inCart, err = cart.Contains(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, inCart, "unfavoriting must not touch the cart")
}
