package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestSearchIngredientsRanksPrefixFirst(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewIngredientService(db)
	ctx := context.Background()

	testhelpers.CreateTestIngredient(t, db, "sea salt", "g")
	testhelpers.CreateTestIngredient(t, db, "salt", "g")
	testhelpers.CreateTestIngredient(t, db, "sugar", "g")

	results, err := svc.Search(ctx, "sal")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "salt", results[0].Name, "prefix match ranks before substring match")
	assert.Equal(t, "sea salt", results[1].Name)
}

func TestSearchIngredientsCaseInsensitive(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewIngredientService(db)

	testhelpers.CreateTestIngredient(t, db, "Salt", "g")

	results, err := svc.Search(context.Background(), "sAlT")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Salt", results[0].Name)
}

func TestSearchIngredientsEmptyQueryReturnsAll(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewIngredientService(db)

	testhelpers.CreateTestIngredient(t, db, "salt", "g")
	testhelpers.CreateTestIngredient(t, db, "flour", "g")

	results, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "flour", results[0].Name)
	assert.Equal(t, "salt", results[1].Name)
}

func TestBulkUpsertSkipsExistingRows(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewIngredientService(db)
	ctx := context.Background()

	batch := []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
	}
	inserted, err := svc.BulkUpsert(ctx, batch)
	require.NoError(t, err)
	assert.EqualValues(t, 2, inserted)

	// Same name with a different unit is a new catalog entry; exact
	// duplicates are skipped.
	again := []models.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "cup"},
	}
	inserted, err = svc.BulkUpsert(ctx, again)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inserted)

	var total int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&total).Error)
	assert.EqualValues(t, 3, total)
}

func TestGetIngredientNotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	_, err := service.NewIngredientService(db).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
