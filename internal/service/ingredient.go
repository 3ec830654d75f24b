package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/internal/models"
)

// IngredientService serves the ingredient catalog: read-mostly reference data
// looked up during recipe validation and searched by the frontend.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// Get retrieves an ingredient by ID.
func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// Search returns ingredients whose name matches the query, case-insensitive.
// Anchored-prefix matches rank before substring matches, alphabetical within
// each rank. An empty query returns the whole catalog ordered by name.
func (s *IngredientService) Search(ctx context.Context, name string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	query := s.db.WithContext(ctx).Model(&models.Ingredient{})

	if name != "" {
		lowered := strings.ToLower(name)
		prefix := lowered + "%"
		substring := "%" + lowered + "%"
		query = query.
			Where("LOWER(name) LIKE ?", substring).
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:  "CASE WHEN LOWER(name) LIKE ? THEN 0 ELSE 1 END",
				Vars: []interface{}{prefix},
			}})
	}

	if err := query.Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// BulkUpsert inserts catalog entries, silently skipping rows whose
// (name, measurement_unit) pair already exists. Used by the CSV loader.
// Returns the number of rows actually inserted.
func (s *IngredientService) BulkUpsert(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
		DoNothing: true,
	}).Create(&ingredients)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// resolveIngredients loads the ingredients for the given IDs and reports the
// first ID that does not resolve.
func resolveIngredients(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Ingredient, error) {
	var found []models.Ingredient
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Ingredient, len(found))
	for _, ingredient := range found {
		byID[ingredient.ID] = ingredient
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, validationErr("ingredients", "unknown ingredient: "+id.String())
		}
	}
	return byID, nil
}
