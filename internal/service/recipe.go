package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// IngredientAmountInput is one requested line-item of a recipe.
type IngredientAmountInput struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput carries the full composition of a recipe for create and update.
// Updates are a full replacement of the tag set and line-item set, never a merge.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageURL    string
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmountInput
}

// RecipeListFilter narrows List results. Nil / empty fields are ignored.
type RecipeListFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Limit       int
	Offset      int
}

// RecipeService is the composition engine: it validates a recipe's
// many-to-many composition of tags and ingredient line-items and persists
// the whole unit atomically. A partially written recipe is never observable.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// validate runs every composition rule against the input and resolves the
// referenced tags. All checks happen before any persistence; the returned
// tag set is reused by the transaction so validation and persistence agree.
func (s *RecipeService) validate(ctx context.Context, input *RecipeInput) ([]models.Tag, error) {
	if len(input.TagIDs) == 0 {
		return nil, validationErr("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]bool, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if seenTags[id] {
			return nil, validationErr("tags", "tags must not repeat")
		}
		seenTags[id] = true
	}

	tagService := TagService{db: s.db}
	tags, err := tagService.GetByIDs(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	if len(input.Ingredients) == 0 {
		return nil, validationErr("ingredients", "at least one ingredient is required")
	}
	ingredientIDs := make([]uuid.UUID, 0, len(input.Ingredients))
	seenIngredients := make(map[uuid.UUID]bool, len(input.Ingredients))
	for _, item := range input.Ingredients {
		if seenIngredients[item.IngredientID] {
			return nil, validationErr("ingredients", "the same ingredient cannot appear twice")
		}
		seenIngredients[item.IngredientID] = true
		ingredientIDs = append(ingredientIDs, item.IngredientID)
	}
	if _, err := resolveIngredients(ctx, s.db, ingredientIDs); err != nil {
		return nil, err
	}
	for _, item := range input.Ingredients {
		if item.Amount < models.MinAmount || item.Amount > models.MaxAmount {
			return nil, validationErr("ingredients", fmt.Sprintf(
				"amount must be between %d and %d", models.MinAmount, models.MaxAmount))
		}
	}

	if input.CookingTime < models.MinCookingTime || input.CookingTime > models.MaxCookingTime {
		return nil, validationErr("cooking_time", fmt.Sprintf(
			"cooking time must be between %d and %d minutes", models.MinCookingTime, models.MaxCookingTime))
	}
	if !models.ValidRecipeName(input.Name) {
		return nil, validationErr("name", "recipe name must contain at least one letter")
	}

	return tags, nil
}

func lineItems(recipeID uuid.UUID, inputs []IngredientAmountInput) []models.RecipeIngredient {
	items := make([]models.RecipeIngredient, len(inputs))
	for i, item := range inputs {
		items[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		}
	}
	return items
}

// Create validates and persists a new recipe. The recipe row, its tag
// associations and all line-items are written in a single transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input *RecipeInput) (*models.Recipe, error) {
	tags, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		ImageURL:    input.ImageURL,
		Tags:        tags,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		items := lineItems(recipe.ID, input.Ingredients)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update replaces a recipe's fields, tag set and line-item set. Only the
// author may update; pub_date is never touched. The old line-items are
// deleted and the new set inserted in the same transaction as the tag
// replacement, so readers never observe a half-updated composition.
func (s *RecipeService) Update(ctx context.Context, recipeID, requesterID uuid.UUID, input *RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != requesterID {
		return nil, ErrPermissionDenied
	}

	tags, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if input.ImageURL != "" {
			updates["image_url"] = input.ImageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		items := lineItems(recipe.ID, input.Ingredients)
		return tx.Create(&items).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Delete removes a recipe together with its line-items, tag associations and
// any favorite or cart edges pointing at it. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, recipeID, requesterID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != requesterID {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get retrieves a recipe with its author, tags and line-items preloaded.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes most-recent-first, optionally filtered by author,
// tag slugs, or membership in a user's favorites or cart.
func (s *RecipeService) List(ctx context.Context, filter *RecipeListFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")

	if filter != nil {
		if filter.AuthorID != nil {
			query = query.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			query = query.
				Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs).
				Distinct("recipes.*")
		}
		if filter.FavoritedBy != nil {
			query = query.
				Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
				Where("favorites.user_id = ?", *filter.FavoritedBy)
		}
		if filter.InCartOf != nil {
			query = query.
				Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
				Where("shopping_carts.user_id = ?", *filter.InCartOf)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	var recipes []models.Recipe
	if err := query.Order("recipes.pub_date DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// ListByAuthor returns an author's recipes most-recent-first, truncated to
// limit when limit > 0, plus the author's total recipe count.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}
