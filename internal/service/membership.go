package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// MembershipEdge is a (user, recipe) edge with no other payload. Favorites
// and shopping carts are the two relation kinds.
type MembershipEdge interface {
	SetEdge(userID, recipeID uuid.UUID)
}

// MembershipService implements add/remove for one membership relation.
// Favorites and the shopping cart behave identically except for the table
// they live in, so the logic exists once, parameterized by the edge model.
// The pre-flight recipe lookup is a courtesy check; the composite unique
// index on the edge table is what guarantees a duplicate insert loses.
type MembershipService[T any, PT interface {
	*T
	MembershipEdge
}] struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *MembershipService[models.Favorite, *models.Favorite] {
	return &MembershipService[models.Favorite, *models.Favorite]{db: db}
}

func NewShoppingCartService(db *gorm.DB) *MembershipService[models.ShoppingCart, *models.ShoppingCart] {
	return &MembershipService[models.ShoppingCart, *models.ShoppingCart]{db: db}
}

// Add creates the edge. Returns ErrNotFound when the recipe does not exist
// and ErrAlreadyExists when the edge is already present, including the case
// where a concurrent request won the insert race.
func (s *MembershipService[T, PT]) Add(ctx context.Context, userID, recipeID uuid.UUID) (*T, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var edge T
	PT(&edge).SetEdge(userID, recipeID)
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &edge, nil
}

// Remove deletes the edge, returning ErrNotFound when it was not there.
func (s *MembershipService[T, PT]) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Contains reports whether the edge exists. Used for response enrichment.
func (s *MembershipService[T, PT]) Contains(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
