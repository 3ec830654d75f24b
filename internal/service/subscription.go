package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// AuthorSubscription is one entry of a user's subscription list: the author
// plus a truncated most-recent-first view of their recipes.
type AuthorSubscription struct {
	Author      models.User
	Recipes     []models.Recipe
	RecipeCount int64
}

// SubscriptionService maintains the directed follow graph between users.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe creates a follow edge. Self-subscription is rejected before any
// write; duplicate edges are rejected by the unique index so a concurrent
// duplicate request cannot slip past the pre-flight check.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uuid.UUID) (*models.Subscription, error) {
	if subscriberID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	subscription := models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSubscription
		}
		return nil, err
	}
	return &subscription, nil
}

// Unsubscribe removes the follow edge, returning ErrNotFound if it was absent.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsSubscribed reports whether subscriber follows author.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListSubscriptions returns the authors the user follows, each with their
// most recent recipes truncated to recipeLimit (0 means no truncation) and
// the author's total recipe count. Authors come back in subscription order.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID uuid.UUID, recipeLimit int) ([]AuthorSubscription, error) {
	var subscriptions []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("subscriber_id = ?", subscriberID).
		Order("created_at").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}

	recipeService := RecipeService{db: s.db}
	result := make([]AuthorSubscription, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		if subscription.Author == nil {
			continue
		}
		recipes, total, err := recipeService.ListByAuthor(ctx, subscription.AuthorID, recipeLimit)
		if err != nil {
			return nil, err
		}
		result = append(result, AuthorSubscription{
			Author:      *subscription.Author,
			Recipes:     recipes,
			RecipeCount: total,
		})
	}
	return result, nil
}
