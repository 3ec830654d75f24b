package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// TagService serves the tag catalog.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// GetByIDs resolves a set of tag IDs; every ID must resolve or a
// ValidationError naming the missing tag is returned.
func (s *TagService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		known := make(map[uuid.UUID]bool, len(tags))
		for _, tag := range tags {
			known[tag.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				return nil, validationErr("tags", "unknown tag: "+id.String())
			}
		}
	}
	return tags, nil
}

// Create validates color and slug format, then persists the tag. Name and
// slug uniqueness is enforced by the database.
func (s *TagService) Create(ctx context.Context, name, color, slug string) (*models.Tag, error) {
	if name == "" {
		return nil, validationErr("name", "tag name is required")
	}
	if !models.ValidTagColor(color) {
		return nil, validationErr("color", "color must be a hex code like #1a2B3c")
	}
	if !models.ValidTagSlug(slug) {
		return nil, validationErr("slug", "slug may contain only letters, digits, hyphens and underscores")
	}

	tag := models.Tag{Name: name, Color: color, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &tag, nil
}
