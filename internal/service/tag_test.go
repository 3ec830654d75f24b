package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestCreateTag(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	tag, err := svc.Create(ctx, "Dinner", "#1a2B3c", "dinner")
	require.NoError(t, err)
	assert.Equal(t, "Dinner", tag.Name)
	assert.Equal(t, "#1a2B3c", tag.Color)

	got, err := svc.GetBySlug(ctx, "dinner")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)
}

func TestCreateTagValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	tests := []struct {
		name, tagName, color, slug string
	}{
		{"missing name", "", "#1a2B3c", "dinner"},
		{"bad hex digit", "Dinner", "#12G456", "dinner"},
		{"color without hash", "Dinner", "1a2B3c", "dinner"},
		{"short color", "Dinner", "#1a2", "dinner"},
		{"slug with space", "Dinner", "#1a2B3c", "din ner"},
		{"slug with symbol", "Dinner", "#1a2B3c", "dinner!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.tagName, tt.color, tt.slug)
			assert.True(t, service.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestCreateTagDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Dinner", "#1a2B3c", "dinner")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Dinner", "#49B64E", "dinner-2")
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	_, err = svc.Create(ctx, "Supper", "#49B64E", "dinner")
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestGetTagsByIDs(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	dinner := testhelpers.CreateTestTag(t, db, "dinner")
	lunch := testhelpers.CreateTestTag(t, db, "lunch")

	tags, err := svc.GetByIDs(ctx, []uuid.UUID{dinner.ID, lunch.ID})
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	_, err = svc.GetByIDs(ctx, []uuid.UUID{dinner.ID, uuid.New()})
	assert.True(t, service.IsValidation(err))
}

func TestListTagsOrderedByName(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewTagService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Zebra", "#111111", "zebra")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Apple", "#222222", "apple")
	require.NoError(t, err)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Apple", tags[0].Name)
	assert.Equal(t, "Zebra", tags[1].Name)
}
