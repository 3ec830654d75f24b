package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1500
	MinAmount      = 1
	MaxAmount      = 10000
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
	AuthorID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:cooking_time >= 1 AND cooking_time <= 1500" json:"cooking_time"`
	ImageURL    string    `gorm:"size:255" json:"image"`
	// PubDate is set once at creation and never updated afterwards.
	PubDate time.Time `gorm:"not null" json:"pub_date"`

	Author      *User              `gorm:"foreignKey:AuthorID" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PubDate.IsZero() {
		r.PubDate = time.Now().UTC()
	}
	return nil
}

// RecipeIngredient is one line-item of a recipe's composition: an ingredient
// reference plus the amount used. An ingredient may appear at most once per
// recipe, enforced by the composite unique index.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"-"`
	RecipeID     uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_recipe_ingredient" json:"-"`
	IngredientID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:uidx_recipe_ingredient" json:"id"`
	Amount       int       `gorm:"not null;check:amount >= 1 AND amount <= 10000" json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
