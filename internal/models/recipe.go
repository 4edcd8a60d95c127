package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bounds enforced on recipe payloads, mirrored by check constraints below.
const (
	MinCookingTime = 1
	MaxCookingTime = 1000
	MinAmount      = 0
	MaxAmount      = 10000
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:chk_cooking_time,cooking_time >= 1 AND cooking_time <= 1000" json:"cooking_time"`
	ImageURL    string    `gorm:"size:255" json:"image"`
	PubDate     time.Time `json:"pub_date"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"-"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"-"`
	Tags        []RecipeTag        `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.PubDate.IsZero() {
		r.PubDate = time.Now()
	}
	return nil
}

// RecipeIngredient is the join row carrying the per-recipe amount.
type RecipeIngredient struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"-"`
	RecipeID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"id"`
	Amount       int         `gorm:"not null;check:chk_amount,amount >= 0 AND amount <= 10000" json:"amount"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

type RecipeTag struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_tag" json:"-"`
	TagID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_tag" json:"id"`
	Tag      *Tag      `gorm:"foreignKey:TagID" json:"-"`
}

func (rt *RecipeTag) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}
