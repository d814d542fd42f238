package models

import (
	"encoding/json"
	"time"
)

// Recipe is a dish published by exactly one author.
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	AuthorID    uint               `gorm:"not null;index" json:"-"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
	Name        string             `gorm:"size:150;not null" json:"name"`
	Image       string             `gorm:"not null;default:''" json:"image"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1" json:"cooking_time"`
	CreatedAt   time.Time          `gorm:"index" json:"-"`
	UpdatedAt   time.Time          `json:"-"`

	// IsFavorited indicates whether the requesting user favorited this recipe (computed)
	IsFavorited bool `gorm:"->;-:migration" json:"is_favorited"`
	// IsInShoppingCart indicates whether the recipe is in the requesting user's cart (computed)
	IsInShoppingCart bool `gorm:"->;-:migration" json:"is_in_shopping_cart"`
}

// TableName specifies the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeShort is the compact representation used by favorites, cart and subscriptions.
type RecipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Short projects r into its compact representation.
func (r *Recipe) Short() RecipeShort {
	return RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// RecipeIngredient carries the amount of one ingredient in one recipe.
// The (recipe_id, ingredient_id) pair is unique.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair;index"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}

// TableName specifies the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// MarshalJSON flattens the ingredient into the row, keyed by the ingredient id.
func (ri RecipeIngredient) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}{
		ID:              ri.IngredientID,
		Name:            ri.Ingredient.Name,
		MeasurementUnit: ri.Ingredient.MeasurementUnit,
		Amount:          ri.Amount,
	})
}
