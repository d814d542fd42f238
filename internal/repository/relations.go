package repository

import (
	"context"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository stores user-recipe bookmarks.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, recipeID uint) error
	Remove(ctx context.Context, userID, recipeID uint) error
}

// CartRepository stores shopping cart entries and aggregates them.
type CartRepository interface {
	Add(ctx context.Context, userID, recipeID uint) error
	Remove(ctx context.Context, userID, recipeID uint) error
	ShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListLine, error)
}

// pairRepository implements add/remove over a (user_id, recipe_id) table with
// a unique index on the pair.
type pairRepository struct {
	db         *gorm.DB
	newRow     func(userID, recipeID uint) interface{}
	duplicate  string
	missingRow string
}

func (r *pairRepository) Add(ctx context.Context, userID, recipeID uint) error {
	if err := r.db.WithContext(ctx).Create(r.newRow(userID, recipeID)).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(r.duplicate)
		}
		if isForeignKeyError(err) {
			return models.NewNotFoundError("Recipe", recipeID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pairRepository) Remove(ctx context.Context, userID, recipeID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(r.newRow(0, 0))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewValidationError(r.missingRow)
	}
	return nil
}

type favoriteRepository struct {
	pairRepository
}

// NewFavoriteRepository returns a new FavoriteRepository implementation.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{pairRepository{
		db: db,
		newRow: func(userID, recipeID uint) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		duplicate:  "Recipe is already in favorites",
		missingRow: "Recipe is not in favorites",
	}}
}

type cartRepository struct {
	pairRepository
}

// NewCartRepository returns a new CartRepository implementation.
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{pairRepository{
		db: db,
		newRow: func(userID, recipeID uint) interface{} {
			return &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
		},
		duplicate:  "Recipe is already in the shopping cart",
		missingRow: "Recipe is not in the shopping cart",
	}}
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// grouped by (name, measurement_unit).
func (r *cartRepository) ShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListLine, error) {
	lines := []models.ShoppingListLine{}
	err := r.db.WithContext(ctx).
		Table("shopping_cart_items AS c").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("c.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("LOWER(i.name) ASC").Order("i.measurement_unit ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return lines, nil
}
