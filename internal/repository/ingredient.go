package repository

import (
	"context"

	"foodgram/internal/cache"
	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientRepository reads the ingredient catalogue and bulk-loads fixtures.
type IngredientRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	Search(ctx context.Context, name, search string) ([]models.Ingredient, error)
	CountExisting(ctx context.Context, ids []uint) (int64, error)
	UpsertMany(ctx context.Context, items []models.Ingredient) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository returns a new IngredientRepository implementation.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := cache.Aside(ctx, cache.IngredientKey(id), &ing, cache.IngredientTTL, func() error {
		if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
			return translate(err, "Ingredient", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// Search filters by case-insensitive name prefix (name) and/or substring
// (search). Results are ordered by name then unit.
func (r *ingredientRepository) Search(ctx context.Context, name, search string) ([]models.Ingredient, error) {
	items := []models.Ingredient{}
	err := cache.Aside(ctx, cache.IngredientSearchKey(name, search), &items, cache.IngredientSearchTTL, func() error {
		q := r.db.WithContext(ctx).Model(&models.Ingredient{})
		if name != "" {
			q = q.Where(`name_lower LIKE ? ESCAPE '\'`, likePattern("", name, "%"))
		}
		if search != "" {
			q = q.Where(`name_lower LIKE ? ESCAPE '\'`, likePattern("%", search, "%"))
		}
		if err := q.Order("name ASC").Order("measurement_unit ASC").Find(&items).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ingredientRepository) CountExisting(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// UpsertMany inserts items, skipping (name, measurement_unit) pairs already
// present, and returns the number of new rows.
func (r *ingredientRepository) UpsertMany(ctx context.Context, items []models.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&items, 500)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	cache.InvalidateIngredients(ctx)
	return res.RowsAffected, nil
}
