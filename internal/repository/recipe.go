package repository

import (
	"context"
	"errors"

	"foodgram/internal/cache"
	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows GET /recipes/. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID      uint
	IngredientIDs []uint
	FavoritedBy   uint
	InCartOf      uint
}

// RecipeRepository defines persistence operations for recipes and their ingredient rows.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	GetShort(ctx context.Context, id uint) (*models.RecipeShort, error)
	List(ctx context.Context, filter RecipeFilter, limit, offset int) ([]models.Recipe, int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListShortByAuthor(ctx context.Context, authorID uint, limit int) ([]models.RecipeShort, error)
	Annotate(ctx context.Context, viewerID uint, recipes []models.Recipe) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// translateIngredientWrite maps constraint failures on recipe_ingredients to
// validation errors; those only happen when the caller skipped validation or
// lost a race with an ingredient delete.
func translateIngredientWrite(err error) error {
	switch {
	case isUniqueConstraintError(err):
		return models.NewValidationError("Ingredients must not repeat")
	case isForeignKeyError(err):
		return models.NewValidationError("Unknown ingredient")
	case isCheckConstraintError(err):
		return models.NewValidationError("Amount and cooking time must be at least 1")
	default:
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
}

func insertIngredients(tx *gorm.DB, recipeID uint, items []models.RecipeIngredient) ([]models.RecipeIngredient, error) {
	rows := make([]models.RecipeIngredient, len(items))
	for i, it := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: it.IngredientID,
			Amount:       it.Amount,
			Ingredient:   it.Ingredient,
		}
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("create", "recipes")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		rows, err := insertIngredients(tx, recipe.ID, recipe.Ingredients)
		if err != nil {
			return err
		}
		recipe.Ingredients = rows
		return nil
	})
	if err != nil {
		return translateIngredientWrite(err)
	}
	cache.InvalidateAuthorRecipes(ctx, recipe.AuthorID)
	return nil
}

// Update writes the scalar fields and replaces the ingredient set in one
// transaction: delete every existing row, then bulk insert the new ones.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("update", "recipes")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{ID: recipe.ID}).
			Select("name", "text", "cooking_time", "image", "updated_at").
			Updates(recipe)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", recipe.ID)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		rows, err := insertIngredients(tx, recipe.ID, recipe.Ingredients)
		if err != nil {
			return err
		}
		recipe.Ingredients = rows
		return nil
	})
	if err != nil {
		return translateIngredientWrite(err)
	}
	return nil
}

func (r *recipeRepository) Delete(ctx context.Context, recipe *models.Recipe) error {
	res := r.db.WithContext(ctx).Delete(&models.Recipe{}, recipe.ID)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", recipe.ID)
	}
	cache.InvalidateAuthorRecipes(ctx, recipe.AuthorID)
	return nil
}

func (r *recipeRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.preloaded(ctx).First(&recipe, id).Error; err != nil {
		return nil, translate(err, "Recipe", id)
	}
	return &recipe, nil
}

func (r *recipeRepository) GetShort(ctx context.Context, id uint) (*models.RecipeShort, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Select("id", "name", "image", "cooking_time").First(&recipe, id).Error; err != nil {
		return nil, translate(err, "Recipe", id)
	}
	short := recipe.Short()
	return &short, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, limit, offset int) ([]models.Recipe, int64, error) {
	defer observability.TrackQuery("list", "recipes")()

	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.IngredientIDs) > 0 {
		sub := r.db.Model(&models.RecipeIngredient{}).Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs)
		q = q.Where("recipes.id IN (?)", sub)
	}
	if filter.FavoritedBy != 0 {
		sub := r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.FavoritedBy)
		q = q.Where("recipes.id IN (?)", sub)
	}
	if filter.InCartOf != 0 {
		sub := r.db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", filter.InCartOf)
		q = q.Where("recipes.id IN (?)", sub)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	recipes := []models.Recipe{}
	if total == 0 {
		return recipes, 0, nil
	}

	var ids []uint
	if err := q.Session(&gorm.Session{}).
		Order("recipes.created_at DESC").Order("recipes.id DESC").
		Limit(limit).Offset(offset).
		Pluck("recipes.id", &ids).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if len(ids) == 0 {
		return recipes, total, nil
	}

	if err := r.preloaded(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").Order("id DESC").
		Find(&recipes).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return recipes, total, nil
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := cache.Aside(ctx, cache.AuthorRecipeCountKey(authorID), &n, cache.AuthorRecipeCountTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&n).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return n, err
}

// ListShortByAuthor returns the author's newest recipes; limit <= 0 means all.
func (r *recipeRepository) ListShortByAuthor(ctx context.Context, authorID uint, limit int) ([]models.RecipeShort, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).
		Select("id", "name", "image", "cooking_time").
		Where("author_id = ?", authorID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.RecipeShort, len(recipes))
	for i := range recipes {
		out[i] = recipes[i].Short()
	}
	return out, nil
}

// Annotate fills the viewer-relative flags: is_favorited, is_in_shopping_cart
// and author.is_subscribed. Anonymous viewers (0) get all false.
func (r *recipeRepository) Annotate(ctx context.Context, viewerID uint, recipes []models.Recipe) error {
	if viewerID == 0 || len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	var favorited, inCart, following []uint
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, ids).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Model(&models.ShoppingCartItem{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, ids).
		Pluck("recipe_id", &inCart).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &following).Error; err != nil {
		return models.NewInternalError(err)
	}

	fav := toSet(favorited)
	cart := toSet(inCart)
	sub := toSet(following)
	for i := range recipes {
		recipes[i].IsFavorited = fav[recipes[i].ID]
		recipes[i].IsInShoppingCart = cart[recipes[i].ID]
		recipes[i].Author.IsSubscribed = sub[recipes[i].AuthorID]
	}
	return nil
}

func toSet(ids []uint) map[uint]bool {
	m := make(map[uint]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
