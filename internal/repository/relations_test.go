package repository

import (
	"context"
	"regexp"
	"testing"

	"foodgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteRepository_Toggle(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewFavoriteRepository(db)

	u := f.user("chef")
	salt := f.ingredient("salt", "g")
	r := f.recipe(u, "Salt", models.RecipeIngredient{IngredientID: salt.ID, Amount: 1})

	require.NoError(t, repo.Add(ctx, u.ID, r.ID))

	err := repo.Add(ctx, u.ID, r.ID)
	assert.True(t, models.IsCode(err, models.CodeConflict), "second add must conflict, got %v", err)

	require.NoError(t, repo.Remove(ctx, u.ID, r.ID))

	err = repo.Remove(ctx, u.ID, r.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestFavoriteRepository_AddTranslatesPostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFavoriteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "favorites"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Add(context.Background(), 1, 2)
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_AddTranslatesPostgresForeignKeyViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFavoriteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "favorites"`)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	err := repo.Add(context.Background(), 1, 404)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_RemoveAbsentPairIsValidationError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCartRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "shopping_cart_items" WHERE user_id = $1 AND recipe_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Remove(context.Background(), 1, 2)
	assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_ShoppingListAggregates(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewCartRepository(db)

	u := f.user("chef")
	salt := f.ingredient("salt", "g")
	flour := f.ingredient("Flour", "g")
	water := f.ingredient("water", "ml")

	r1 := f.recipe(u, "Bread",
		models.RecipeIngredient{IngredientID: salt.ID, Amount: 2},
		models.RecipeIngredient{IngredientID: flour.ID, Amount: 500},
	)
	r2 := f.recipe(u, "Brine",
		models.RecipeIngredient{IngredientID: salt.ID, Amount: 3},
		models.RecipeIngredient{IngredientID: water.ID, Amount: 100},
	)
	f.recipe(u, "Not in cart", models.RecipeIngredient{IngredientID: salt.ID, Amount: 1000})

	empty, err := repo.ShoppingList(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Add(ctx, u.ID, r1.ID))
	require.NoError(t, repo.Add(ctx, u.ID, r2.ID))

	lines, err := repo.ShoppingList(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListLine{
		{Name: "Flour", MeasurementUnit: "g", Amount: 500},
		{Name: "salt", MeasurementUnit: "g", Amount: 5},
		{Name: "water", MeasurementUnit: "ml", Amount: 100},
	}, lines)
}

func TestCartRepository_AddUnknownRecipe(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	u := f.user("chef")

	err := NewCartRepository(db).Add(context.Background(), u.ID, 404)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)
}
