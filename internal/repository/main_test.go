package repository

import (
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDB returns an isolated, migrated in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixtures struct {
	db *gorm.DB
	t  *testing.T
}

func (f fixtures) user(username string) models.User {
	f.t.Helper()
	u := models.User{
		Email:     username + "@example.org",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "hash",
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f fixtures) ingredient(name, unit string) models.Ingredient {
	f.t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(f.t, f.db.Create(&ing).Error)
	return ing
}

func (f fixtures) recipe(author models.User, name string, items ...models.RecipeIngredient) models.Recipe {
	f.t.Helper()
	r := models.Recipe{AuthorID: author.ID, Name: name, Text: "text", Image: "/media/recipes/x.webp", CookingTime: 10, Ingredients: items}
	require.NoError(f.t, NewRecipeRepository(f.db).Create(f.t.Context(), &r))
	return r
}
