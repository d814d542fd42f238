package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

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

func TestParseIngredients(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    []models.Ingredient
		wantErr string
	}{
		{
			name: "trims and deduplicates",
			input: `
- name: " salt "
  measurement_unit: g
- name: salt
  measurement_unit: g
- name: salt
  measurement_unit: pinch
`,
			want: []models.Ingredient{
				{Name: "salt", MeasurementUnit: "g"},
				{Name: "salt", MeasurementUnit: "pinch"},
			},
		},
		{name: "empty document", input: "", want: nil},
		{
			name:    "missing unit",
			input:   "- name: sugar\n",
			wantErr: "ingredient #1",
		},
		{
			name:    "too long",
			input:   "- name: " + strings.Repeat("x", 151) + "\n  measurement_unit: g\n",
			wantErr: "too long",
		},
		{name: "not a list", input: "name: salt", wantErr: "decode ingredients"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIngredients(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadIngredientsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewIngredientRepository(db)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ingredients.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: eggs
  measurement_unit: pcs
- name: milk
  measurement_unit: ml
`), 0o600))

	n, err := LoadIngredients(ctx, repo, path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = LoadIngredients(ctx, repo, path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLoadIngredientsMissingFile(t *testing.T) {
	repo := repository.NewIngredientRepository(newTestDB(t))
	_, err := LoadIngredients(context.Background(), repo, filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestBundledFixtureParses(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "data", "ingredients.yml"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	items, err := ParseIngredients(f)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}

func TestFactoryDemo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&[]models.Ingredient{
		{Name: "eggs", MeasurementUnit: "pcs"},
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
	}).Error)

	f := NewFactory(db, Options{Seed: 42, SkipBcrypt: true})
	summary, err := f.Demo(ctx, DemoSpec{Users: 4, RecipesPerUser: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, 8, summary.Recipes)

	var recipes []models.Recipe
	require.NoError(t, db.Preload("Ingredients").Find(&recipes).Error)
	require.Len(t, recipes, 8)
	for _, r := range recipes {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Image)
		assert.GreaterOrEqual(t, r.CookingTime, 1)
		assert.NotEmpty(t, r.Ingredients)
	}

	var selfSubs int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("subscriber_id = author_id").Count(&selfSubs).Error)
	assert.Zero(t, selfSubs)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DemoPassword)))

	require.NoError(t, f.ClearAll(ctx))
	var users, ingredients int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&ingredients).Error)
	assert.Zero(t, users)
	assert.Equal(t, int64(3), ingredients)
}

func TestFactoryDemoNeedsIngredients(t *testing.T) {
	f := NewFactory(newTestDB(t), Options{Seed: 1, SkipBcrypt: true})
	_, err := f.Demo(context.Background(), DemoSpec{Users: 1, RecipesPerUser: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load ingredients first")
}

func TestCreateUserOverrides(t *testing.T) {
	f := NewFactory(newTestDB(t), Options{Seed: 7, SkipBcrypt: true})
	u, err := f.CreateUser(context.Background(), func(u *models.User) {
		u.Username = "chef"
		u.Email = "chef@example.org"
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "chef", u.Username)
}
