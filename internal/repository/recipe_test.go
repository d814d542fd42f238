package repository

import (
	"context"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewRecipeRepository(db)

	author := f.user("chef")
	salt := f.ingredient("salt", "g")
	water := f.ingredient("water", "ml")

	r := f.recipe(author, "Brine",
		models.RecipeIngredient{IngredientID: salt.ID, Amount: 5},
		models.RecipeIngredient{IngredientID: water.ID, Amount: 500},
	)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef", got.Author.Username)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "salt", got.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 500, got.Ingredients[1].Amount)
}

func TestRecipeRepository_CreateRejectsDuplicateIngredient(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	repo := NewRecipeRepository(db)

	author := f.user("chef")
	salt := f.ingredient("salt", "g")

	r := models.Recipe{AuthorID: author.ID, Name: "Salt", Text: "t", CookingTime: 1, Ingredients: []models.RecipeIngredient{
		{IngredientID: salt.ID, Amount: 1},
		{IngredientID: salt.ID, Amount: 2},
	}}
	err := repo.Create(context.Background(), &r)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "transaction must roll back the recipe row")
}

func TestRecipeRepository_UpdateReplacesIngredients(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewRecipeRepository(db)

	author := f.user("chef")
	salt := f.ingredient("salt", "g")
	sugar := f.ingredient("sugar", "g")
	r := f.recipe(author, "Mix", models.RecipeIngredient{IngredientID: salt.ID, Amount: 5})

	r.Name = "Sweet mix"
	r.CookingTime = 20
	r.Ingredients = []models.RecipeIngredient{{IngredientID: sugar.ID, Amount: 7}}
	require.NoError(t, repo.Update(ctx, &r))

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sweet mix", got.Name)
	assert.Equal(t, 20, got.CookingTime)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, sugar.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, 7, got.Ingredients[0].Amount)

	var rows int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestRecipeRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewRecipeRepository(db)

	author := f.user("chef")
	salt := f.ingredient("salt", "g")
	r := f.recipe(author, "Salt", models.RecipeIngredient{IngredientID: salt.ID, Amount: 1})
	require.NoError(t, NewFavoriteRepository(db).Add(ctx, author.ID, r.ID))
	require.NoError(t, NewCartRepository(db).Add(ctx, author.ID, r.ID))

	require.NoError(t, repo.Delete(ctx, &r))

	for _, m := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCartItem{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T rows must cascade", m)
	}

	err := repo.Delete(ctx, &r)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestRecipeRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewRecipeRepository(db)

	alice := f.user("alice")
	bob := f.user("bob")
	salt := f.ingredient("salt", "g")
	egg := f.ingredient("egg", "pcs")

	r1 := f.recipe(alice, "Salted", models.RecipeIngredient{IngredientID: salt.ID, Amount: 1})
	r2 := f.recipe(alice, "Omelette", models.RecipeIngredient{IngredientID: egg.ID, Amount: 2})
	r3 := f.recipe(bob, "Egg salt", models.RecipeIngredient{IngredientID: egg.ID, Amount: 1}, models.RecipeIngredient{IngredientID: salt.ID, Amount: 1})

	require.NoError(t, NewFavoriteRepository(db).Add(ctx, bob.ID, r1.ID))
	require.NoError(t, NewCartRepository(db).Add(ctx, bob.ID, r2.ID))

	ids := func(rs []models.Recipe) []uint {
		out := make([]uint, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter RecipeFilter
		want   []uint
	}{
		{"all newest first", RecipeFilter{}, []uint{r3.ID, r2.ID, r1.ID}},
		{"by author", RecipeFilter{AuthorID: alice.ID}, []uint{r2.ID, r1.ID}},
		{"by ingredient", RecipeFilter{IngredientIDs: []uint{salt.ID}}, []uint{r3.ID, r1.ID}},
		{"by any of ingredients", RecipeFilter{IngredientIDs: []uint{salt.ID, egg.ID}}, []uint{r3.ID, r2.ID, r1.ID}},
		{"favorited", RecipeFilter{FavoritedBy: bob.ID}, []uint{r1.ID}},
		{"in cart", RecipeFilter{InCartOf: bob.ID}, []uint{r2.ID}},
		{"favorited by someone without favorites", RecipeFilter{FavoritedBy: alice.ID}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter, 10, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("pagination", func(t *testing.T) {
		got, total, err := repo.List(ctx, RecipeFilter{}, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []uint{r2.ID}, ids(got))
	})
}

func TestRecipeRepository_AnnotateAndAuthorQueries(t *testing.T) {
	db := newTestDB(t)
	f := fixtures{db: db, t: t}
	ctx := context.Background()
	repo := NewRecipeRepository(db)

	alice := f.user("alice")
	bob := f.user("bob")
	salt := f.ingredient("salt", "g")
	r1 := f.recipe(alice, "One", models.RecipeIngredient{IngredientID: salt.ID, Amount: 1})
	r2 := f.recipe(alice, "Two", models.RecipeIngredient{IngredientID: salt.ID, Amount: 1})

	require.NoError(t, NewFavoriteRepository(db).Add(ctx, bob.ID, r1.ID))
	require.NoError(t, NewSubscriptionRepository(db).Create(ctx, bob.ID, alice.ID))

	list, _, err := repo.List(ctx, RecipeFilter{}, 10, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Annotate(ctx, bob.ID, list))
	for _, r := range list {
		assert.Equal(t, r.ID == r1.ID, r.IsFavorited)
		assert.False(t, r.IsInShoppingCart)
		assert.True(t, r.Author.IsSubscribed)
	}

	n, err := repo.CountByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	short, err := repo.ListShortByAuthor(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, r2.ID, short[0].ID)

	_, err = repo.GetShort(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
