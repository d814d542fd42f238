package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type payload struct {
	Name string `json:"name"`
}

func TestAsideFetchesOnceThenHits(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			dest.Name = "salt"
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, IngredientKey(1), &first, time.Minute, fetch(&first)))
	assert.Equal(t, "salt", first.Name)
	assert.True(t, mr.Exists(IngredientKey(1)))

	var second payload
	require.NoError(t, Aside(ctx, IngredientKey(1), &second, time.Minute, fetch(&second)))
	assert.Equal(t, "salt", second.Name)
	assert.Equal(t, 1, calls)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupRedis(t)
	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestAsideWithoutRedis(t *testing.T) {
	SetClient(nil)
	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Name = "pepper"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "pepper", dest.Name)
}

func TestInvalidateIngredients(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, IngredientKey(1), payload{Name: "a"}, time.Minute))
	require.NoError(t, SetJSON(ctx, IngredientSearchKey("sa", ""), []payload{{Name: "salt"}}, time.Minute))
	require.NoError(t, SetJSON(ctx, UserKey(1), payload{Name: "u"}, time.Minute))

	InvalidateIngredients(ctx)

	assert.False(t, mr.Exists(IngredientKey(1)))
	assert.False(t, mr.Exists(IngredientSearchKey("sa", "")))
	assert.True(t, mr.Exists(UserKey(1)))
}

func TestIngredientSearchKeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, IngredientSearchKey("Salt", ""), IngredientSearchKey("salt", ""))
	assert.NotEqual(t, IngredientSearchKey("salt", ""), IngredientSearchKey("", "salt"))
}

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "ingredients", keyFamily(IngredientSearchKey("a", "")))
	assert.Equal(t, "author", keyFamily(AuthorRecipeCountKey(3)))
	assert.Equal(t, "plain", keyFamily("plain"))
}
