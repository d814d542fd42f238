package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	IngredientKeyPrefix       = "ingredient:%d"
	IngredientSearchKeyPrefix = "ingredients:search:%s"
	AuthorRecipeCountPrefix   = "author:%d:recipes_count"
	UserKeyPrefix             = "user:%d"
)

const (
	IngredientTTL        = 1 * time.Hour
	IngredientSearchTTL  = 10 * time.Minute
	AuthorRecipeCountTTL = 5 * time.Minute
	UserTTL              = 5 * time.Minute
)

func IngredientKey(id uint) string {
	return fmt.Sprintf(IngredientKeyPrefix, id)
}

// IngredientSearchKey hashes the (lowercased) filter so arbitrary user input
// never ends up in a key verbatim.
func IngredientSearchKey(name, search string) string {
	sum := sha1.Sum([]byte(strings.ToLower(name) + "\x00" + strings.ToLower(search)))
	return fmt.Sprintf(IngredientSearchKeyPrefix, hex.EncodeToString(sum[:8]))
}

func AuthorRecipeCountKey(authorID uint) string {
	return fmt.Sprintf(AuthorRecipeCountPrefix, authorID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePattern removes every key matching pattern using SCAN.
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateAuthorRecipes(ctx context.Context, authorID uint) {
	Invalidate(ctx, AuthorRecipeCountKey(authorID))
}

// InvalidateIngredients drops every cached ingredient lookup after a bulk load.
func InvalidateIngredients(ctx context.Context) {
	InvalidatePattern(ctx, "ingredient:*")
	InvalidatePattern(ctx, "ingredients:search:*")
}
