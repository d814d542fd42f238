package server

import (
	"fmt"
	"strings"
	"testing"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do("POST", "/api/users/", map[string]string{
		"email":      "chef@example.org",
		"username":   "chef",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "Kitchen-Sink-2024",
	}, "")
	require.Equal(t, fiber.StatusCreated, status, string(body))
	created := decode[map[string]any](t, body)
	assert.Equal(t, "chef", created["username"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "is_subscribed")
	assert.NotContains(t, created, "avatar")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"duplicate email", map[string]string{"email": "CHEF@example.org", "username": "chef2", "first_name": "a", "last_name": "b", "password": "Kitchen-Sink-2024"}},
		{"duplicate username", map[string]string{"email": "x@example.org", "username": "chef", "first_name": "a", "last_name": "b", "password": "Kitchen-Sink-2024"}},
		{"bad username", map[string]string{"email": "y@example.org", "username": "bad name", "first_name": "a", "last_name": "b", "password": "Kitchen-Sink-2024"}},
		{"weak password", map[string]string{"email": "z@example.org", "username": "zed", "first_name": "a", "last_name": "b", "password": "12345678"}},
		{"missing fields", map[string]string{"email": "w@example.org"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do("POST", "/api/users/", tt.body, "")
			assert.Equal(t, fiber.StatusBadRequest, status, string(body))
		})
	}
}

func TestTokenLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register("alice")

	status, body := env.do("GET", "/api/users/me/", nil, token)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, "alice", decode[models.User](t, body).Username)

	status, _ = env.do("POST", "/api/auth/token/login/", map[string]string{"email": "alice@example.org", "password": "wrong"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do("POST", "/api/auth/token/logout/", nil, token)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = env.do("GET", "/api/users/me/", nil, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", decode[models.ErrorResponse](t, body).Error)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do("GET", "/api/users/me/", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do("GET", "/api/recipes/", nil, "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do("GET", "/api/recipes/", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUsersListAndProfile(t *testing.T) {
	env := newTestEnv(t)
	aliceID, alice := env.register("alice")
	bobID, _ := env.register("bob")

	status, body := env.do("GET", "/api/users/?limit=1", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	page := decode[Page[models.User]](t, body)
	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, aliceID, page.Results[0].ID)
	require.NotNil(t, page.Next)

	status, _ = env.do("POST", fmt.Sprintf("/api/users/%d/subscribe/", bobID), nil, alice)
	require.Equal(t, fiber.StatusCreated, status)

	status, body = env.do("GET", fmt.Sprintf("/api/users/%d/", bobID), nil, alice)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[models.User](t, body).IsSubscribed)

	status, body = env.do("GET", fmt.Sprintf("/api/users/%d/", bobID), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, decode[models.User](t, body).IsSubscribed)

	status, _ = env.do("GET", "/api/users/9999/", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSetPassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register("alice")

	status, _ := env.do("POST", "/api/users/set_password/", map[string]string{
		"current_password": "wrong-password",
		"new_password":     "Brand-New-Pass-77",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do("POST", "/api/users/set_password/", map[string]string{
		"current_password": "Kitchen-Sink-2024",
		"new_password":     "Brand-New-Pass-77",
	}, token)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = env.do("POST", "/api/auth/token/login/", map[string]string{
		"email": "alice@example.org", "password": "Brand-New-Pass-77",
	}, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAvatar(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register("alice")

	status, body := env.do("PUT", "/api/users/me/avatar/", map[string]string{"avatar": testImage(t)}, token)
	require.Equal(t, fiber.StatusOK, status, string(body))
	url := decode[map[string]string](t, body)["avatar"]
	assert.True(t, strings.HasPrefix(url, "/media/avatars/"), url)

	status, body = env.do("GET", "/api/users/me/", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	me := decode[models.User](t, body)
	require.NotNil(t, me.Avatar)
	assert.Equal(t, url, *me.Avatar)

	status, _ = env.do("GET", url, nil, "")
	assert.Equal(t, fiber.StatusOK, status, "avatar is served")

	status, _ = env.do("PUT", "/api/users/me/avatar/", map[string]string{}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do("DELETE", "/api/users/me/avatar/", nil, token)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, body = env.do("GET", "/api/users/me/", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, decode[models.User](t, body).Avatar)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	aliceID, alice := env.register("alice")
	bobID, bob := env.register("bob")
	salt := env.ingredient("salt", "g")
	for i := 0; i < 3; i++ {
		env.createRecipe(bob, fmt.Sprintf("Recipe %d", i), item(salt.ID, i+1))
	}

	status, body := env.do("POST", fmt.Sprintf("/api/users/%d/subscribe/", aliceID), nil, alice)
	assert.Equal(t, fiber.StatusBadRequest, status, "self subscription")
	assert.Equal(t, models.CodeConflict, decode[models.ErrorResponse](t, body).Code)

	status, _ = env.do("DELETE", fmt.Sprintf("/api/users/%d/subscribe/", bobID), nil, alice)
	assert.Equal(t, fiber.StatusBadRequest, status, "removing an absent subscription")

	status, body = env.do("POST", fmt.Sprintf("/api/users/%d/subscribe/?recipes_limit=2", bobID), nil, alice)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	entry := decode[models.SubscriptionEntry](t, body)
	assert.True(t, entry.IsSubscribed)
	assert.Len(t, entry.Recipes, 2)
	assert.Equal(t, int64(3), entry.RecipesCount)
	assert.Equal(t, "Recipe 2", entry.Recipes[0].Name, "newest first")

	status, _ = env.do("POST", fmt.Sprintf("/api/users/%d/subscribe/", bobID), nil, alice)
	assert.Equal(t, fiber.StatusBadRequest, status, "duplicate")

	status, _ = env.do("POST", "/api/users/9999/subscribe/", nil, alice)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = env.do("GET", "/api/users/subscriptions/?recipes_limit=1", nil, alice)
	require.Equal(t, fiber.StatusOK, status)
	page := decode[Page[models.SubscriptionEntry]](t, body)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, bobID, page.Results[0].ID)
	assert.Len(t, page.Results[0].Recipes, 1)
	assert.Equal(t, int64(3), page.Results[0].RecipesCount)

	status, _ = env.do("DELETE", fmt.Sprintf("/api/users/%d/subscribe/", bobID), nil, alice)
	assert.Equal(t, fiber.StatusNoContent, status)
}
