package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http/httptest"
	"testing"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	t      *testing.T
	server *Server
	app    *fiber.App
	mr     *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		Env:           "test",
		JWTSecret:     testSecret,
		JWTTTLHours:   1,
		FeatureFlags:  "recipe_notifications=on,short_links=on",
		MediaRoot:     t.TempDir(),
		MediaURL:      "/media",
		ShortLinkBase: "https://foodgram.test",
		FrontendURL:   "https://app.foodgram.test",
		PageSize:      10,
		MaxPageSize:   100,
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = rdb.Close()
	})

	return &testEnv{t: t, server: s, app: s.App(), mr: mr}
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(method, path string, body any, token string) (int, []byte) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

// register creates an account through the API and returns its id and token.
func (e *testEnv) register(username string) (uint, string) {
	e.t.Helper()
	status, body := e.do("POST", "/api/users/", map[string]string{
		"email":      username + "@example.org",
		"username":   username,
		"first_name": "First",
		"last_name":  "Last",
		"password":   "Kitchen-Sink-2024",
	}, "")
	require.Equal(e.t, fiber.StatusCreated, status, string(body))
	var created models.UserCreated
	require.NoError(e.t, json.Unmarshal(body, &created))

	status, body = e.do("POST", "/api/auth/token/login/", map[string]string{
		"email":    username + "@example.org",
		"password": "Kitchen-Sink-2024",
	}, "")
	require.Equal(e.t, fiber.StatusOK, status, string(body))
	var login struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(e.t, json.Unmarshal(body, &login))
	return created.ID, login.AuthToken
}

func (e *testEnv) ingredient(name, unit string) models.Ingredient {
	e.t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(e.t, e.server.db.Create(&ing).Error)
	return ing
}

func (e *testEnv) createRecipe(token, name string, items ...map[string]any) models.Recipe {
	e.t.Helper()
	status, body := e.do("POST", "/api/recipes/", map[string]any{
		"name":         name,
		"text":         "Mix everything.",
		"cooking_time": 20,
		"image":        testImage(e.t),
		"ingredients":  items,
	}, token)
	require.Equal(e.t, fiber.StatusCreated, status, string(body))
	var r models.Recipe
	require.NoError(e.t, json.Unmarshal(body, &r))
	return r
}

func item(id uint, amount int) map[string]any {
	return map[string]any{"id": id, "amount": amount}
}

func testImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}
