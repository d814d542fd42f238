package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T, redisURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: filepath.Join(t.TempDir(), "foodgram.db"),
		RedisURL:     redisURL,
	}
}

func TestInitRuntimeLoadsFixture(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { cache.SetClient(nil) })

	fixture := filepath.Join(t.TempDir(), "ingredients.yml")
	require.NoError(t, os.WriteFile(fixture, []byte("- name: salt\n  measurement_unit: g\n"), 0o600))

	db, rdb, err := InitRuntime(sqliteConfig(t, mr.Addr()), Options{IngredientFixture: fixture})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() {
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var ing models.Ingredient
	require.NoError(t, db.Where("name = ?", "salt").First(&ing).Error)
	assert.Equal(t, "g", ing.MeasurementUnit)
}

func TestInitRuntimeWithoutRedis(t *testing.T) {
	t.Cleanup(func() { cache.SetClient(nil) })

	db, rdb, err := InitRuntime(sqliteConfig(t, "redis://127.0.0.1:1/0"), Options{})
	require.NoError(t, err)
	assert.Nil(t, rdb)
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func TestInitRuntimeBadFixture(t *testing.T) {
	t.Cleanup(func() { cache.SetClient(nil) })

	_, _, err := InitRuntime(sqliteConfig(t, "127.0.0.1:1"), Options{
		IngredientFixture: filepath.Join(t.TempDir(), "missing.yml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load ingredients")
}

func TestInitObservabilityDisabledTracing(t *testing.T) {
	shutdown, err := InitObservability(&config.Config{Env: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
