// Package bootstrap wires the process-wide runtime shared by the API server
// and the management CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
	"foodgram/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceName identifies the process in logs, metrics and traces.
const ServiceName = "foodgram-api"

// Options control runtime initialization behavior.
type Options struct {
	// IngredientFixture, when set, is loaded after the database connects.
	IngredientFixture string
}

// InitRuntime connects to the database and Redis and optionally loads the
// ingredient fixture. A nil Redis client means the API runs without cache
// and realtime delivery.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.IngredientFixture != "" {
		n, err := seed.LoadIngredients(context.Background(), repository.NewIngredientRepository(db), opts.IngredientFixture)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load ingredients: %w", err)
		}
		middleware.Logger.Info("ingredient fixture loaded",
			slog.String("path", opts.IngredientFixture),
			slog.Int64("inserted", n),
		)
	}

	return db, r, nil
}

// InitObservability configures the global logger for cfg.Env and starts
// tracing. The returned function flushes pending spans.
func InitObservability(cfg *config.Config) (func(context.Context) error, error) {
	middleware.Configure(cfg.Env)
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
}
