package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/taitfuller/feedr-backend/internal/cache"
	"github.com/taitfuller/feedr-backend/internal/config"
	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/internal/seed"
	"github.com/taitfuller/feedr-backend/pkg/database"
	"github.com/taitfuller/feedr-backend/pkg/logger"
)

func main() {
	app := flag.String("app", "Demo App", "template app name")
	githubID := flag.Int64("github-id", 1, "GitHub id of the dev user")
	name := flag.String("name", "Developer", "display name of the dev user")
	seedValue := flag.Uint64("seed", 1, "random seed for review generation")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("feedr-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		log.Error("connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	seeder := seed.NewSeeder(pool)

	tpl := seed.Template(*app, seed.DefaultOptions(time.Now()), rand.New(rand.NewPCG(*seedValue, *seedValue)))
	if err := seeder.UpsertApp(ctx, tpl); err != nil {
		log.Error("seed app", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seeded app template",
		slog.String("app", tpl.Name),
		slog.Int("topics", len(tpl.Topics)),
		slog.Int("reviews", tpl.ReviewCount()),
	)
	invalidateAppCache(ctx, cfg, log)

	userID, err := seeder.UpsertUser(ctx, &domain.User{
		GitHubID:          *githubID,
		DisplayName:       *name,
		GitHubAccessToken: os.Getenv("SEED_GITHUB_TOKEN"),
	})
	if err != nil {
		log.Error("seed user", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seeded user", slog.String("user_id", userID))
}

// invalidateAppCache drops the cached app names so a new template shows up in
// the app list before the TTL runs out. Redis is optional, as in the API.
func invalidateAppCache(ctx context.Context, cfg *config.Config, log *slog.Logger) {
	client, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		log.Warn("redis unavailable, app cache not invalidated", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	if err := cache.NewAppCatalog(client, cfg.AppCacheTTL).Invalidate(ctx); err != nil {
		log.Warn("invalidate app cache", slog.String("error", err.Error()))
		return
	}
	log.Info("app cache invalidated")
}
