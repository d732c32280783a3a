// Command seed loads the demo catalog into the database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/internx/internx/internal/adapter/observability"
	"github.com/internx/internx/internal/adapter/repo/postgres"
	"github.com/internx/internx/internal/catalogseed"
	"github.com/internx/internx/internal/config"
	"github.com/internx/internx/internal/usecase"
)

func main() {
	reset := flag.Bool("reset", false, "truncate all tables before seeding")
	file := flag.String("file", "", "catalog YAML file (defaults to the built-in demo catalog)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	slog.SetDefault(observability.SetupLogger(cfg))

	catalog := catalogseed.Default()
	if *file != "" {
		if catalog, err = catalogseed.LoadFile(*file); err != nil {
			slog.Error("load catalog failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL, cfg.DBConnectRetries)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("db migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
	if *reset {
		if err := postgres.Truncate(ctx, pool); err != nil {
			slog.Error("reset failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("all tables truncated")
	}

	seeder := catalogseed.Seeder{
		Users:       usecase.NewUserService(postgres.NewUserRepo(pool)),
		Preferences: usecase.NewPreferencesService(postgres.NewPreferencesRepo(pool)),
		Analyses:    postgres.NewAnalysisRepo(pool),
		Internships: usecase.NewInternshipService(postgres.NewInternshipRepo(pool)),
	}
	res, err := seeder.Run(ctx, catalog)
	if err != nil {
		slog.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("seed complete",
		slog.Int("users", res.Users),
		slog.Int("skipped", res.Skipped),
		slog.Int("analyses", res.Analyses),
		slog.Int("internships", res.Internships))
}
