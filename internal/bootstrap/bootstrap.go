// Package bootstrap wires configuration into the database, browser and domain
// services shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobscout/platform/internal/browser"
	"github.com/jobscout/platform/internal/config"
	"github.com/jobscout/platform/internal/database"
	"github.com/jobscout/platform/internal/domain"
	"github.com/jobscout/platform/internal/domain/jobs"
	"github.com/jobscout/platform/internal/storage/memory"
	pgstorage "github.com/jobscout/platform/internal/storage/postgres"
)

// OpenDatabase connects to Postgres and applies pending migrations.
// It returns nil when the memory backend is configured.
func OpenDatabase(ctx context.Context, cfg config.Config, logr *slog.Logger) (*database.DB, error) {
	if cfg.DataBackend != "postgres" {
		return nil, nil
	}

	db, err := database.Connect(ctx, database.Options{
		Driver:          cfg.DatabaseDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		Logger:          logr,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	migrator := database.NewSQLMigrator(db.DB, database.MigrationsFS(), database.MigrationsDir, logr)
	if err := db.RunMigrations(ctx, migrator); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migrations: %w", err)
	}
	return db, nil
}

// BrowserOptions maps configuration onto the Chromium scraper.
func BrowserOptions(cfg config.Config, logr *slog.Logger) browser.Options {
	return browser.Options{
		ChromePath:         cfg.Browser.ChromePath,
		Headless:           cfg.Browser.Headless,
		NoSandbox:          cfg.Browser.NoSandbox,
		UserAgent:          cfg.Browser.UserAgent,
		WindowWidth:        cfg.Browser.WindowWidth,
		WindowHeight:       cfg.Browser.WindowHeight,
		NavigationTimeout:  cfg.Browser.NavigationTimeout,
		ResultsWaitTimeout: cfg.Browser.ResultsWaitTimeout,
		SearchURL:          cfg.Scrape.SearchURL,
		Collect: jobs.CollectOptions{
			MaxPasses:    cfg.Scrape.MaxPasses,
			StablePasses: cfg.Scrape.StablePasses,
			ScrollDelta:  cfg.Scrape.ScrollDelta,
			PauseMin:     cfg.Scrape.PauseMin,
			PauseMax:     cfg.Scrape.PauseMax,
		},
		Logger: logr,
	}
}

// RunRepository selects the run store for the configured backend.
func RunRepository(cfg config.Config, db *database.DB) (jobs.Repository, error) {
	switch cfg.DataBackend {
	case "memory":
		return memory.NewRunRepository(), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires database connection")
		}
		return pgstorage.NewRunRepository(db.DB), nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}

// Container builds the domain services for the configured backend.
func Container(cfg config.Config, logr *slog.Logger, db *database.DB, scraper jobs.Scraper, recorder jobs.Recorder) (domain.Container, error) {
	repo, err := RunRepository(cfg, db)
	if err != nil {
		return domain.Container{}, err
	}
	logr.Info("using run repository", "backend", cfg.DataBackend)

	return domain.New(domain.Options{
		RunRepo:        repo,
		Scraper:        scraper,
		Recorder:       recorder,
		Logger:         logr,
		MaxConcurrent:  cfg.Scrape.MaxConcurrent,
		ScrapeTimeout:  cfg.Scrape.Timeout,
		CacheTTL:       cfg.Scrape.CacheTTL,
		MaxJobsLimit:   cfg.Scrape.MaxJobsLimit,
		DefaultMaxJobs: cfg.Scrape.DefaultMaxJobs,
	}), nil
}
