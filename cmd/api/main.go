package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/jobscout/platform/internal/bootstrap"
	"github.com/jobscout/platform/internal/browser"
	"github.com/jobscout/platform/internal/config"
	"github.com/jobscout/platform/internal/httpapi"
	"github.com/jobscout/platform/internal/logger"
	"github.com/jobscout/platform/internal/metrics"
	"github.com/jobscout/platform/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env, cfg.LogLevel)

	baseCtx := context.Background()

	db, err := bootstrap.OpenDatabase(baseCtx, cfg, logr)
	if err != nil {
		logr.Error("failed to prepare database", "err", err)
		os.Exit(1)
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logr.Error("error closing database", "err", cerr)
			}
		}()
	}

	m := metrics.New()
	scraper := browser.New(bootstrap.BrowserOptions(cfg, logr))

	domainContainer, err := bootstrap.Container(cfg, logr, db, scraper, m)
	if err != nil {
		logr.Error("failed to init domain container", "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, logr, m)

	httpapi.Register(srv.Mux(), logr, domainContainer, httpapi.Options{
		APIToken: cfg.APIToken,
		Prober:   scraper,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logr.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests, then cancel scrapes so their handlers can
	// answer and their browsers exit before the deadline.
	shutdown := make(chan error, 1)
	go func() {
		shutdown <- srv.Shutdown(ctx)
	}()
	if err := domainContainer.Jobs.Close(ctx); err != nil {
		logr.Error("in-flight scrapes did not stop", "err", err)
	}
	if err := <-shutdown; err != nil {
		logr.Error("server shutdown failed", "err", err)
		cancel()
		os.Exit(1)
	}
}
