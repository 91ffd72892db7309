package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jobscout/platform/internal/auth"
	"github.com/jobscout/platform/internal/bootstrap"
	"github.com/jobscout/platform/internal/browser"
	"github.com/jobscout/platform/internal/config"
	"github.com/jobscout/platform/internal/domain/jobs"
	"github.com/jobscout/platform/internal/httpapi"
	"github.com/jobscout/platform/internal/logger"
)

type deps struct {
	loadConfig func() (config.Config, error)
	newScraper func(cfg config.Config, logr *slog.Logger) jobs.Scraper
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		newScraper: func(cfg config.Config, logr *slog.Logger) jobs.Scraper {
			return browser.New(bootstrap.BrowserOptions(cfg, logr))
		},
	}
}

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:          "jobscout",
		Short:        "Collect job postings from a search results page",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	root.AddCommand(newScrapeCmd(d))
	root.AddCommand(newMigrateCmd(d))
	root.AddCommand(newTokenCmd())
	return root
}

func newScrapeCmd(d deps) *cobra.Command {
	var search jobs.Search

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one search and print the collected postings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)

			ctx := cmd.Context()
			db, err := bootstrap.OpenDatabase(ctx, cfg, logr)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			container, err := bootstrap.Container(cfg, logr, db, d.newScraper(cfg, logr), nil)
			if err != nil {
				return err
			}
			// On interrupt, stop the browser and record the run before exiting.
			defer container.Jobs.Close(context.WithoutCancel(ctx))

			run, err := container.Jobs.Scrape(ctx, search)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), httpapi.ScrapeResponse{Count: run.Count, Jobs: run.Postings})
		},
	}

	cmd.Flags().StringVar(&search.JobTitle, "title", "", "Job title to search for")
	cmd.Flags().StringVar(&search.Location, "location", "", "Location to search in")
	cmd.Flags().BoolVar(&search.EasyApply, "easy-apply", false, "Only include Easy Apply postings")
	cmd.Flags().IntVar(&search.MaxJobs, "max", 0, "Maximum postings to collect (default DEFAULT_MAX_JOBS)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("location")
	return cmd
}

func newMigrateCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DataBackend != "postgres" {
				return errors.New("migrate requires DATA_BACKEND=postgres")
			}
			logr := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)

			db, err := bootstrap.OpenDatabase(cmd.Context(), cfg, logr)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a random value suitable for API_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.GenerateToken()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
