// Command ingest runs one ingestion cycle against the configured feeds,
// writes the results as CSV and XLSX, and prints the run report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	"github.com/jasonmurdy-collab/MarketPulse/internal/exporter"
	"github.com/jasonmurdy-collab/MarketPulse/internal/feeds"
	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	"github.com/jasonmurdy-collab/MarketPulse/internal/services"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, nil); err != nil {
		slog.Error("Ingestion failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run executes the command. A nil fetcher selects the network feed client.
func run(ctx context.Context, args []string, stdout io.Writer, fetcher feeds.Fetcher) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	sourcesFile := fs.String("sources", "", "feed sources file (defaults to the configured sources file)")
	outDir := fs.String("out", "", "directory for weekly.csv, monthly.csv and market.xlsx; empty skips export")
	display := fs.Bool("display", false, "export display formatted values instead of raw numbers")
	timeout := fs.Duration("timeout", 0, "overall deadline for the cycle; zero means none")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *sourcesFile != "" {
		cfg.Feeds.SourcesFile = *sourcesFile
	}

	// stdout carries the report, so logs go to stderr
	logger := infrastructure.NewLoggerWithWriter(os.Stderr, cfg.Logging.Level)

	sources, err := config.LoadSources(cfg.Feeds.SourcesFile)
	if err != nil {
		return err
	}
	if fetcher == nil {
		fetcher = feeds.NewClient(cfg.Fetch, logger)
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	st := store.New()
	ingestion := services.NewIngestionService(sources, fetcher, st, logger)

	started := time.Now()
	report, runErr := ingestion.Run(ctx)
	logger.InfoContext(ctx, "ingestion finished",
		slog.Int("weekly", report.Weekly),
		slog.Int("monthly", report.Monthly),
		slog.Int("failed_sources", report.FailedSources()),
		slog.Duration("elapsed", time.Since(started)))

	if *outDir != "" {
		paths, err := exporter.ExportDir(*outDir, st.Snapshot(), exporter.Options{Display: *display, BOMPrefix: *display})
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		for _, p := range paths {
			logger.InfoContext(ctx, "export written", slog.String("path", p))
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return runErr
}
