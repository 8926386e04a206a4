package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"shelfpull/internal/archive"
	"shelfpull/internal/cli"
	"shelfpull/internal/config"
	"shelfpull/internal/db"
	"shelfpull/internal/fetch"
	"shelfpull/internal/globaltime"
	"shelfpull/internal/logging"
	"shelfpull/internal/normalize"
	"shelfpull/internal/sink"
)

// defaultProductIDs is used when no identifiers are supplied on the command
// line. These are known-good sample ids for smoke runs against the fixture
// server.
var defaultProductIDs = []string{
	"6557751127", "1496314895", "5321127916", "6570902110", "16513673629",
	"2438119712", "631193073", "2995864229", "11381374703", "1415071964",
}

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	outDir := fs.String("out", "", "Output directory for CSV files (overrides SP_OUTPUT_DIR)")
	baseURL := fs.String("base-url", "", "Product endpoint base URL (overrides SP_BASE_URL)")
	concurrency := fs.Int("concurrency", 0, "Concurrent fetch limit (overrides SP_FETCH_CONCURRENCY)")
	timeout := fs.Duration("timeout", 0, "Per-request timeout (overrides SP_FETCH_TIMEOUT)")
	archiveRaw := fs.Bool("archive", false, "Record raw payloads in the archive database")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	applyExportOverrides(cfg, *outDir, *baseURL, *concurrency, *timeout)

	runUUID := uuid.NewString()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	logger = logger.With().Str("run_uuid", runUUID).Logger()

	productIDs := collectProductIDs(fs.Args())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archiveSvc *archive.Service
	var archiveRunID int64
	if *archiveRaw {
		if !cfg.ArchiveConfigured() {
			fmt.Fprintln(os.Stderr, "--archive requires DATABASE_URL to be configured")
			return 2
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("archive database connection failed")
			fmt.Fprintf(os.Stderr, "Failed to connect to archive database: %v\n", err)
			return 1
		}
		defer pool.Close()

		archiveSvc = archive.NewService(pool, logger)
		archiveRunID, err = archiveSvc.BeginRun(ctx, runUUID, cfg.BaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to open archive run")
			fmt.Fprintf(os.Stderr, "Failed to open archive run: %v\n", err)
			return 1
		}
	}

	started := globaltime.UTC()
	logger.Info().
		Int("product_ids", len(productIDs)).
		Str("base_url", cfg.BaseURL).
		Int("concurrency", cfg.FetchConcurrency).
		Msg("export started")

	fetcher := fetch.New(cfg.BaseURL, cfg.FetchConcurrency, cfg.FetchTimeout, logger)
	results := fetcher.FetchAll(ctx, productIDs)

	// Zero raw results is the only fatal batch condition. A batch whose
	// every payload is later dropped during normalization still succeeds.
	if len(results) == 0 {
		logger.Error().Msg("fetch stage produced no results")
		if archiveSvc != nil {
			if failErr := archiveSvc.FailRun(ctx, archiveRunID, errors.New("fetch stage produced no results")); failErr != nil {
				logger.Error().Err(failErr).Msg("failed to mark archive run failed")
			}
		}
		return 1
	}

	archived := 0
	if archiveSvc != nil {
		for _, res := range results {
			inserted, err := archiveSvc.RecordPayload(ctx, archiveRunID, res)
			if err != nil {
				logger.Warn().Err(err).Str("product_id", res.ProductID).Msg("raw payload not archived")
				continue
			}
			if inserted {
				archived++
			}
		}
	}

	tables := normalize.Batch(results)

	writer := sink.NewWriter(cfg.OutputDir, logger)
	if err := writer.WriteAll(tables); err != nil {
		logger.Error().Err(err).Msg("failed to write output tables")
		if archiveSvc != nil {
			if failErr := archiveSvc.FailRun(ctx, archiveRunID, err); failErr != nil {
				logger.Error().Err(failErr).Msg("failed to mark archive run failed")
			}
		}
		return 1
	}

	if archiveSvc != nil {
		if err := archiveSvc.FinishRun(ctx, archiveRunID, len(results), archived); err != nil {
			logger.Error().Err(err).Msg("failed to mark archive run completed")
		}
	}

	logger.Info().
		Int("fetched", len(results)).
		Int("archived", archived).
		Int("products", len(tables.Products)).
		Int("reviews", len(tables.Reviews)).
		Int("aspects", len(tables.Aspects)).
		Int("sponsored_links", len(tables.Sponsored)).
		Dur("elapsed", archive.Elapsed(started)).
		Str("output_dir", cfg.OutputDir).
		Msg("export completed")
	return 0
}

func applyExportOverrides(cfg *config.Config, outDir, baseURL string, concurrency int, timeout time.Duration) {
	if strings.TrimSpace(outDir) != "" {
		cfg.OutputDir = strings.TrimSpace(outDir)
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(baseURL)
	}
	if concurrency > 0 {
		cfg.FetchConcurrency = concurrency
	}
	if timeout > 0 {
		cfg.FetchTimeout = timeout
	}
}

func collectProductIDs(args []string) []string {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		return defaultProductIDs
	}
	return ids
}
