package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ncaab_v2/ingestion/internal/accuracy"
	"ncaab_v2/ingestion/internal/cache"
	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/config"
	"ncaab_v2/ingestion/internal/repository"
	syncer "ncaab_v2/ingestion/internal/sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// cmd/update runs one sync pass and exits. Built for cron jobs and
// manual invocation; the long-running path is cmd/worker.
func main() {
	var (
		days          = flag.Int("days", 0, "sync the last N days (default from SYNC_DAYS)")
		startDate     = flag.String("start-date", "", "window start, YYYY-MM-DD (overrides -days)")
		endDate       = flag.String("end-date", "", "window end, YYYY-MM-DD (default today)")
		season        = flag.Int("season", 0, "season year (default from SEASON)")
		workers       = flag.Int("workers", 0, "summary fetch workers (default from SYNC_WORKERS)")
		batchSize     = flag.Int("batch-size", 0, "rows per batched write (default from SYNC_BATCH_SIZE)")
		backfillLimit = flag.Int("backfill-limit", 0, "max events to backfill per run")
		skipRankings  = flag.Bool("skip-rankings", false, "skip the poll refresh")
		skipStandings = flag.Bool("skip-standings", false, "skip the standings refresh")
		skipEntities  = flag.Bool("skip-entities", false, "skip athlete/venue backfill")
		skipBackfill  = flag.Bool("skip-backfill", false, "skip gap detection and repair")
		backfillOnly  = flag.Bool("backfill-only", false, "skip the event window, repair gaps only")
		runAccuracy   = flag.Bool("accuracy", false, "grade pending predictions after the sync")
		verbose       = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	setupLogger(*verbose)

	cfg := config.MustLoad()

	opts, err := buildOptions(cfg, *days, *startDate, *endDate, *season,
		*workers, *batchSize, *backfillLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	opts.SkipRankings = *skipRankings
	opts.SkipStandings = *skipStandings
	opts.SkipEntities = *skipEntities
	opts.SkipBackfill = *skipBackfill
	opts.BackfillOnly = *backfillOnly

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	espnClient := client.NewClient(cfg.ESPNBaseURL, cfg.ESPNSiteBaseURL, cfg.ESPNTimeout, cfg.ESPNRateLimit)

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	if redisCache, err := cache.New(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		espnClient.SetCache(redisCache)
	}

	report, err := syncer.New(espnClient, syncer.NewDBStore(db), opts).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	if *runAccuracy {
		if graded, err := accuracy.New(db.Predictions).Run(ctx); err != nil {
			report.AddError("accuracy", err)
		} else {
			log.Info().Int("graded", graded).Msg("Predictions graded")
		}
	}

	fmt.Print(report.Summary())

	// Partial failures are warnings: the run still moved data, and the
	// next run will pick up what this one missed.
	if report.HasErrors() {
		log.Warn().Int("errors", len(report.Errors)).Msg("Sync finished with errors")
	}
}

func buildOptions(cfg *config.Config, days int, startDate, endDate string, season, workers, batchSize, backfillLimit int) (syncer.Options, error) {
	opts := syncer.Options{
		Season:        cfg.Season,
		Workers:       cfg.SyncWorkers,
		BatchSize:     cfg.SyncBatchSize,
		BackfillLimit: cfg.BackfillLimit,
		AthleteLimit:  cfg.AthleteLimit,
		VenueLimit:    cfg.VenueLimit,
	}
	if season > 0 {
		opts.Season = season
	}
	if workers > 0 {
		opts.Workers = workers
	}
	if batchSize > 0 {
		opts.BatchSize = batchSize
	}
	if backfillLimit > 0 {
		opts.BackfillLimit = backfillLimit
	}

	end := time.Now().UTC()
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return opts, fmt.Errorf("parsing -end-date: %w", err)
		}
		end = parsed
	}
	opts.EndDate = end

	switch {
	case startDate != "":
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return opts, fmt.Errorf("parsing -start-date: %w", err)
		}
		opts.StartDate = parsed
	case days > 0:
		opts.StartDate = end.AddDate(0, 0, -days)
	default:
		opts.StartDate = end.AddDate(0, 0, -cfg.SyncDays)
	}

	if opts.StartDate.After(opts.EndDate) {
		return opts, fmt.Errorf("window start %s is after end %s",
			opts.StartDate.Format("2006-01-02"), opts.EndDate.Format("2006-01-02"))
	}
	return opts, nil
}

func setupLogger(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
