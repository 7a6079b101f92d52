package scheduler

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"ncaab_v2/ingestion/internal/config"
	"ncaab_v2/ingestion/internal/sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SyncFunc runs one sync with the given options. The worker wires in
// the orchestrator; tests wire in fakes.
type SyncFunc func(ctx context.Context, opts sync.Options) (*sync.RunReport, error)

// GradeFunc grades pending predictions and returns how many it graded
type GradeFunc func(ctx context.Context) (int, error)

// Scheduler runs the nightly full sync and the incremental refresh.
// Runs never overlap: a tick that lands while a sync is in flight is
// skipped, not queued.
type Scheduler struct {
	cfg      *config.Config
	runSync  SyncFunc
	grade    GradeFunc
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}

	mu stdsync.Mutex // held for the duration of a run
}

func New(cfg *config.Config, runSync SyncFunc, grade GradeFunc) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		runSync:  runSync,
		grade:    grade,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start registers the nightly cron job and the incremental ticker
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlySyncCron, func() {
		s.runNightly(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly sync: %w", err)
	}
	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlySyncCron).
		Msg("Nightly sync scheduled")

	interval := time.Duration(s.cfg.IncrementalInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Incremental sync started")

	go s.pollIncremental(ctx)

	return nil
}

// Stop stops the scheduler. A run in flight finishes on its own.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) pollIncremental(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping incremental sync")
			return
		case <-s.stopChan:
			return
		case <-s.ticker.C:
			s.runIncremental(ctx)
		}
	}
}

// RunNightly is the full pass: the whole configured window, gap
// backfill, rankings, standings, entity backfill, then grading.
// Exported so the worker can trigger it on boot.
func (s *Scheduler) RunNightly(ctx context.Context) {
	s.runNightly(ctx)
}

func (s *Scheduler) runNightly(ctx context.Context) {
	if !s.mu.TryLock() {
		log.Warn().Msg("Nightly sync skipped, previous run still in flight")
		return
	}
	defer s.mu.Unlock()

	log.Info().Msg("Running nightly sync...")
	end := time.Now().UTC()
	report, err := s.runSync(ctx, sync.Options{
		StartDate:     end.AddDate(0, 0, -s.cfg.SyncDays),
		EndDate:       end,
		Season:        s.cfg.Season,
		Workers:       s.cfg.SyncWorkers,
		BatchSize:     s.cfg.SyncBatchSize,
		BackfillLimit: s.cfg.BackfillLimit,
		AthleteLimit:  s.cfg.AthleteLimit,
		VenueLimit:    s.cfg.VenueLimit,
	})
	if err != nil {
		log.Error().Err(err).Msg("Nightly sync failed")
		return
	}
	log.Info().
		Str("run_id", report.RunID).
		Int("errors", len(report.Errors)).
		Dur("duration", report.Duration).
		Msg("Nightly sync complete")

	if s.grade != nil {
		if graded, err := s.grade(ctx); err != nil {
			log.Error().Err(err).Msg("Prediction grading failed")
		} else if graded > 0 {
			log.Info().Int("graded", graded).Msg("Predictions graded")
		}
	}
}

// runIncremental keeps the last couple of days fresh between nightly
// passes. Rankings, standings and entities only move once a day, so
// the incremental pass leaves them alone.
func (s *Scheduler) runIncremental(ctx context.Context) {
	if !s.mu.TryLock() {
		log.Debug().Msg("Incremental sync skipped, previous run still in flight")
		return
	}
	defer s.mu.Unlock()

	end := time.Now().UTC()
	report, err := s.runSync(ctx, sync.Options{
		StartDate:     end.AddDate(0, 0, -2),
		EndDate:       end,
		Season:        s.cfg.Season,
		Workers:       s.cfg.SyncWorkers,
		BatchSize:     s.cfg.SyncBatchSize,
		BackfillLimit: s.cfg.BackfillLimit,
		SkipRankings:  true,
		SkipStandings: true,
		SkipEntities:  true,
	})
	if err != nil {
		log.Error().Err(err).Msg("Incremental sync failed")
		return
	}
	log.Debug().
		Str("run_id", report.RunID).
		Int("events", report.EventsUpdated).
		Int("summaries", report.SummariesFetched).
		Msg("Incremental sync complete")
}
