package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/metrics"
	"ncaab_v2/ingestion/internal/models"
	"ncaab_v2/ingestion/internal/parser"

	"github.com/rs/zerolog/log"
)

// Options controls one sync run. Zero values fall back to the
// defaults below, so callers only set what they care about.
type Options struct {
	StartDate time.Time
	EndDate   time.Time
	Season    int

	Workers       int
	BatchSize     int
	BackfillLimit int
	AthleteLimit  int
	VenueLimit    int

	SkipRankings  bool
	SkipStandings bool
	SkipEntities  bool
	SkipBackfill  bool

	// BackfillOnly skips the event window and goes straight to gap
	// repair, rankings, standings and entities.
	BackfillOnly bool
}

const (
	defaultWorkers       = 20
	defaultBatchSize     = 50
	defaultBackfillLimit = 100
	defaultAthleteLimit  = 100
	defaultVenueLimit    = 50
)

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.BackfillLimit <= 0 {
		o.BackfillLimit = defaultBackfillLimit
	}
	if o.AthleteLimit <= 0 {
		o.AthleteLimit = defaultAthleteLimit
	}
	if o.VenueLimit <= 0 {
		o.VenueLimit = defaultVenueLimit
	}
	if o.EndDate.IsZero() {
		o.EndDate = time.Now().UTC()
	}
	if o.StartDate.IsZero() {
		o.StartDate = o.EndDate.AddDate(0, 0, -7)
	}
	if o.Season <= 0 {
		o.Season = seasonForDate(o.EndDate)
	}
}

// seasonForDate maps a calendar date to the season year. Seasons are
// named for the year they end in: November 2025 belongs to 2026.
func seasonForDate(t time.Time) int {
	if t.Month() >= time.August {
		return t.Year() + 1
	}
	return t.Year()
}

// Orchestrator drives one full sync against the upstream API
type Orchestrator struct {
	fetcher Fetcher
	store   Store
	opts    Options

	// Write-side buffers, filled by the summary collector and flushed
	// in batches. Only the collector loop touches them.
	teamStats   []models.TeamStatistics
	playerStats []models.PlayerStatistics
	odds        []models.Odds
	predictions []models.Prediction
	lineScores  []models.LineScoreUpdate
	fetchedIDs  []int

	// Entities discovered while parsing, resolved in the final phase
	seenAthletes map[int]struct{}
	seenVenues   map[int]struct{}

	report *RunReport
}

func New(fetcher Fetcher, store Store, opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		fetcher:      fetcher,
		store:        store,
		opts:         opts,
		seenAthletes: make(map[int]struct{}),
		seenVenues:   make(map[int]struct{}),
	}
}

// Run executes the sync phases in order. Every per-item and per-write
// failure is recorded on the report and the run keeps moving; only
// cancellation aborts it. Setup failures belong to the caller.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	o.report = newRunReport()
	started := time.Now()

	log.Info().
		Str("run_id", o.report.RunID).
		Time("start", o.opts.StartDate).
		Time("end", o.opts.EndDate).
		Int("season", o.opts.Season).
		Int("workers", o.opts.Workers).
		Bool("backfill_only", o.opts.BackfillOnly).
		Msg("Sync run starting")

	if !o.opts.BackfillOnly {
		var completed []int
		o.timePhase(ctx, "events", func() { completed = o.syncEventWindow(ctx) })
		o.timePhase(ctx, "summaries", func() { o.syncSummaries(ctx, completed) })
	}
	if !o.opts.SkipBackfill {
		o.timePhase(ctx, "backfill", func() { o.backfillGaps(ctx) })
	}
	if !o.opts.SkipRankings {
		o.timePhase(ctx, "rankings", func() { o.syncRankings(ctx) })
	}
	if !o.opts.SkipStandings {
		o.timePhase(ctx, "standings", func() { o.syncStandings(ctx) })
	}
	if !o.opts.SkipEntities {
		o.timePhase(ctx, "entities", func() { o.syncEntities(ctx) })
	}

	if counts, err := o.store.VerifyCounts(ctx); err != nil {
		o.report.AddError("verification", err)
	} else {
		o.report.Verification = counts
	}

	o.report.Duration = time.Since(started)

	if err := ctx.Err(); err != nil {
		metrics.RecordSyncRun("cancelled")
		return o.report, err
	}

	status := "success"
	if o.report.HasErrors() {
		status = "partial"
	}
	metrics.RecordSyncRun(status)

	log.Info().
		Str("run_id", o.report.RunID).
		Dur("duration", o.report.Duration).
		Int("events", o.report.EventsUpdated).
		Int("summaries", o.report.SummariesFetched).
		Int("errors", len(o.report.Errors)).
		Msg("Sync run finished")

	return o.report, nil
}

func (o *Orchestrator) timePhase(ctx context.Context, name string, fn func()) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	fn()
	metrics.RecordPhase(name, time.Since(started).Seconds())
	log.Info().Str("phase", name).Dur("elapsed", time.Since(started)).Msg("Phase complete")
}

// syncEventWindow upserts every event in the configured date window
// and returns the IDs of completed games, which feed the summary phase.
func (o *Orchestrator) syncEventWindow(ctx context.Context) []int {
	dates := client.DateRange(o.opts.StartDate, o.opts.EndDate)

	items, err := o.fetcher.GetEvents(ctx, dates)
	if err != nil {
		o.report.AddError("event window "+dates, err)
		return nil
	}
	log.Info().Str("dates", dates).Int("count", len(items)).Msg("Event window fetched")

	resolve := func(ref string) (json.RawMessage, error) {
		return o.fetcher.GetRef(ctx, ref)
	}

	var (
		batch     []*models.Event
		completed []int
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		started := time.Now()
		if err := o.store.UpsertEvents(ctx, batch); err != nil {
			o.report.AddError("events flush", err)
		} else {
			metrics.RecordBatchWrite("events", len(batch), time.Since(started).Seconds())
			o.report.EventsUpdated += len(batch)
		}
		batch = batch[:0]
	}

	for _, item := range items {
		raw, err := o.derefItem(ctx, item)
		if err != nil {
			o.report.AddError("event deref", err)
			continue
		}
		ev, err := parser.ParseEvent(raw, resolve)
		if err != nil {
			o.report.AddError("event parse", err)
			continue
		}
		if ev.VenueID.Valid {
			o.seenVenues[int(ev.VenueID.Int32)] = struct{}{}
		}
		if ev.IsCompleted {
			completed = append(completed, ev.EventID)
		}
		batch = append(batch, ev)
		if len(batch) >= o.opts.BatchSize {
			flush()
		}
	}
	flush()

	o.report.CompletedEvents = len(completed)
	return completed
}

// derefItem resolves a listing item that is only a "$ref" pointer.
// Items with inline bodies pass through untouched.
func (o *Orchestrator) derefItem(ctx context.Context, item json.RawMessage) (json.RawMessage, error) {
	var probe struct {
		ID  string `json:"id"`
		Ref string `json:"$ref"`
	}
	if err := json.Unmarshal(item, &probe); err != nil {
		return nil, fmt.Errorf("probing listing item: %w", err)
	}
	if probe.ID == "" && probe.Ref != "" {
		return o.fetcher.GetRef(ctx, probe.Ref)
	}
	return item, nil
}
