package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/metrics"
	"ncaab_v2/ingestion/internal/parser"

	"github.com/rs/zerolog/log"
)

type summaryResult struct {
	eventID  int
	rows     *parser.SummaryRows
	err      error
	notFound bool
}

// syncSummaries fetches game summaries for the given events with a
// worker pool and collects the parsed rows into the write buffers.
// A single collector loop owns the buffers, so batched writes never
// contend with each other; buffers flush whenever a batch worth of
// summaries has come in.
func (o *Orchestrator) syncSummaries(ctx context.Context, eventIDs []int) {
	if len(eventIDs) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := o.opts.Workers
	if workers > len(eventIDs) {
		workers = len(eventIDs)
	}
	log.Info().Int("events", len(eventIDs)).Int("workers", workers).Msg("Fetching game summaries")

	jobs := make(chan int)
	results := make(chan summaryResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				res := summaryResult{eventID: id}
				data, err := o.fetcher.GetGameSummary(ctx, id)
				if err != nil {
					res.err = err
					res.notFound = client.IsNotFound(err)
				} else {
					res.rows, res.err = parser.ParseSummary(id, data)
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range eventIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	sinceFlush := 0
	for res := range results {
		switch {
		case res.notFound:
			// No summary upstream. Stamp it anyway so gap detection
			// stops re-requesting an event that will never have one.
			o.fetchedIDs = append(o.fetchedIDs, res.eventID)
			log.Debug().Int("event_id", res.eventID).Msg("Summary not found")
		case res.err != nil:
			o.report.AddError(fmt.Sprintf("summary %d", res.eventID), res.err)
			continue
		default:
			o.collectSummary(res.eventID, res.rows)
			o.report.SummariesFetched++
		}

		sinceFlush++
		if sinceFlush >= o.opts.BatchSize {
			o.flushSummaries(ctx)
			sinceFlush = 0
		}
	}
	o.flushSummaries(ctx)
}

func (o *Orchestrator) collectSummary(eventID int, rows *parser.SummaryRows) {
	o.teamStats = append(o.teamStats, rows.TeamStats...)
	o.playerStats = append(o.playerStats, rows.PlayerStats...)
	o.odds = append(o.odds, rows.Odds...)
	if rows.Prediction != nil {
		o.predictions = append(o.predictions, *rows.Prediction)
	}
	if rows.LineScores != nil {
		o.lineScores = append(o.lineScores, *rows.LineScores)
	}
	for _, id := range rows.AthleteIDs {
		o.seenAthletes[id] = struct{}{}
	}
	// Stamped even when the payload carried nothing usable
	o.fetchedIDs = append(o.fetchedIDs, eventID)
}

// flushSummaries drains every write buffer. A failed batch is recorded
// and the next buffer still goes out; its rows are lost from this run
// and gap detection heals them later. The fetched-at stamps go last and
// only when every write landed, so a failed event stays in the gap set.
func (o *Orchestrator) flushSummaries(ctx context.Context) {
	ok := true

	if len(o.teamStats) > 0 {
		if o.flushBatch("team_stats", len(o.teamStats), func() error {
			return o.store.UpsertTeamStats(ctx, o.teamStats)
		}) {
			o.report.TeamStatsRows += len(o.teamStats)
		} else {
			ok = false
		}
		o.teamStats = o.teamStats[:0]
	}
	if len(o.playerStats) > 0 {
		if o.flushBatch("player_stats", len(o.playerStats), func() error {
			return o.store.UpsertPlayerStats(ctx, o.playerStats)
		}) {
			o.report.PlayerStatsRows += len(o.playerStats)
		} else {
			ok = false
		}
		o.playerStats = o.playerStats[:0]
	}
	if len(o.odds) > 0 {
		if o.flushBatch("odds", len(o.odds), func() error {
			return o.store.UpsertOdds(ctx, o.odds)
		}) {
			o.report.OddsRows += len(o.odds)
		} else {
			ok = false
		}
		o.odds = o.odds[:0]
	}
	if len(o.predictions) > 0 {
		if o.flushBatch("predictions", len(o.predictions), func() error {
			return o.store.UpsertPredictions(ctx, o.predictions)
		}) {
			o.report.PredictionRows += len(o.predictions)
		} else {
			ok = false
		}
		o.predictions = o.predictions[:0]
	}
	if len(o.lineScores) > 0 {
		if o.flushBatch("line_scores", len(o.lineScores), func() error {
			return o.store.UpdateLineScores(ctx, o.lineScores)
		}) {
			o.report.LineScoreRows += len(o.lineScores)
		} else {
			ok = false
		}
		o.lineScores = o.lineScores[:0]
	}

	if len(o.fetchedIDs) > 0 {
		if !ok {
			o.fetchedIDs = o.fetchedIDs[:0]
			return
		}
		if err := o.store.MarkSummaryFetched(ctx, o.fetchedIDs); err != nil {
			o.report.AddError("marking summaries fetched", err)
		}
		o.fetchedIDs = o.fetchedIDs[:0]
	}
}

// flushBatch reports success; a failure is recorded, not returned
func (o *Orchestrator) flushBatch(kind string, rows int, write func() error) bool {
	started := time.Now()
	if err := write(); err != nil {
		o.report.AddError("flushing "+kind, err)
		metrics.RecordError("store", kind)
		log.Error().Err(err).Str("kind", kind).Int("rows", rows).Msg("Batch write failed")
		return false
	}
	metrics.RecordBatchWrite(kind, rows, time.Since(started).Seconds())
	return true
}
