package sync

import (
	"context"

	"ncaab_v2/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// backfillGaps finds completed events the summary phase missed, in
// past runs or this one, and re-runs the summary pipeline over them.
// Events stamped summary_fetched_at never come back here, so repeated
// runs converge even when the upstream payload is permanently empty.
func (o *Orchestrator) backfillGaps(ctx context.Context) {
	statGaps, err := o.store.ListStatGaps(ctx, o.opts.BackfillLimit)
	if err != nil {
		o.report.AddError("listing stat gaps", err)
		return
	}
	lineGaps, err := o.store.ListLineScoreGaps(ctx, o.opts.BackfillLimit)
	if err != nil {
		o.report.AddError("listing line score gaps", err)
		return
	}

	seen := make(map[int]struct{}, len(statGaps)+len(lineGaps))
	var ids []int
	for _, batch := range [][]int{statGaps, lineGaps} {
		for _, id := range batch {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) > o.opts.BackfillLimit {
		ids = ids[:o.opts.BackfillLimit]
	}

	metrics.GapEvents.Set(float64(len(ids)))
	if len(ids) == 0 {
		log.Info().Msg("No gaps to backfill")
		return
	}

	log.Info().
		Int("stat_gaps", len(statGaps)).
		Int("line_score_gaps", len(lineGaps)).
		Int("backfilling", len(ids)).
		Msg("Backfilling summary gaps")

	o.report.Backfilled += len(ids)
	o.syncSummaries(ctx, ids)
}
