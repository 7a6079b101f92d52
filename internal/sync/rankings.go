package sync

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/models"
	"ncaab_v2/ingestion/internal/parser"

	"github.com/rs/zerolog/log"
)

// syncRankings refreshes the current AP and Coaches polls. A failed
// poll is reported and the other one still runs; polls are absent
// entirely before the season's first release.
func (o *Orchestrator) syncRankings(ctx context.Context) {
	polls := []struct {
		typeID int
		name   string
	}{
		{models.RankingTypeAPPoll, "AP Top 25"},
		{models.RankingTypeCoachesPoll, "Coaches Poll"},
	}

	for _, poll := range polls {
		week, rows, err := o.syncPoll(ctx, poll.typeID)
		if err != nil {
			if client.IsNotFound(err) {
				log.Debug().Str("poll", poll.name).Msg("Poll not published yet")
				continue
			}
			o.report.AddError(fmt.Sprintf("rankings %s", poll.name), err)
			continue
		}
		if rows == 0 {
			continue
		}
		o.report.RankingsUpdated += rows
		log.Info().Str("poll", poll.name).Int("week", week).Int("teams", rows).Msg("Poll replaced")
	}
}

// syncPoll fetches the ranking index for one poll, dereferences the
// current week and replaces that week's rows wholesale.
func (o *Orchestrator) syncPoll(ctx context.Context, rankingTypeID int) (week, rows int, err error) {
	index, err := o.fetcher.GetRankingIndex(ctx, o.opts.Season, rankingTypeID)
	if err != nil {
		return 0, 0, err
	}

	refs, err := parser.ParseRankingIndex(index)
	if err != nil {
		return 0, 0, err
	}
	if len(refs) == 0 {
		return 0, 0, nil
	}

	// The index lists occurrences with the current week first
	data, err := o.fetcher.GetRef(ctx, refs[0])
	if err != nil {
		return 0, 0, err
	}

	week, rankings, err := parser.ParseRankingWeek(o.opts.Season, rankingTypeID, data)
	if err != nil {
		return 0, 0, err
	}
	if len(rankings) == 0 {
		return week, 0, nil
	}

	if err := o.store.ReplaceRankingWeek(ctx, o.opts.Season, week, rankingTypeID, rankings); err != nil {
		return week, 0, err
	}
	return week, len(rankings), nil
}
