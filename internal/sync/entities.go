package sync

import (
	"context"
	"fmt"
	"sort"

	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/models"
	"ncaab_v2/ingestion/internal/parser"

	"github.com/rs/zerolog/log"
)

// syncEntities backfills reference rows for athletes and venues seen
// during this run but missing from the database. Fetches are capped
// per run; whatever does not fit is picked up next time.
func (o *Orchestrator) syncEntities(ctx context.Context) {
	o.backfillAthletes(ctx)
	o.backfillVenues(ctx)
}

func (o *Orchestrator) backfillAthletes(ctx context.Context) {
	unknown, err := o.store.FilterUnknownAthletes(ctx, sortedKeys(o.seenAthletes))
	if err != nil {
		o.report.AddError("athlete filter", err)
		return
	}
	if len(unknown) > o.opts.AthleteLimit {
		unknown = unknown[:o.opts.AthleteLimit]
	}
	if len(unknown) == 0 {
		return
	}

	athletes := make([]*models.Athlete, 0, len(unknown))
	for _, id := range unknown {
		data, err := o.fetcher.GetAthlete(ctx, o.opts.Season, id)
		if err != nil {
			if client.IsNotFound(err) {
				continue
			}
			o.report.AddError(fmt.Sprintf("athlete %d", id), err)
			continue
		}
		a, err := parser.ParseAthlete(data)
		if err != nil {
			o.report.AddError(fmt.Sprintf("athlete %d", id), err)
			continue
		}
		athletes = append(athletes, a)
	}
	if len(athletes) == 0 {
		return
	}

	if err := o.store.InsertAthletes(ctx, athletes); err != nil {
		o.report.AddError("athlete insert", err)
		return
	}
	o.report.NewAthletes += len(athletes)
	log.Info().Int("count", len(athletes)).Msg("New athletes stored")
}

func (o *Orchestrator) backfillVenues(ctx context.Context) {
	unknown, err := o.store.FilterUnknownVenues(ctx, sortedKeys(o.seenVenues))
	if err != nil {
		o.report.AddError("venue filter", err)
		return
	}
	if len(unknown) > o.opts.VenueLimit {
		unknown = unknown[:o.opts.VenueLimit]
	}
	if len(unknown) == 0 {
		return
	}

	venues := make([]*models.Venue, 0, len(unknown))
	for _, id := range unknown {
		data, err := o.fetcher.GetVenue(ctx, id)
		if err != nil {
			if client.IsNotFound(err) {
				continue
			}
			o.report.AddError(fmt.Sprintf("venue %d", id), err)
			continue
		}
		v, err := parser.ParseVenue(data)
		if err != nil {
			o.report.AddError(fmt.Sprintf("venue %d", id), err)
			continue
		}
		venues = append(venues, v)
	}
	if len(venues) == 0 {
		return
	}

	if err := o.store.InsertVenues(ctx, venues); err != nil {
		o.report.AddError("venue insert", err)
		return
	}
	o.report.NewVenues += len(venues)
	log.Info().Int("count", len(venues)).Msg("New venues stored")
}

func sortedKeys(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
