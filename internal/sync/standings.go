package sync

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/models"
	"ncaab_v2/ingestion/internal/parser"

	"github.com/rs/zerolog/log"
)

// syncStandings refreshes conference standings group by group. Each
// conference is replaced in its own transaction, so one bad payload
// never rolls back the rest.
func (o *Orchestrator) syncStandings(ctx context.Context) {
	groups, err := o.store.ListGroups(ctx, o.opts.Season)
	if err != nil {
		o.report.AddError("standings groups", err)
		return
	}
	if len(groups) == 0 {
		groups = o.discoverGroups(ctx)
	}
	if len(groups) == 0 {
		log.Warn().Int("season", o.opts.Season).Msg("No conference groups available")
		return
	}

	for _, g := range groups {
		data, err := o.fetcher.GetStandings(ctx, o.opts.Season, models.SeasonTypeRegular, g.GroupID)
		if err != nil {
			if client.IsNotFound(err) {
				log.Debug().Int("group_id", g.GroupID).Msg("No standings for group")
				continue
			}
			o.report.AddError(fmt.Sprintf("standings group %d", g.GroupID), err)
			continue
		}

		rows, err := parser.ParseStandingsGroup(o.opts.Season, models.SeasonTypeRegular, g.GroupID, data)
		if err != nil {
			o.report.AddError(fmt.Sprintf("standings group %d", g.GroupID), err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		if err := o.store.ReplaceStandingsGroup(ctx, o.opts.Season, g.GroupID, rows); err != nil {
			o.report.AddError(fmt.Sprintf("standings group %d", g.GroupID), err)
			continue
		}
		o.report.StandingsUpdated += len(rows)
	}

	log.Info().
		Int("groups", len(groups)).
		Int("rows", o.report.StandingsUpdated).
		Msg("Standings refreshed")
}

// discoverGroups fetches the season's conference list from the API
// and caches it. Groups rarely change, so later runs read the table.
func (o *Orchestrator) discoverGroups(ctx context.Context) []models.Group {
	items, err := o.fetcher.GetGroups(ctx, o.opts.Season, models.SeasonTypeRegular)
	if err != nil {
		o.report.AddError("group discovery", err)
		return nil
	}

	var groups []models.Group
	for _, item := range items {
		raw, err := o.derefItem(ctx, item)
		if err != nil {
			o.report.AddError("group deref", err)
			continue
		}
		g, err := parser.ParseGroup(o.opts.Season, raw)
		if err != nil {
			o.report.AddError("group parse", err)
			continue
		}
		groups = append(groups, *g)
	}
	if len(groups) == 0 {
		return nil
	}

	if err := o.store.UpsertGroups(ctx, groups); err != nil {
		o.report.AddError("group upsert", err)
	}
	log.Info().Int("count", len(groups)).Msg("Conference groups discovered")
	return groups
}
