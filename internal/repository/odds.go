package repository

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// OddsRepository handles betting line operations
type OddsRepository struct {
	db *Database
}

const oddsUpsertSQL = `
	INSERT INTO game_odds (
		event_id, provider_id, provider_name, provider_priority,
		over_under, over_odds, under_odds, spread,
		home_is_favorite, home_moneyline, home_spread_odds,
		away_is_favorite, away_moneyline, away_spread_odds,
		details, last_modified, api_ref
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (event_id, provider_id) DO UPDATE SET
		provider_name = EXCLUDED.provider_name,
		provider_priority = EXCLUDED.provider_priority,
		over_under = EXCLUDED.over_under,
		over_odds = EXCLUDED.over_odds,
		under_odds = EXCLUDED.under_odds,
		spread = EXCLUDED.spread,
		home_is_favorite = EXCLUDED.home_is_favorite,
		home_moneyline = EXCLUDED.home_moneyline,
		home_spread_odds = EXCLUDED.home_spread_odds,
		away_is_favorite = EXCLUDED.away_is_favorite,
		away_moneyline = EXCLUDED.away_moneyline,
		away_spread_odds = EXCLUDED.away_spread_odds,
		details = EXCLUDED.details,
		last_modified = EXCLUDED.last_modified,
		api_ref = EXCLUDED.api_ref,
		updated_at = NOW()
`

// UpsertBatch inserts or updates betting lines keyed by (event, provider)
func (r *OddsRepository) UpsertBatch(ctx context.Context, odds []models.Odds) error {
	if len(odds) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range odds {
		batch.Queue(oddsUpsertSQL,
			o.EventID, o.ProviderID, o.ProviderName, o.ProviderPriority,
			o.OverUnder, o.OverOdds, o.UnderOdds, o.Spread,
			o.HomeIsFavorite, o.HomeMoneyline, o.HomeSpreadOdds,
			o.AwayIsFavorite, o.AwayMoneyline, o.AwaySpreadOdds,
			o.Details, o.LastModified, o.APIRef,
		)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert odds: %w", err)
	}

	log.Debug().Int("count", len(odds)).Msg("Odds upserted")
	return nil
}

// CountForEvent returns the number of providers stored for one event
func (r *OddsRepository) CountForEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM game_odds WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count odds: %w", err)
	}
	return count, nil
}
