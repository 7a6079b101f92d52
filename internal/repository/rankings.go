package repository

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RankingRepository handles weekly poll operations
type RankingRepository struct {
	db *Database
}

// ReplaceWeek atomically swaps one week's poll for a new set of rows.
// Delete-then-insert in a single transaction: polls shrink as well as
// grow week to week, so an upsert would leave stale entries behind.
func (r *RankingRepository) ReplaceWeek(ctx context.Context, seasonID, weekNumber, rankingTypeID int, rankings []models.Ranking) error {
	err := r.db.withWriteTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM weekly_rankings
			WHERE season_id = $1 AND week_number = $2 AND ranking_type_id = $3
		`, seasonID, weekNumber, rankingTypeID)
		if err != nil {
			return fmt.Errorf("failed to delete existing rankings: %w", err)
		}

		for _, rk := range rankings {
			_, err := tx.Exec(ctx, `
				INSERT INTO weekly_rankings
					(season_id, week_number, ranking_type_id, team_id,
					 current_rank, previous_rank, points, first_place_votes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, rk.SeasonID, rk.WeekNumber, rk.RankingTypeID, rk.TeamID,
				rk.CurrentRank, rk.PreviousRank, rk.Points, rk.FirstPlaceVotes)
			if err != nil {
				return fmt.Errorf("failed to insert ranking: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().
		Int("season", seasonID).
		Int("week", weekNumber).
		Int("ranking_type", rankingTypeID).
		Int("count", len(rankings)).
		Msg("Ranking week replaced")
	return nil
}

// CountForWeek returns the number of stored entries for one poll week
func (r *RankingRepository) CountForWeek(ctx context.Context, seasonID, weekNumber, rankingTypeID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM weekly_rankings
		WHERE season_id = $1 AND week_number = $2 AND ranking_type_id = $3
	`, seasonID, weekNumber, rankingTypeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rankings: %w", err)
	}
	return count, nil
}
