package repository

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// StandingRepository handles conference standings and group operations
type StandingRepository struct {
	db *Database
}

// UpsertGroups stores the conference list used to drive the standings phase
func (r *StandingRepository) UpsertGroups(ctx context.Context, groups []models.Group) error {
	if len(groups) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, g := range groups {
		batch.Queue(`
			INSERT INTO groups (season_id, group_id, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (season_id, group_id) DO UPDATE SET name = EXCLUDED.name
		`, g.SeasonID, g.GroupID, g.Name)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert groups: %w", err)
	}
	return nil
}

// ListGroups returns the stored conferences for a season
func (r *StandingRepository) ListGroups(ctx context.Context, seasonID int) ([]models.Group, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT season_id, group_id, name
		FROM groups
		WHERE season_id = $1
		ORDER BY group_id
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.SeasonID, &g.GroupID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// ReplaceGroup atomically swaps one conference's standings. Each
// conference replaces independently so one failed fetch never clears
// another conference's table.
func (r *StandingRepository) ReplaceGroup(ctx context.Context, seasonID, groupID int, standings []models.Standing) error {
	err := r.db.withWriteTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM standings
			WHERE season_id = $1 AND group_id = $2
		`, seasonID, groupID)
		if err != nil {
			return fmt.Errorf("failed to delete existing standings: %w", err)
		}

		for _, s := range standings {
			_, err := tx.Exec(ctx, `
				INSERT INTO standings
					(season_id, season_type_id, group_id, team_id,
					 rank, wins, losses, win_pct, conf_wins, conf_losses,
					 streak, differential)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`, s.SeasonID, s.SeasonTypeID, s.GroupID, s.TeamID,
				s.Rank, s.Wins, s.Losses, s.WinPct, s.ConfWins, s.ConfLosses,
				s.Streak, s.Differential)
			if err != nil {
				return fmt.Errorf("failed to insert standing: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().
		Int("season", seasonID).
		Int("group", groupID).
		Int("count", len(standings)).
		Msg("Conference standings replaced")
	return nil
}

// CountForGroup returns the number of standing rows for one conference
func (r *StandingRepository) CountForGroup(ctx context.Context, seasonID, groupID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM standings WHERE season_id = $1 AND group_id = $2
	`, seasonID, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count standings: %w", err)
	}
	return count, nil
}
