package repository

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamStatsRepository handles team box score operations
type TeamStatsRepository struct {
	db *Database
}

const teamStatsUpsertSQL = `
	INSERT INTO team_statistics (
		event_id, team_id, home_away,
		field_goals_made, field_goals_attempted, field_goal_pct,
		three_point_made, three_point_attempted, three_point_pct,
		free_throws_made, free_throws_attempted, free_throw_pct,
		total_rebounds, offensive_rebounds, defensive_rebounds,
		assists, steals, blocks,
		turnovers, team_turnovers, total_turnovers,
		fouls, technical_fouls, flagrant_fouls,
		turnover_points, fast_break_points, points_in_paint,
		largest_lead, lead_changes, lead_percentage
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	          $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
	ON CONFLICT (event_id, team_id) DO UPDATE SET
		home_away = EXCLUDED.home_away,
		field_goals_made = EXCLUDED.field_goals_made,
		field_goals_attempted = EXCLUDED.field_goals_attempted,
		field_goal_pct = EXCLUDED.field_goal_pct,
		three_point_made = EXCLUDED.three_point_made,
		three_point_attempted = EXCLUDED.three_point_attempted,
		three_point_pct = EXCLUDED.three_point_pct,
		free_throws_made = EXCLUDED.free_throws_made,
		free_throws_attempted = EXCLUDED.free_throws_attempted,
		free_throw_pct = EXCLUDED.free_throw_pct,
		total_rebounds = EXCLUDED.total_rebounds,
		offensive_rebounds = EXCLUDED.offensive_rebounds,
		defensive_rebounds = EXCLUDED.defensive_rebounds,
		assists = EXCLUDED.assists,
		steals = EXCLUDED.steals,
		blocks = EXCLUDED.blocks,
		turnovers = EXCLUDED.turnovers,
		team_turnovers = EXCLUDED.team_turnovers,
		total_turnovers = EXCLUDED.total_turnovers,
		fouls = EXCLUDED.fouls,
		technical_fouls = EXCLUDED.technical_fouls,
		flagrant_fouls = EXCLUDED.flagrant_fouls,
		turnover_points = EXCLUDED.turnover_points,
		fast_break_points = EXCLUDED.fast_break_points,
		points_in_paint = EXCLUDED.points_in_paint,
		largest_lead = EXCLUDED.largest_lead,
		lead_changes = EXCLUDED.lead_changes,
		lead_percentage = EXCLUDED.lead_percentage,
		updated_at = NOW()
`

// UpsertBatch inserts or updates team box scores keyed by (event, team)
func (r *TeamStatsRepository) UpsertBatch(ctx context.Context, stats []models.TeamStatistics) error {
	if len(stats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(teamStatsUpsertSQL,
			s.EventID, s.TeamID, s.HomeAway,
			s.FieldGoalsMade, s.FieldGoalsAttempted, s.FieldGoalPct,
			s.ThreePointMade, s.ThreePointAttempted, s.ThreePointPct,
			s.FreeThrowsMade, s.FreeThrowsAttempted, s.FreeThrowPct,
			s.TotalRebounds, s.OffensiveRebounds, s.DefensiveRebounds,
			s.Assists, s.Steals, s.Blocks,
			s.Turnovers, s.TeamTurnovers, s.TotalTurnovers,
			s.Fouls, s.TechnicalFouls, s.FlagrantFouls,
			s.TurnoverPoints, s.FastBreakPoints, s.PointsInPaint,
			s.LargestLead, s.LeadChanges, s.LeadPercentage,
		)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert team statistics: %w", err)
	}

	log.Debug().Int("count", len(stats)).Msg("Team statistics upserted")
	return nil
}

// CountForEvent returns the number of team box score rows for one event
func (r *TeamStatsRepository) CountForEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_statistics WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team statistics: %w", err)
	}
	return count, nil
}

// PlayerStatsRepository handles player box score operations
type PlayerStatsRepository struct {
	db *Database
}

const playerStatsUpsertSQL = `
	INSERT INTO player_statistics (
		event_id, team_id, athlete_id,
		athlete_name, athlete_short_name, is_active, is_starter,
		minutes_played, points,
		field_goals_made, field_goals_attempted,
		three_point_made, three_point_attempted,
		free_throws_made, free_throws_attempted,
		rebounds, offensive_rebounds, defensive_rebounds,
		assists, turnovers, steals, blocks, fouls
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	          $16, $17, $18, $19, $20, $21, $22, $23)
	ON CONFLICT (event_id, team_id, athlete_id) DO UPDATE SET
		athlete_name = EXCLUDED.athlete_name,
		athlete_short_name = EXCLUDED.athlete_short_name,
		is_active = EXCLUDED.is_active,
		is_starter = EXCLUDED.is_starter,
		minutes_played = EXCLUDED.minutes_played,
		points = EXCLUDED.points,
		field_goals_made = EXCLUDED.field_goals_made,
		field_goals_attempted = EXCLUDED.field_goals_attempted,
		three_point_made = EXCLUDED.three_point_made,
		three_point_attempted = EXCLUDED.three_point_attempted,
		free_throws_made = EXCLUDED.free_throws_made,
		free_throws_attempted = EXCLUDED.free_throws_attempted,
		rebounds = EXCLUDED.rebounds,
		offensive_rebounds = EXCLUDED.offensive_rebounds,
		defensive_rebounds = EXCLUDED.defensive_rebounds,
		assists = EXCLUDED.assists,
		turnovers = EXCLUDED.turnovers,
		steals = EXCLUDED.steals,
		blocks = EXCLUDED.blocks,
		fouls = EXCLUDED.fouls,
		updated_at = NOW()
`

// UpsertBatch inserts or updates player lines keyed by (event, team, athlete)
func (r *PlayerStatsRepository) UpsertBatch(ctx context.Context, stats []models.PlayerStatistics) error {
	if len(stats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(playerStatsUpsertSQL,
			s.EventID, s.TeamID, s.AthleteID,
			s.AthleteName, s.AthleteShortName, s.IsActive, s.IsStarter,
			s.MinutesPlayed, s.Points,
			s.FieldGoalsMade, s.FieldGoalsAttempted,
			s.ThreePointMade, s.ThreePointAttempted,
			s.FreeThrowsMade, s.FreeThrowsAttempted,
			s.Rebounds, s.OffensiveRebounds, s.DefensiveRebounds,
			s.Assists, s.Turnovers, s.Steals, s.Blocks, s.Fouls,
		)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert player statistics: %w", err)
	}

	log.Debug().Int("count", len(stats)).Msg("Player statistics upserted")
	return nil
}

// CountForEvent returns the number of player lines stored for one event
func (r *PlayerStatsRepository) CountForEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM player_statistics WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count player statistics: %w", err)
	}
	return count, nil
}
