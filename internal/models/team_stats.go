package models

import (
	"database/sql"
	"time"
)

// TeamStatistics holds one team's aggregate box score for one event.
// Exactly two rows exist per completed event once its summary has been
// ingested: one for the home side, one for the away side.
type TeamStatistics struct {
	EventID  int    `db:"event_id"`
	TeamID   int    `db:"team_id"`
	HomeAway string `db:"home_away"`

	FieldGoalsMade      sql.NullInt32   `db:"field_goals_made"`
	FieldGoalsAttempted sql.NullInt32   `db:"field_goals_attempted"`
	FieldGoalPct        sql.NullFloat64 `db:"field_goal_pct"`

	ThreePointMade      sql.NullInt32   `db:"three_point_made"`
	ThreePointAttempted sql.NullInt32   `db:"three_point_attempted"`
	ThreePointPct       sql.NullFloat64 `db:"three_point_pct"`

	FreeThrowsMade      sql.NullInt32   `db:"free_throws_made"`
	FreeThrowsAttempted sql.NullInt32   `db:"free_throws_attempted"`
	FreeThrowPct        sql.NullFloat64 `db:"free_throw_pct"`

	TotalRebounds     sql.NullInt32 `db:"total_rebounds"`
	OffensiveRebounds sql.NullInt32 `db:"offensive_rebounds"`
	DefensiveRebounds sql.NullInt32 `db:"defensive_rebounds"`

	Assists sql.NullInt32 `db:"assists"`
	Steals  sql.NullInt32 `db:"steals"`
	Blocks  sql.NullInt32 `db:"blocks"`

	Turnovers      sql.NullInt32 `db:"turnovers"`
	TeamTurnovers  sql.NullInt32 `db:"team_turnovers"`
	TotalTurnovers sql.NullInt32 `db:"total_turnovers"`

	Fouls          sql.NullInt32 `db:"fouls"`
	TechnicalFouls sql.NullInt32 `db:"technical_fouls"`
	FlagrantFouls  sql.NullInt32 `db:"flagrant_fouls"`

	TurnoverPoints  sql.NullInt32 `db:"turnover_points"`
	FastBreakPoints sql.NullInt32 `db:"fast_break_points"`
	PointsInPaint   sql.NullInt32 `db:"points_in_paint"`
	LargestLead     sql.NullInt32 `db:"largest_lead"`

	LeadChanges    sql.NullInt32   `db:"lead_changes"`
	LeadPercentage sql.NullFloat64 `db:"lead_percentage"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
