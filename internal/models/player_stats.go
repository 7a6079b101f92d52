package models

import (
	"database/sql"
	"time"
)

// PlayerStatistics holds one athlete's box score line for one event
type PlayerStatistics struct {
	EventID   int `db:"event_id"`
	TeamID    int `db:"team_id"`
	AthleteID int `db:"athlete_id"`

	AthleteName      string `db:"athlete_name"`
	AthleteShortName string `db:"athlete_short_name"`

	IsActive  bool `db:"is_active"`
	IsStarter bool `db:"is_starter"`

	MinutesPlayed sql.NullString `db:"minutes_played"`
	Points        sql.NullInt32  `db:"points"`

	FieldGoalsMade      sql.NullInt32 `db:"field_goals_made"`
	FieldGoalsAttempted sql.NullInt32 `db:"field_goals_attempted"`
	ThreePointMade      sql.NullInt32 `db:"three_point_made"`
	ThreePointAttempted sql.NullInt32 `db:"three_point_attempted"`
	FreeThrowsMade      sql.NullInt32 `db:"free_throws_made"`
	FreeThrowsAttempted sql.NullInt32 `db:"free_throws_attempted"`

	Rebounds          sql.NullInt32 `db:"rebounds"`
	OffensiveRebounds sql.NullInt32 `db:"offensive_rebounds"`
	DefensiveRebounds sql.NullInt32 `db:"defensive_rebounds"`

	Assists   sql.NullInt32 `db:"assists"`
	Turnovers sql.NullInt32 `db:"turnovers"`
	Steals    sql.NullInt32 `db:"steals"`
	Blocks    sql.NullInt32 `db:"blocks"`
	Fouls     sql.NullInt32 `db:"fouls"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
