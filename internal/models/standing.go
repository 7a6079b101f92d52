package models

import "time"

// SeasonTypeRegular is the regular-season type ID used for standings
const SeasonTypeRegular = 2

// Standing holds one team's conference standing entry.
// Replaced per conference group each run.
type Standing struct {
	SeasonID     int `db:"season_id"`
	SeasonTypeID int `db:"season_type_id"`
	GroupID      int `db:"group_id"`
	TeamID       int `db:"team_id"`

	Rank    int     `db:"rank"`
	Wins    int     `db:"wins"`
	Losses  int     `db:"losses"`
	WinPct  float64 `db:"win_pct"`

	ConfWins   int `db:"conf_wins"`
	ConfLosses int `db:"conf_losses"`

	Streak       float64 `db:"streak"`
	Differential float64 `db:"differential"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Group is a conference reference row, used to drive the standings phase
type Group struct {
	SeasonID int    `db:"season_id"`
	GroupID  int    `db:"group_id"`
	Name     string `db:"name"`
}
