package models

import (
	"database/sql"
	"time"
)

// Ranking type IDs as published upstream
const (
	RankingTypeAPPoll      = 1
	RankingTypeCoachesPoll = 2
)

// Ranking holds one team's poll position for one week.
// A week's set is replaced wholesale, never merged.
type Ranking struct {
	SeasonID      int `db:"season_id"`
	WeekNumber    int `db:"week_number"`
	RankingTypeID int `db:"ranking_type_id"`
	TeamID        int `db:"team_id"`

	CurrentRank     int           `db:"current_rank"`
	PreviousRank    sql.NullInt32 `db:"previous_rank"`
	Points          float64       `db:"points"`
	FirstPlaceVotes int           `db:"first_place_votes"`

	CreatedAt time.Time `db:"created_at"`
}
