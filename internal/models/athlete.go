package models

import (
	"database/sql"
	"time"
)

// Athlete is a slowly-changing reference entity, created lazily the first
// time a player-statistics payload mentions it. Never updated afterwards
// by the sync run.
type Athlete struct {
	AthleteID int `db:"athlete_id"`

	FullName    string `db:"full_name"`
	DisplayName string `db:"display_name"`
	ShortName   string `db:"short_name"`

	PositionName string `db:"position_name"`
	PositionAbbr string `db:"position_abbr"`
	Jersey       string `db:"jersey"`

	Height sql.NullFloat64 `db:"height"`
	Weight sql.NullFloat64 `db:"weight"`
	Age    sql.NullInt32   `db:"age"`

	DateOfBirth  sql.NullString `db:"date_of_birth"`
	BirthCity    sql.NullString `db:"birth_city"`
	BirthState   sql.NullString `db:"birth_state"`
	BirthCountry sql.NullString `db:"birth_country"`
	HeadshotURL  sql.NullString `db:"headshot_url"`

	APIRef sql.NullString `db:"api_ref"`

	CreatedAt time.Time `db:"created_at"`
}
