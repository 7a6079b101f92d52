package models

import (
	"database/sql"
	"time"
)

// Prediction holds the upstream win-probability projection for one event.
// At most one row per event. The accuracy fields are not upstream data;
// they are derived after completion by the accuracy pass.
type Prediction struct {
	EventID int `db:"event_id"`

	LastModified   sql.NullString  `db:"last_modified"`
	MatchupQuality sql.NullFloat64 `db:"matchup_quality"`

	HomeWinProbability  sql.NullFloat64 `db:"home_win_probability"`
	HomePredictedMargin sql.NullFloat64 `db:"home_predicted_margin"`
	AwayWinProbability  sql.NullFloat64 `db:"away_win_probability"`
	AwayPredictedMargin sql.NullFloat64 `db:"away_predicted_margin"`

	// Derived post-completion
	HomePredictionCorrect sql.NullBool    `db:"home_prediction_correct"`
	AwayPredictionCorrect sql.NullBool    `db:"away_prediction_correct"`
	MarginError           sql.NullFloat64 `db:"margin_error"`

	APIRef sql.NullString `db:"api_ref"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
