package models

import (
	"database/sql"
	"time"
)

// Event represents a college basketball game
type Event struct {
	EventID      int       `db:"event_id"`
	SeasonID     int       `db:"season_id"`
	SeasonTypeID int       `db:"season_type_id"`
	Week         sql.NullInt32 `db:"week"`
	HomeTeamID   int       `db:"home_team_id"`
	AwayTeamID   int       `db:"away_team_id"`
	Date         time.Time `db:"date"`

	VenueID   sql.NullInt32  `db:"venue_id"`
	VenueName sql.NullString `db:"venue_name"`

	Status       string `db:"status"`
	StatusDetail string `db:"status_detail"`
	IsCompleted  bool   `db:"is_completed"`

	HomeScore    sql.NullInt32 `db:"home_score"`
	AwayScore    sql.NullInt32 `db:"away_score"`
	WinnerTeamID sql.NullInt32 `db:"winner_team_id"`

	IsConferenceGame bool `db:"is_conference_game"`
	IsNeutralSite    bool `db:"is_neutral_site"`

	Attendance       sql.NullInt32  `db:"attendance"`
	BroadcastNetwork sql.NullString `db:"broadcast_network"`
	APIRef           sql.NullString `db:"api_ref"`

	// Per-period scores, stored as JSON-encoded string arrays.
	// Null until the first successful summary fetch.
	HomeLineScores sql.NullString `db:"home_line_scores"`
	AwayLineScores sql.NullString `db:"away_line_scores"`

	// Set when a summary fetch succeeded, even if it yielded no statistics.
	// Gap detection skips stamped events with empty upstream payloads.
	SummaryFetchedAt sql.NullTime `db:"summary_fetched_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LineScoreUpdate carries per-period scores parsed from a game summary
// back onto an existing event row.
type LineScoreUpdate struct {
	EventID        int
	HomeLineScores string // JSON array of period scores
	AwayLineScores string
}

// IsFinal reports whether the event has completed
func (e *Event) IsFinal() bool {
	return e.IsCompleted
}
