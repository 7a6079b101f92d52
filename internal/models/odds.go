package models

import (
	"database/sql"
	"time"
)

// Odds holds one provider's betting line for one event.
// Multiple providers per event, ranked by provider priority.
type Odds struct {
	EventID          int    `db:"event_id"`
	ProviderID       int    `db:"provider_id"`
	ProviderName     string `db:"provider_name"`
	ProviderPriority int    `db:"provider_priority"`

	OverUnder sql.NullFloat64 `db:"over_under"`
	OverOdds  sql.NullFloat64 `db:"over_odds"`
	UnderOdds sql.NullFloat64 `db:"under_odds"`

	Spread sql.NullFloat64 `db:"spread"`

	HomeIsFavorite  sql.NullBool    `db:"home_is_favorite"`
	HomeMoneyline   sql.NullInt32   `db:"home_moneyline"`
	HomeSpreadOdds  sql.NullFloat64 `db:"home_spread_odds"`
	AwayIsFavorite  sql.NullBool    `db:"away_is_favorite"`
	AwayMoneyline   sql.NullInt32   `db:"away_moneyline"`
	AwaySpreadOdds  sql.NullFloat64 `db:"away_spread_odds"`

	Details      sql.NullString `db:"details"`
	LastModified sql.NullString `db:"last_modified"`
	APIRef       sql.NullString `db:"api_ref"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
