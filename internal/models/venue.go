package models

import (
	"database/sql"
	"time"
)

// Venue is a slowly-changing reference entity, created lazily the first
// time an event payload mentions it
type Venue struct {
	VenueID int `db:"venue_id"`

	FullName string `db:"full_name"`

	City  sql.NullString `db:"city"`
	State sql.NullString `db:"state"`

	Capacity sql.NullInt32 `db:"capacity"`
	Grass    bool          `db:"grass"`
	Indoor   bool          `db:"indoor"`

	APIRef sql.NullString `db:"api_ref"`

	CreatedAt time.Time `db:"created_at"`
}
