package repository

import (
	"context"
	"errors"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// EventRepository handles event database operations
type EventRepository struct {
	db *Database
}

const eventUpsertSQL = `
	INSERT INTO events (
		event_id, season_id, season_type_id, week, home_team_id, away_team_id,
		date, venue_id, venue_name, status, status_detail, is_completed,
		home_score, away_score, winner_team_id, is_conference_game, is_neutral_site,
		attendance, broadcast_network, api_ref
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	ON CONFLICT (event_id) DO UPDATE SET
		season_id = EXCLUDED.season_id,
		season_type_id = EXCLUDED.season_type_id,
		week = EXCLUDED.week,
		home_team_id = EXCLUDED.home_team_id,
		away_team_id = EXCLUDED.away_team_id,
		date = EXCLUDED.date,
		venue_id = EXCLUDED.venue_id,
		venue_name = EXCLUDED.venue_name,
		status = EXCLUDED.status,
		status_detail = EXCLUDED.status_detail,
		is_completed = EXCLUDED.is_completed,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		winner_team_id = EXCLUDED.winner_team_id,
		is_conference_game = EXCLUDED.is_conference_game,
		is_neutral_site = EXCLUDED.is_neutral_site,
		attendance = EXCLUDED.attendance,
		broadcast_network = EXCLUDED.broadcast_network,
		api_ref = EXCLUDED.api_ref,
		updated_at = NOW()
`

// UpsertBatch inserts or updates events by event_id. Line scores and the
// summary marker are deliberately not touched here: re-running the event
// window must not wipe what summary fetches have filled in.
func (r *EventRepository) UpsertBatch(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(eventUpsertSQL,
			e.EventID, e.SeasonID, e.SeasonTypeID, e.Week, e.HomeTeamID, e.AwayTeamID,
			e.Date, e.VenueID, e.VenueName, e.Status, e.StatusDetail, e.IsCompleted,
			e.HomeScore, e.AwayScore, e.WinnerTeamID, e.IsConferenceGame, e.IsNeutralSite,
			e.Attendance, e.BroadcastNetwork, e.APIRef,
		)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert events: %w", err)
	}

	log.Debug().Int("count", len(events)).Msg("Events upserted")
	return nil
}

// UpdateLineScores writes per-period scores parsed from game summaries
func (r *EventRepository) UpdateLineScores(ctx context.Context, updates []models.LineScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE events
			SET home_line_scores = $1, away_line_scores = $2, updated_at = NOW()
			WHERE event_id = $3
		`, u.HomeLineScores, u.AwayLineScores, u.EventID)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to update line scores: %w", err)
	}
	return nil
}

// MarkSummaryFetched stamps events whose summary fetch succeeded. The
// stamp is what lets gap detection converge on games the upstream serves
// an empty summary for.
func (r *EventRepository) MarkSummaryFetched(ctx context.Context, eventIDs []int) error {
	if len(eventIDs) == 0 {
		return nil
	}

	_, err := r.db.Pool.Exec(ctx, `
		UPDATE events
		SET summary_fetched_at = NOW(), updated_at = NOW()
		WHERE event_id = ANY($1)
	`, eventIDs)
	if err != nil {
		return fmt.Errorf("failed to mark summaries fetched: %w", err)
	}
	return nil
}

// GetByEventID retrieves one event
func (r *EventRepository) GetByEventID(ctx context.Context, eventID int) (*models.Event, error) {
	query := `
		SELECT event_id, season_id, season_type_id, week, home_team_id, away_team_id,
		       date, venue_id, venue_name, status, status_detail, is_completed,
		       home_score, away_score, winner_team_id, is_conference_game, is_neutral_site,
		       attendance, broadcast_network, api_ref,
		       home_line_scores, away_line_scores, summary_fetched_at,
		       created_at, updated_at
		FROM events
		WHERE event_id = $1
	`

	var e models.Event
	err := r.db.Pool.QueryRow(ctx, query, eventID).Scan(
		&e.EventID, &e.SeasonID, &e.SeasonTypeID, &e.Week, &e.HomeTeamID, &e.AwayTeamID,
		&e.Date, &e.VenueID, &e.VenueName, &e.Status, &e.StatusDetail, &e.IsCompleted,
		&e.HomeScore, &e.AwayScore, &e.WinnerTeamID, &e.IsConferenceGame, &e.IsNeutralSite,
		&e.Attendance, &e.BroadcastNetwork, &e.APIRef,
		&e.HomeLineScores, &e.AwayLineScores, &e.SummaryFetchedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("event not found: event_id=%d", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

// ListStatGaps returns completed events with no team statistics rows,
// skipping events already stamped by an earlier summary fetch (the
// upstream has nothing for those).
func (r *EventRepository) ListStatGaps(ctx context.Context, limit int) ([]int, error) {
	query := `
		SELECT e.event_id
		FROM events e
		WHERE e.is_completed
		  AND e.summary_fetched_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM team_statistics ts WHERE ts.event_id = e.event_id
		  )
		ORDER BY e.date DESC
		LIMIT $1
	`
	return r.listEventIDs(ctx, query, limit)
}

// ListLineScoreGaps returns completed events missing per-period scores
func (r *EventRepository) ListLineScoreGaps(ctx context.Context, limit int) ([]int, error) {
	query := `
		SELECT event_id
		FROM events
		WHERE is_completed
		  AND summary_fetched_at IS NULL
		  AND (home_line_scores IS NULL OR away_line_scores IS NULL)
		ORDER BY date DESC
		LIMIT $1
	`
	return r.listEventIDs(ctx, query, limit)
}

func (r *EventRepository) listEventIDs(ctx context.Context, query string, limit int) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list event ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event ids: %w", err)
	}
	return ids, nil
}

// VerificationCounts holds the post-run consistency check results
type VerificationCounts struct {
	CompletedWithoutScores     int
	CompletedWithoutLineScores int
	CompletedWithoutStats      int
}

// Clean reports whether every check came back zero
func (v VerificationCounts) Clean() bool {
	return v.CompletedWithoutScores == 0 &&
		v.CompletedWithoutLineScores == 0 &&
		v.CompletedWithoutStats == 0
}

// VerifyCounts runs the post-run consistency queries
func (r *EventRepository) VerifyCounts(ctx context.Context) (VerificationCounts, error) {
	var v VerificationCounts

	checks := []struct {
		dst   *int
		query string
	}{
		{&v.CompletedWithoutScores,
			`SELECT COUNT(*) FROM events WHERE is_completed AND home_score IS NULL`},
		{&v.CompletedWithoutLineScores,
			`SELECT COUNT(*) FROM events WHERE is_completed AND home_line_scores IS NULL`},
		{&v.CompletedWithoutStats,
			`SELECT COUNT(*) FROM events e WHERE e.is_completed
			 AND NOT EXISTS (SELECT 1 FROM team_statistics ts WHERE ts.event_id = e.event_id)`},
	}
	for _, c := range checks {
		if err := r.db.Pool.QueryRow(ctx, c.query).Scan(c.dst); err != nil {
			return v, fmt.Errorf("verification query failed: %w", err)
		}
	}
	return v, nil
}

// Count returns the total number of events
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
