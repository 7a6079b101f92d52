package repository

import (
	"context"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// EntityRepository handles the lazily-built athlete and venue reference tables
type EntityRepository struct {
	db *Database
}

// FilterUnknownAthletes returns the subset of ids with no athletes row
func (r *EntityRepository) FilterUnknownAthletes(ctx context.Context, ids []int) ([]int, error) {
	return r.filterUnknown(ctx, `SELECT athlete_id FROM athletes WHERE athlete_id = ANY($1)`, ids)
}

// FilterUnknownVenues returns the subset of ids with no venues row
func (r *EntityRepository) FilterUnknownVenues(ctx context.Context, ids []int) ([]int, error) {
	return r.filterUnknown(ctx, `SELECT venue_id FROM venues WHERE venue_id = ANY($1)`, ids)
}

func (r *EntityRepository) filterUnknown(ctx context.Context, query string, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query known entities: %w", err)
	}
	defer rows.Close()

	known := make(map[int]bool, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entity id: %w", err)
		}
		known[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity ids: %w", err)
	}

	var unknown []int
	for _, id := range ids {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

// InsertAthletes stores newly discovered athletes. Existing rows are left
// untouched: the roster tables are reference data, not per-run state.
func (r *EntityRepository) InsertAthletes(ctx context.Context, athletes []*models.Athlete) error {
	if len(athletes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range athletes {
		batch.Queue(`
			INSERT INTO athletes
				(athlete_id, full_name, display_name, short_name,
				 position_name, position_abbr, jersey,
				 height, weight, age, date_of_birth,
				 birth_city, birth_state, birth_country, headshot_url, api_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (athlete_id) DO NOTHING
		`, a.AthleteID, a.FullName, a.DisplayName, a.ShortName,
			a.PositionName, a.PositionAbbr, a.Jersey,
			a.Height, a.Weight, a.Age, a.DateOfBirth,
			a.BirthCity, a.BirthState, a.BirthCountry, a.HeadshotURL, a.APIRef)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert athletes: %w", err)
	}

	log.Debug().Int("count", len(athletes)).Msg("Athletes inserted")
	return nil
}

// InsertVenues stores newly discovered venues
func (r *EntityRepository) InsertVenues(ctx context.Context, venues []*models.Venue) error {
	if len(venues) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, v := range venues {
		batch.Queue(`
			INSERT INTO venues
				(venue_id, full_name, city, state, capacity, grass, indoor, api_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (venue_id) DO NOTHING
		`, v.VenueID, v.FullName, v.City, v.State, v.Capacity, v.Grass, v.Indoor, v.APIRef)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert venues: %w", err)
	}

	log.Debug().Int("count", len(venues)).Msg("Venues inserted")
	return nil
}

// CountAthletes returns the number of stored athletes
func (r *EntityRepository) CountAthletes(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM athletes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count athletes: %w", err)
	}
	return count, nil
}

// CountVenues returns the number of stored venues
func (r *EntityRepository) CountVenues(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM venues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return count, nil
}
