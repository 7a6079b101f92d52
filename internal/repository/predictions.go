package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ncaab_v2/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository handles win-probability projection operations
type PredictionRepository struct {
	db *Database
}

const predictionUpsertSQL = `
	INSERT INTO game_predictions (
		event_id, last_modified, matchup_quality,
		home_win_probability, home_predicted_margin,
		away_win_probability, away_predicted_margin,
		api_ref
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (event_id) DO UPDATE SET
		last_modified = EXCLUDED.last_modified,
		matchup_quality = EXCLUDED.matchup_quality,
		home_win_probability = EXCLUDED.home_win_probability,
		home_predicted_margin = EXCLUDED.home_predicted_margin,
		away_win_probability = EXCLUDED.away_win_probability,
		away_predicted_margin = EXCLUDED.away_predicted_margin,
		api_ref = EXCLUDED.api_ref,
		updated_at = NOW()
`

// UpsertBatch inserts or updates projections keyed by event. The derived
// accuracy columns are never touched by the upsert; the accuracy pass
// owns them.
func (r *PredictionRepository) UpsertBatch(ctx context.Context, preds []models.Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range preds {
		batch.Queue(predictionUpsertSQL,
			p.EventID, p.LastModified, p.MatchupQuality,
			p.HomeWinProbability, p.HomePredictedMargin,
			p.AwayWinProbability, p.AwayPredictedMargin,
			p.APIRef,
		)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert predictions: %w", err)
	}

	log.Debug().Int("count", len(preds)).Msg("Predictions upserted")
	return nil
}

// PredictionOutcome pairs a stored projection with its game's final result
type PredictionOutcome struct {
	EventID             int
	HomeWinProbability  float64
	AwayWinProbability  float64
	HomePredictedMargin sql.NullFloat64
	HomeScore           int
	AwayScore           int
}

// ListUnscored returns projections for completed games whose accuracy
// has not been computed yet.
func (r *PredictionRepository) ListUnscored(ctx context.Context, limit int) ([]PredictionOutcome, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT p.event_id, p.home_win_probability,
		       COALESCE(p.away_win_probability, 0),
		       p.home_predicted_margin,
		       e.home_score, e.away_score
		FROM game_predictions p
		JOIN events e ON e.event_id = p.event_id
		WHERE e.is_completed
		  AND e.home_score IS NOT NULL
		  AND e.away_score IS NOT NULL
		  AND p.home_win_probability IS NOT NULL
		  AND p.home_prediction_correct IS NULL
		ORDER BY e.date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored predictions: %w", err)
	}
	defer rows.Close()

	var outcomes []PredictionOutcome
	for rows.Next() {
		var o PredictionOutcome
		if err := rows.Scan(&o.EventID, &o.HomeWinProbability, &o.AwayWinProbability,
			&o.HomePredictedMargin, &o.HomeScore, &o.AwayScore); err != nil {
			return nil, fmt.Errorf("failed to scan prediction outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prediction outcomes: %w", err)
	}
	return outcomes, nil
}

// AccuracyUpdate carries derived accuracy values back onto a projection
type AccuracyUpdate struct {
	EventID               int
	HomePredictionCorrect bool
	AwayPredictionCorrect bool
	MarginError           sql.NullFloat64
}

// UpdateAccuracy writes derived accuracy values for completed games
func (r *PredictionRepository) UpdateAccuracy(ctx context.Context, updates []AccuracyUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE game_predictions
			SET home_prediction_correct = $1,
			    away_prediction_correct = $2,
			    margin_error = $3,
			    updated_at = NOW()
			WHERE event_id = $4
		`, u.HomePredictionCorrect, u.AwayPredictionCorrect, u.MarginError, u.EventID)
	}

	if err := r.db.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to update prediction accuracy: %w", err)
	}
	return nil
}
