package accuracy

import (
	"context"
	"database/sql"
	"fmt"

	"ncaab_v2/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// Store is the slice of the predictions repository the scorer needs
type Store interface {
	ListUnscored(ctx context.Context, limit int) ([]repository.PredictionOutcome, error)
	UpdateAccuracy(ctx context.Context, updates []repository.AccuracyUpdate) error
}

const defaultBatch = 500

// Scorer grades stored win-probability projections against final
// scores. It runs separately from the sync phases: a projection can
// only be graded once its game has a final score, which may arrive
// in a later run than the projection did.
type Scorer struct {
	store Store
	batch int
}

func New(store Store) *Scorer {
	return &Scorer{store: store, batch: defaultBatch}
}

// Run grades every unscored projection and returns how many it graded
func (s *Scorer) Run(ctx context.Context) (int, error) {
	total := 0
	for {
		outcomes, err := s.store.ListUnscored(ctx, s.batch)
		if err != nil {
			return total, fmt.Errorf("listing unscored predictions: %w", err)
		}
		if len(outcomes) == 0 {
			break
		}

		updates := make([]repository.AccuracyUpdate, 0, len(outcomes))
		for _, o := range outcomes {
			updates = append(updates, Score(o))
		}
		if err := s.store.UpdateAccuracy(ctx, updates); err != nil {
			return total, fmt.Errorf("writing prediction accuracy: %w", err)
		}
		total += len(updates)

		if len(outcomes) < s.batch {
			break
		}
	}

	if total > 0 {
		log.Info().Int("graded", total).Msg("Prediction accuracy updated")
	}
	return total, nil
}

// Score grades one projection. Each side is graded on its own terms:
// correct means that side was favored (probability above 50) and won.
// An upset grades both sides wrong, so the share of games with a
// correct side is the model's hit rate, not a constant 100%.
func Score(o repository.PredictionOutcome) repository.AccuracyUpdate {
	homeWon := o.HomeScore > o.AwayScore
	awayWon := o.AwayScore > o.HomeScore

	u := repository.AccuracyUpdate{
		EventID:               o.EventID,
		HomePredictionCorrect: o.HomeWinProbability > 50 && homeWon,
		AwayPredictionCorrect: o.AwayWinProbability > 50 && awayWon,
	}
	if o.HomePredictedMargin.Valid {
		// Signed, from the home side: positive means the projection
		// overshot the home margin.
		actual := float64(o.HomeScore - o.AwayScore)
		u.MarginError = sql.NullFloat64{
			Float64: o.HomePredictedMargin.Float64 - actual,
			Valid:   true,
		}
	}
	return u
}
