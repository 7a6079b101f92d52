package sync

import (
	"context"
	"encoding/json"

	"ncaab_v2/ingestion/internal/models"
	"ncaab_v2/ingestion/internal/repository"
)

// Fetcher is the upstream surface the orchestrator needs. The API
// client satisfies it; tests substitute fakes.
type Fetcher interface {
	GetEvents(ctx context.Context, dates string) ([]json.RawMessage, error)
	GetRef(ctx context.Context, ref string) (json.RawMessage, error)
	GetGameSummary(ctx context.Context, eventID int) (json.RawMessage, error)
	GetRankingIndex(ctx context.Context, season, rankingTypeID int) (json.RawMessage, error)
	GetGroups(ctx context.Context, season, seasonTypeID int) ([]json.RawMessage, error)
	GetStandings(ctx context.Context, season, seasonTypeID, groupID int) (json.RawMessage, error)
	GetAthlete(ctx context.Context, season, athleteID int) (json.RawMessage, error)
	GetVenue(ctx context.Context, venueID int) (json.RawMessage, error)
}

// Store is the persistence surface the orchestrator writes through
type Store interface {
	UpsertEvents(ctx context.Context, events []*models.Event) error
	UpdateLineScores(ctx context.Context, updates []models.LineScoreUpdate) error
	MarkSummaryFetched(ctx context.Context, eventIDs []int) error
	ListStatGaps(ctx context.Context, limit int) ([]int, error)
	ListLineScoreGaps(ctx context.Context, limit int) ([]int, error)

	UpsertTeamStats(ctx context.Context, stats []models.TeamStatistics) error
	UpsertPlayerStats(ctx context.Context, stats []models.PlayerStatistics) error
	UpsertOdds(ctx context.Context, odds []models.Odds) error
	UpsertPredictions(ctx context.Context, preds []models.Prediction) error

	ReplaceRankingWeek(ctx context.Context, seasonID, weekNumber, rankingTypeID int, rankings []models.Ranking) error

	ListGroups(ctx context.Context, seasonID int) ([]models.Group, error)
	UpsertGroups(ctx context.Context, groups []models.Group) error
	ReplaceStandingsGroup(ctx context.Context, seasonID, groupID int, standings []models.Standing) error

	FilterUnknownAthletes(ctx context.Context, ids []int) ([]int, error)
	FilterUnknownVenues(ctx context.Context, ids []int) ([]int, error)
	InsertAthletes(ctx context.Context, athletes []*models.Athlete) error
	InsertVenues(ctx context.Context, venues []*models.Venue) error

	VerifyCounts(ctx context.Context) (repository.VerificationCounts, error)
}

// DBStore adapts the repository layer to the Store interface
type DBStore struct {
	DB *repository.Database
}

func NewDBStore(db *repository.Database) *DBStore {
	return &DBStore{DB: db}
}

func (s *DBStore) UpsertEvents(ctx context.Context, events []*models.Event) error {
	return s.DB.Events.UpsertBatch(ctx, events)
}

func (s *DBStore) UpdateLineScores(ctx context.Context, updates []models.LineScoreUpdate) error {
	return s.DB.Events.UpdateLineScores(ctx, updates)
}

func (s *DBStore) MarkSummaryFetched(ctx context.Context, eventIDs []int) error {
	return s.DB.Events.MarkSummaryFetched(ctx, eventIDs)
}

func (s *DBStore) ListStatGaps(ctx context.Context, limit int) ([]int, error) {
	return s.DB.Events.ListStatGaps(ctx, limit)
}

func (s *DBStore) ListLineScoreGaps(ctx context.Context, limit int) ([]int, error) {
	return s.DB.Events.ListLineScoreGaps(ctx, limit)
}

func (s *DBStore) UpsertTeamStats(ctx context.Context, stats []models.TeamStatistics) error {
	return s.DB.TeamStats.UpsertBatch(ctx, stats)
}

func (s *DBStore) UpsertPlayerStats(ctx context.Context, stats []models.PlayerStatistics) error {
	return s.DB.PlayerStats.UpsertBatch(ctx, stats)
}

func (s *DBStore) UpsertOdds(ctx context.Context, odds []models.Odds) error {
	return s.DB.Odds.UpsertBatch(ctx, odds)
}

func (s *DBStore) UpsertPredictions(ctx context.Context, preds []models.Prediction) error {
	return s.DB.Predictions.UpsertBatch(ctx, preds)
}

func (s *DBStore) ReplaceRankingWeek(ctx context.Context, seasonID, weekNumber, rankingTypeID int, rankings []models.Ranking) error {
	return s.DB.Rankings.ReplaceWeek(ctx, seasonID, weekNumber, rankingTypeID, rankings)
}

func (s *DBStore) ListGroups(ctx context.Context, seasonID int) ([]models.Group, error) {
	return s.DB.Standings.ListGroups(ctx, seasonID)
}

func (s *DBStore) UpsertGroups(ctx context.Context, groups []models.Group) error {
	return s.DB.Standings.UpsertGroups(ctx, groups)
}

func (s *DBStore) ReplaceStandingsGroup(ctx context.Context, seasonID, groupID int, standings []models.Standing) error {
	return s.DB.Standings.ReplaceGroup(ctx, seasonID, groupID, standings)
}

func (s *DBStore) FilterUnknownAthletes(ctx context.Context, ids []int) ([]int, error) {
	return s.DB.Entities.FilterUnknownAthletes(ctx, ids)
}

func (s *DBStore) FilterUnknownVenues(ctx context.Context, ids []int) ([]int, error) {
	return s.DB.Entities.FilterUnknownVenues(ctx, ids)
}

func (s *DBStore) InsertAthletes(ctx context.Context, athletes []*models.Athlete) error {
	return s.DB.Entities.InsertAthletes(ctx, athletes)
}

func (s *DBStore) InsertVenues(ctx context.Context, venues []*models.Venue) error {
	return s.DB.Entities.InsertVenues(ctx, venues)
}

func (s *DBStore) VerifyCounts(ctx context.Context) (repository.VerificationCounts, error) {
	return s.DB.Events.VerifyCounts(ctx)
}
