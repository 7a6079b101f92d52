package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"ncaab_v2/ingestion/internal/client"
	"ncaab_v2/ingestion/internal/models"
	"ncaab_v2/ingestion/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned payloads and counts summary fetches
type fakeFetcher struct {
	mu           sync.Mutex
	events       []json.RawMessage
	summaries    map[int]string
	summaryCalls map[int]int
	rankingIndex map[int]string
	refs         map[string]string
	groups       []json.RawMessage
	standings    map[int]string
	athletes     map[int]string
	venues       map[int]string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		summaries:    map[int]string{},
		summaryCalls: map[int]int{},
		rankingIndex: map[int]string{},
		refs:         map[string]string{},
		standings:    map[int]string{},
		athletes:     map[int]string{},
		venues:       map[int]string{},
	}
}

func (f *fakeFetcher) GetEvents(_ context.Context, _ string) ([]json.RawMessage, error) {
	return f.events, nil
}

func (f *fakeFetcher) GetRef(_ context.Context, ref string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.refs[ref]; ok {
		return json.RawMessage(body), nil
	}
	return nil, fmt.Errorf("ref %s: %w", ref, client.ErrNotFound)
}

func (f *fakeFetcher) GetGameSummary(_ context.Context, eventID int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls[eventID]++
	if body, ok := f.summaries[eventID]; ok {
		return json.RawMessage(body), nil
	}
	return nil, fmt.Errorf("summary %d: %w", eventID, client.ErrNotFound)
}

func (f *fakeFetcher) GetRankingIndex(_ context.Context, _, rankingTypeID int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.rankingIndex[rankingTypeID]; ok {
		return json.RawMessage(body), nil
	}
	return nil, fmt.Errorf("rankings %d: %w", rankingTypeID, client.ErrNotFound)
}

func (f *fakeFetcher) GetGroups(_ context.Context, _, _ int) ([]json.RawMessage, error) {
	return f.groups, nil
}

func (f *fakeFetcher) GetStandings(_ context.Context, _, _, groupID int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.standings[groupID]; ok {
		return json.RawMessage(body), nil
	}
	return nil, fmt.Errorf("standings %d: %w", groupID, client.ErrNotFound)
}

func (f *fakeFetcher) GetAthlete(_ context.Context, _, athleteID int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.athletes[athleteID]; ok {
		return json.RawMessage(body), nil
	}
	return nil, fmt.Errorf("athlete %d: %w", athleteID, client.ErrNotFound)
}

func (f *fakeFetcher) GetVenue(_ context.Context, venueID int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if body, ok := f.venues[venueID]; ok {
		return json.RawMessage(body), nil
	}
	return nil, fmt.Errorf("venue %d: %w", venueID, client.ErrNotFound)
}

func (f *fakeFetcher) calls(eventID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaryCalls[eventID]
}

// fakeStore keeps everything in maps and mimics the repository's
// gap and verification queries.
type fakeStore struct {
	mu            sync.Mutex
	failTeamStats bool
	events        map[int]*models.Event
	teamStats     map[string]models.TeamStatistics
	playerStats   map[string]models.PlayerStatistics
	odds          map[string]models.Odds
	predictions   map[int]models.Prediction
	lineScores    map[int]models.LineScoreUpdate
	fetched       map[int]bool
	rankings      map[string][]models.Ranking
	groups        map[int]models.Group
	standings     map[int][]models.Standing
	athletes      map[int]bool
	venues        map[int]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      map[int]*models.Event{},
		teamStats:   map[string]models.TeamStatistics{},
		playerStats: map[string]models.PlayerStatistics{},
		odds:        map[string]models.Odds{},
		predictions: map[int]models.Prediction{},
		lineScores:  map[int]models.LineScoreUpdate{},
		fetched:     map[int]bool{},
		rankings:    map[string][]models.Ranking{},
		groups:      map[int]models.Group{},
		standings:   map[int][]models.Standing{},
		athletes:    map[int]bool{},
		venues:      map[int]bool{},
	}
}

func (s *fakeStore) UpsertEvents(_ context.Context, events []*models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.events[ev.EventID] = ev
	}
	return nil
}

func (s *fakeStore) UpdateLineScores(_ context.Context, updates []models.LineScoreUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		s.lineScores[u.EventID] = u
	}
	return nil
}

func (s *fakeStore) MarkSummaryFetched(_ context.Context, eventIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range eventIDs {
		s.fetched[id] = true
	}
	return nil
}

func (s *fakeStore) hasStats(eventID int) bool {
	for _, ts := range s.teamStats {
		if ts.EventID == eventID {
			return true
		}
	}
	return false
}

func (s *fakeStore) ListStatGaps(_ context.Context, limit int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var gaps []int
	for id, ev := range s.events {
		if ev.IsCompleted && !s.fetched[id] && !s.hasStats(id) && len(gaps) < limit {
			gaps = append(gaps, id)
		}
	}
	return gaps, nil
}

func (s *fakeStore) ListLineScoreGaps(_ context.Context, limit int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var gaps []int
	for id, ev := range s.events {
		if _, ok := s.lineScores[id]; ev.IsCompleted && !s.fetched[id] && !ok && len(gaps) < limit {
			gaps = append(gaps, id)
		}
	}
	return gaps, nil
}

func (s *fakeStore) UpsertTeamStats(_ context.Context, stats []models.TeamStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTeamStats {
		return fmt.Errorf("connection reset")
	}
	for _, ts := range stats {
		s.teamStats[fmt.Sprintf("%d-%d", ts.EventID, ts.TeamID)] = ts
	}
	return nil
}

func (s *fakeStore) UpsertPlayerStats(_ context.Context, stats []models.PlayerStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ps := range stats {
		s.playerStats[fmt.Sprintf("%d-%d-%d", ps.EventID, ps.TeamID, ps.AthleteID)] = ps
	}
	return nil
}

func (s *fakeStore) UpsertOdds(_ context.Context, odds []models.Odds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range odds {
		s.odds[fmt.Sprintf("%d-%d", o.EventID, o.ProviderID)] = o
	}
	return nil
}

func (s *fakeStore) UpsertPredictions(_ context.Context, preds []models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range preds {
		s.predictions[p.EventID] = p
	}
	return nil
}

func (s *fakeStore) ReplaceRankingWeek(_ context.Context, seasonID, weekNumber, rankingTypeID int, rankings []models.Ranking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d-%d-%d", seasonID, weekNumber, rankingTypeID)
	s.rankings[key] = append([]models.Ranking(nil), rankings...)
	return nil
}

func (s *fakeStore) ListGroups(_ context.Context, seasonID int) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Group
	for _, g := range s.groups {
		if g.SeasonID == seasonID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeStore) UpsertGroups(_ context.Context, groups []models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range groups {
		s.groups[g.GroupID] = g
	}
	return nil
}

func (s *fakeStore) ReplaceStandingsGroup(_ context.Context, _, groupID int, standings []models.Standing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standings[groupID] = append([]models.Standing(nil), standings...)
	return nil
}

func (s *fakeStore) FilterUnknownAthletes(_ context.Context, ids []int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unknown []int
	for _, id := range ids {
		if !s.athletes[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

func (s *fakeStore) FilterUnknownVenues(_ context.Context, ids []int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unknown []int
	for _, id := range ids {
		if !s.venues[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

func (s *fakeStore) InsertAthletes(_ context.Context, athletes []*models.Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range athletes {
		s.athletes[a.AthleteID] = true
	}
	return nil
}

func (s *fakeStore) InsertVenues(_ context.Context, venues []*models.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range venues {
		s.venues[v.VenueID] = true
	}
	return nil
}

func (s *fakeStore) VerifyCounts(_ context.Context) (repository.VerificationCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v repository.VerificationCounts
	for id, ev := range s.events {
		if !ev.IsCompleted {
			continue
		}
		if !ev.HomeScore.Valid {
			v.CompletedWithoutScores++
		}
		if _, ok := s.lineScores[id]; !ok {
			v.CompletedWithoutLineScores++
		}
		if !s.hasStats(id) {
			v.CompletedWithoutStats++
		}
	}
	return v, nil
}

func eventJSON(id int, completed bool) string {
	status := `{"type":{"name":"STATUS_SCHEDULED","completed":false}}`
	scores := ""
	if completed {
		status = `{"type":{"name":"STATUS_FINAL","detail":"Final","completed":true}}`
		scores = `"score":"71","winner":true,`
	}
	return fmt.Sprintf(`{
		"id": "%d",
		"date": "2026-01-10T23:00Z",
		"season": {"year": 2026},
		"seasonType": {"id": 2},
		"competitions": [{
			"venue": {"id": 3914, "fullName": "Test Arena"},
			"status": %s,
			"competitors": [
				{"id": 52, "homeAway": "home", %s"order": 1},
				{"id": 2509, "homeAway": "away", "score": "60"}
			]
		}]
	}`, id, status, scores)
}

const summaryJSON = `{
	"boxscore": {
		"teams": [
			{"team": {"id": "52"}, "homeAway": "home", "statistics": [
				{"name": "fieldGoalsMade-fieldGoalsAttempted", "displayValue": "24-58"},
				{"name": "totalRebounds", "displayValue": "39"},
				{"name": "assists", "displayValue": "15"}
			]},
			{"team": {"id": "2509"}, "homeAway": "away", "statistics": [
				{"name": "fieldGoalsMade-fieldGoalsAttempted", "displayValue": "20-61"},
				{"name": "totalRebounds", "displayValue": "30"}
			]}
		],
		"players": [
			{"team": {"id": "52"}, "statistics": [{"athletes": [
				{"athlete": {"id": "4433137", "displayName": "Test Guard"},
				 "starter": true,
				 "stats": ["31", "18", "7-13", "2-5", "2-2", "1", "4", "5", "6", "2", "0", "3", "1"]},
				{"athlete": {"id": "4433138", "displayName": "Bench Player"},
				 "stats": ["--"]}
			]}]}
		]
	},
	"pickcenter": [
		{"provider": {"id": "58", "name": "ESPN BET", "priority": 1},
		 "overUnder": 145.5, "spread": -6.5, "details": "DUKE -6.5",
		 "homeTeamOdds": {"favorite": true, "moneyLine": -260},
		 "awayTeamOdds": {"moneyLine": 210}}
	],
	"predictor": {
		"lastModified": "2026-01-11T04:00Z",
		"homeTeam": {"gameProjection": 74.2},
		"awayTeam": {"gameProjection": 25.8}
	},
	"header": {"competitions": [{"competitors": [
		{"homeAway": "home", "linescores": [{"displayValue": "38"}, {"displayValue": "33"}]},
		{"homeAway": "away", "linescores": [{"displayValue": "31"}, {"displayValue": "29"}]}
	]}]}
}`

func rankingWeekJSON(week, teams int) string {
	ranks := ""
	for i := 1; i <= teams; i++ {
		if i > 1 {
			ranks += ","
		}
		ranks += fmt.Sprintf(`{"current": %d, "previous": %d, "points": %d, "team": {"id": "%d"}}`,
			i, i, 1600-i*10, 9000+i)
	}
	return fmt.Sprintf(`{"week": {"number": %d}, "ranks": [%s]}`, week, ranks)
}

func newTestOrchestrator(f *fakeFetcher, s *fakeStore, opts Options) *Orchestrator {
	if opts.Season == 0 {
		opts.Season = 2026
	}
	if opts.Workers == 0 {
		opts.Workers = 4
	}
	return New(f, s, opts)
}

func TestRunFullWindow(t *testing.T) {
	f := newFakeFetcher()
	s := newFakeStore()

	f.events = []json.RawMessage{
		json.RawMessage(eventJSON(401, true)),
		json.RawMessage(eventJSON(402, true)),
		json.RawMessage(eventJSON(403, false)),
	}
	f.summaries[401] = summaryJSON
	f.summaries[402] = summaryJSON
	f.athletes[4433137] = `{"id": "4433137", "fullName": "Test Guard"}`
	f.venues[3914] = `{"id": "3914", "fullName": "Test Arena", "capacity": 9314, "indoor": true}`

	o := newTestOrchestrator(f, s, Options{SkipRankings: true, SkipStandings: true})
	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.EventsUpdated)
	assert.Equal(t, 2, report.CompletedEvents)
	assert.Equal(t, 2, report.SummariesFetched)
	assert.Empty(t, report.Errors)

	// Two team rows per completed event, always
	assert.Len(t, s.teamStats, 4)
	assert.Len(t, s.playerStats, 2, "DNP entries are dropped")
	assert.Len(t, s.odds, 2)
	assert.Len(t, s.predictions, 2)
	assert.Contains(t, s.lineScores, 401)
	assert.True(t, s.fetched[401])
	assert.True(t, s.fetched[402])
	assert.False(t, s.fetched[403], "scheduled games have no summary to stamp")

	// Entities seen in the window were backfilled
	assert.True(t, s.athletes[4433137])
	assert.True(t, s.venues[3914])

	assert.True(t, report.Verification.Clean())
}

func TestRunEmptySummaryConverges(t *testing.T) {
	f := newFakeFetcher()
	s := newFakeStore()

	// Completed event already in the store, upstream summary is empty
	ev := &models.Event{EventID: 500, SeasonID: 2026, IsCompleted: true,
		HomeTeamID: 52, AwayTeamID: 2509}
	require.NoError(t, s.UpsertEvents(context.Background(), []*models.Event{ev}))
	f.summaries[500] = `{}`

	opts := Options{BackfillOnly: true, SkipRankings: true, SkipStandings: true, SkipEntities: true}

	o := newTestOrchestrator(f, s, opts)
	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Backfilled)
	assert.True(t, s.fetched[500], "empty payload still stamps the event")
	assert.Equal(t, 1, f.calls(500))

	// A second pass finds nothing left to do
	o = newTestOrchestrator(f, s, opts)
	report, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Backfilled)
	assert.Equal(t, 1, f.calls(500), "stamped events are not re-fetched")
}

func TestRunSummaryNotFoundStamps(t *testing.T) {
	f := newFakeFetcher()
	s := newFakeStore()

	ev := &models.Event{EventID: 600, SeasonID: 2026, IsCompleted: true,
		HomeTeamID: 52, AwayTeamID: 2509}
	require.NoError(t, s.UpsertEvents(context.Background(), []*models.Event{ev}))
	// No summary registered: the fetcher returns a 404

	opts := Options{BackfillOnly: true, SkipRankings: true, SkipStandings: true, SkipEntities: true}
	o := newTestOrchestrator(f, s, opts)
	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Errors, "a 404 is not an error")
	assert.True(t, s.fetched[600])
}

func TestRunWorkerCountEquivalence(t *testing.T) {
	run := func(workers int) *fakeStore {
		f := newFakeFetcher()
		s := newFakeStore()
		for id := 700; id < 740; id++ {
			f.events = append(f.events, json.RawMessage(eventJSON(id, true)))
			f.summaries[id] = summaryJSON
		}
		o := newTestOrchestrator(f, s, Options{
			Workers: workers, BatchSize: 7,
			SkipRankings: true, SkipStandings: true, SkipEntities: true,
		})
		_, err := o.Run(context.Background())
		require.NoError(t, err)
		return s
	}

	serial := run(1)
	parallel := run(20)

	assert.Equal(t, len(serial.teamStats), len(parallel.teamStats))
	assert.Equal(t, len(serial.playerStats), len(parallel.playerStats))
	assert.Equal(t, len(serial.lineScores), len(parallel.lineScores))
	assert.Equal(t, len(serial.fetched), len(parallel.fetched))
}

func TestRunRankingsReplaceShrinks(t *testing.T) {
	f := newFakeFetcher()
	s := newFakeStore()

	f.rankingIndex[models.RankingTypeAPPoll] = `{"rankings": [{"$ref": "http://api/rankings/1/weeks/2"}]}`
	f.refs["http://api/rankings/1/weeks/2"] = rankingWeekJSON(2, 25)

	opts := Options{BackfillOnly: true, SkipBackfill: true, SkipStandings: true, SkipEntities: true}

	o := newTestOrchestrator(f, s, opts)
	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, report.RankingsUpdated)
	assert.Len(t, s.rankings["2026-2-1"], 25)

	// The same week republished with fewer teams leaves no stale rows
	f.refs["http://api/rankings/1/weeks/2"] = rankingWeekJSON(2, 24)
	o = newTestOrchestrator(f, s, opts)
	_, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.rankings["2026-2-1"], 24)
}

func TestRunStandingsIsolatesGroupFailures(t *testing.T) {
	f := newFakeFetcher()
	s := newFakeStore()

	f.groups = []json.RawMessage{
		json.RawMessage(`{"id": "2", "name": "Atlantic Coast Conference"}`),
		json.RawMessage(`{"id": "8", "name": "Big Ten Conference"}`),
	}
	f.standings[2] = `{"entries": [
		{"team": {"id": "52"}, "stats": [
			{"name": "rank", "value": 1}, {"name": "wins", "value": 14}, {"name": "losses", "value": 2},
			{"name": "conferenceWins", "value": 9}, {"name": "conferenceLosses", "value": 1}
		]},
		{"team": {"id": "153"}, "stats": [
			{"name": "rank", "value": 2}, {"name": "wins", "value": 11}, {"name": "losses", "value": 5}
		]}
	]}`
	// Group 8 has no payload: the fetcher 404s and the run moves on

	opts := Options{BackfillOnly: true, SkipBackfill: true, SkipRankings: true, SkipEntities: true}
	o := newTestOrchestrator(f, s, opts)
	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.StandingsUpdated)
	assert.Empty(t, report.Errors)
	require.Len(t, s.standings[2], 2)
	assert.Equal(t, 14, s.standings[2][0].Wins)
	assert.Equal(t, 9, s.standings[2][0].ConfWins)
	assert.Len(t, s.groups, 2, "discovered groups are cached")
}

func TestRunWriteFailureIsReportedNotFatal(t *testing.T) {
	f := newFakeFetcher()
	s := newFakeStore()
	s.failTeamStats = true

	f.events = []json.RawMessage{json.RawMessage(eventJSON(800, true))}
	f.summaries[800] = summaryJSON

	o := newTestOrchestrator(f, s, Options{
		SkipRankings: true, SkipStandings: true, SkipEntities: true, SkipBackfill: true,
	})
	report, err := o.Run(context.Background())
	require.NoError(t, err, "write failures never abort the run")

	assert.True(t, report.HasErrors())
	// Other buffers still flushed
	assert.Contains(t, s.lineScores, 800)
	// The event must stay in the gap set so the next run heals it
	assert.False(t, s.fetched[800])
}

func TestSeasonForDate(t *testing.T) {
	assert.Equal(t, 2026, seasonForDate(mustDate(t, "2025-11-15")))
	assert.Equal(t, 2026, seasonForDate(mustDate(t, "2026-03-20")))
	assert.Equal(t, 2025, seasonForDate(mustDate(t, "2025-02-01")))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}
