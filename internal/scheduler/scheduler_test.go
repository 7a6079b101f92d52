package scheduler

import (
	"context"
	stdsync "sync"
	"testing"
	"time"

	"ncaab_v2/ingestion/internal/config"
	"ncaab_v2/ingestion/internal/sync"

	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		NightlySyncCron:     "0 3 * * *",
		IncrementalInterval: 3600,
		SyncDays:            7,
		SyncWorkers:         4,
		SyncBatchSize:       50,
		Season:              2026,
	}
}

func TestNightlyPassesFullOptions(t *testing.T) {
	var got sync.Options
	s := New(testConfig(), func(_ context.Context, opts sync.Options) (*sync.RunReport, error) {
		got = opts
		return &sync.RunReport{}, nil
	}, nil)

	s.RunNightly(context.Background())

	assert.False(t, got.SkipRankings)
	assert.False(t, got.SkipStandings)
	assert.False(t, got.SkipEntities)
	assert.Equal(t, 4, got.Workers)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -7), got.StartDate, time.Minute)
}

func TestIncrementalSkipsDailyPhases(t *testing.T) {
	var got sync.Options
	s := New(testConfig(), func(_ context.Context, opts sync.Options) (*sync.RunReport, error) {
		got = opts
		return &sync.RunReport{}, nil
	}, nil)

	s.runIncremental(context.Background())

	assert.True(t, got.SkipRankings)
	assert.True(t, got.SkipStandings)
	assert.True(t, got.SkipEntities)
}

func TestOverlappingRunsAreSkipped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0
	var mu stdsync.Mutex

	s := New(testConfig(), func(_ context.Context, _ sync.Options) (*sync.RunReport, error) {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
		return &sync.RunReport{}, nil
	}, nil)

	go s.RunNightly(context.Background())
	<-started

	// A tick landing mid-run must not queue a second sync
	s.runIncremental(context.Background())
	close(release)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
}

func TestNightlyGradesPredictions(t *testing.T) {
	graded := false
	s := New(testConfig(), func(_ context.Context, _ sync.Options) (*sync.RunReport, error) {
		return &sync.RunReport{}, nil
	}, func(_ context.Context) (int, error) {
		graded = true
		return 3, nil
	})

	s.RunNightly(context.Background())
	assert.True(t, graded)
}
