package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRankingIndex(t *testing.T) {
	payload := `{"rankings": [
		{"$ref": "http://api/rankings/1/weeks/1"},
		{"$ref": "http://api/rankings/1/weeks/2"}
	]}`
	refs, err := ParseRankingIndex([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://api/rankings/1/weeks/1", "http://api/rankings/1/weeks/2"}, refs)
}

func TestParseRankingWeek(t *testing.T) {
	payload := `{
		"week": {"number": 11},
		"ranks": [
			{
				"current": 1, "previous": 1, "points": 1547.0, "firstPlaceVotes": 59,
				"team": {"$ref": "http://api/seasons/2026/teams/150?lang=en"}
			},
			{
				"current": 2, "previous": 4, "points": "1480", "firstPlaceVotes": 3,
				"team": {"$ref": "http://api/seasons/2026/teams/52"}
			},
			{
				"current": 3, "points": 1399.5,
				"team": {}
			}
		]
	}`
	week, rows, err := ParseRankingWeek(2026, 1, []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 11, week)

	// The entry without a team reference is skipped
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2026, first.SeasonID)
	assert.Equal(t, 11, first.WeekNumber)
	assert.Equal(t, 1, first.RankingTypeID)
	assert.Equal(t, 150, first.TeamID)
	assert.Equal(t, 1, first.CurrentRank)
	assert.Equal(t, int32(1), first.PreviousRank.Int32)
	assert.InDelta(t, 1547.0, first.Points, 0.001)
	assert.Equal(t, 59, first.FirstPlaceVotes)

	second := rows[1]
	assert.Equal(t, 52, second.TeamID)
	assert.InDelta(t, 1480, second.Points, 0.001)
	assert.Equal(t, int32(4), second.PreviousRank.Int32)
}

func TestParseRankingWeekEmpty(t *testing.T) {
	week, rows, err := ParseRankingWeek(2026, 2, []byte(`{"week": {"number": 3}, "ranks": []}`))
	require.NoError(t, err)
	assert.Equal(t, 3, week)
	assert.Empty(t, rows)
}
