package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventFixture = `{
	"$ref": "http://sports.core.api.espn.com/v2/sports/basketball/leagues/mens-college-basketball/events/401706500",
	"id": "401706500",
	"date": "2026-01-10T23:00Z",
	"season": {"$ref": "http://sports.core.api.espn.com/v2/.../seasons/2026?lang=en"},
	"seasonType": {"id": "2"},
	"competitions": [
		{
			"attendance": 9314,
			"neutralSite": false,
			"conferenceCompetition": true,
			"venue": {"id": "1910", "fullName": "Cameron Indoor Stadium"},
			"status": {"type": {"name": "STATUS_FINAL", "detail": "Final", "completed": true}},
			"competitors": [
				{"id": "52", "homeAway": "home", "winner": true, "score": "71"},
				{"id": "2509", "homeAway": "away", "winner": false, "score": "60"}
			],
			"broadcasts": [{"media": {"shortName": "ESPN2"}}]
		}
	]
}`

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(eventFixture), nil)
	require.NoError(t, err)

	assert.Equal(t, 401706500, ev.EventID)
	assert.Equal(t, 2026, ev.SeasonID)
	assert.Equal(t, 2, ev.SeasonTypeID)
	assert.Equal(t, 52, ev.HomeTeamID)
	assert.Equal(t, 2509, ev.AwayTeamID)
	assert.Equal(t, "2026-01-10", ev.Date.Format("2006-01-02"))

	assert.Equal(t, "STATUS_FINAL", ev.Status)
	assert.Equal(t, "Final", ev.StatusDetail)
	assert.True(t, ev.IsCompleted)

	require.True(t, ev.HomeScore.Valid)
	assert.Equal(t, int32(71), ev.HomeScore.Int32)
	assert.Equal(t, int32(60), ev.AwayScore.Int32)
	require.True(t, ev.WinnerTeamID.Valid)
	assert.Equal(t, int32(52), ev.WinnerTeamID.Int32)

	assert.Equal(t, int32(1910), ev.VenueID.Int32)
	assert.Equal(t, "Cameron Indoor Stadium", ev.VenueName.String)
	assert.True(t, ev.IsConferenceGame)
	assert.False(t, ev.IsNeutralSite)
	assert.Equal(t, int32(9314), ev.Attendance.Int32)
	assert.Equal(t, "ESPN2", ev.BroadcastNetwork.String)
}

func TestParseEventResolvesStatusRef(t *testing.T) {
	payload := `{
		"id": "401706501",
		"date": "2026-01-11T00:00Z",
		"season": {"year": 2026},
		"seasonType": {"id": 2},
		"competitions": [
			{
				"status": {"$ref": "http://api/status/401706501"},
				"competitors": [
					{"id": "150", "homeAway": "home", "score": {"$ref": "http://api/score/home"}},
					{"id": "151", "homeAway": "away", "score": {"$ref": "http://api/score/away"}}
				]
			}
		]
	}`
	resolve := func(ref string) (json.RawMessage, error) {
		switch ref {
		case "http://api/status/401706501":
			return json.RawMessage(`{"type": {"name": "STATUS_SCHEDULED", "detail": "1/11 - 7:00 PM EST", "completed": false}}`), nil
		case "http://api/score/home":
			return json.RawMessage(`{"value": 0}`), nil
		case "http://api/score/away":
			return json.RawMessage(`{"value": 0}`), nil
		}
		t.Fatalf("unexpected ref %q", ref)
		return nil, nil
	}

	ev, err := ParseEvent([]byte(payload), resolve)
	require.NoError(t, err)
	assert.Equal(t, "STATUS_SCHEDULED", ev.Status)
	assert.False(t, ev.IsCompleted)
	assert.False(t, ev.WinnerTeamID.Valid)
}

func TestParseEventMissingCompetitors(t *testing.T) {
	payload := `{"id": "5", "date": "2026-01-10T23:00Z", "competitions": [{"competitors": []}]}`
	_, err := ParseEvent([]byte(payload), nil)
	assert.Error(t, err)
}

func TestParseEventNoCompetitions(t *testing.T) {
	payload := `{"id": "6", "date": "2026-01-10T23:00Z", "competitions": []}`
	_, err := ParseEvent([]byte(payload), nil)
	assert.Error(t, err)
}
