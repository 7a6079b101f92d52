package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAthlete(t *testing.T) {
	payload := `{
		"$ref": "http://api/athletes/4433137",
		"id": "4433137",
		"fullName": "Jalen Smith",
		"displayName": "Jalen Smith",
		"shortName": "J. Smith",
		"jersey": "23",
		"height": 79,
		"weight": 215,
		"age": 21,
		"dateOfBirth": "2004-03-16T08:00Z",
		"position": {"name": "Forward", "abbreviation": "F"},
		"birthPlace": {"city": "Baltimore", "state": "MD", "country": "USA"},
		"headshot": {"href": "http://cdn/headshots/4433137.png"}
	}`
	a, err := ParseAthlete([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, 4433137, a.AthleteID)
	assert.Equal(t, "Jalen Smith", a.FullName)
	assert.Equal(t, "J. Smith", a.ShortName)
	assert.Equal(t, "Forward", a.PositionName)
	assert.Equal(t, "F", a.PositionAbbr)
	assert.Equal(t, "23", a.Jersey)
	assert.InDelta(t, 79, a.Height.Float64, 0.001)
	assert.Equal(t, int32(21), a.Age.Int32)
	assert.Equal(t, "Baltimore", a.BirthCity.String)
	assert.Equal(t, "http://cdn/headshots/4433137.png", a.HeadshotURL.String)
}

func TestParseAthleteMissingID(t *testing.T) {
	_, err := ParseAthlete([]byte(`{"fullName": "No ID"}`))
	assert.Error(t, err)
}

func TestParseVenue(t *testing.T) {
	payload := `{
		"$ref": "http://api/venues/1910",
		"id": 1910,
		"fullName": "Cameron Indoor Stadium",
		"capacity": 9314,
		"indoor": true,
		"address": {"city": "Durham", "state": "NC"}
	}`
	v, err := ParseVenue([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, 1910, v.VenueID)
	assert.Equal(t, "Cameron Indoor Stadium", v.FullName)
	assert.Equal(t, int32(9314), v.Capacity.Int32)
	assert.True(t, v.Indoor)
	assert.Equal(t, "Durham", v.City.String)
	assert.Equal(t, "NC", v.State.String)
}

func TestParseVenueMissingID(t *testing.T) {
	_, err := ParseVenue([]byte(`{"fullName": "Nowhere Arena"}`))
	assert.Error(t, err)
}
