package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseFloatShapes(t *testing.T) {
	cases := []struct {
		in    string
		value float64
		valid bool
	}{
		{`145.5`, 145.5, true},
		{`"145.5"`, 145.5, true},
		{`"-6.5"`, -6.5, true},
		{`{"value": 71.3, "displayValue": "71.3"}`, 71.3, true},
		{`{"displayValue": "12"}`, 12, true},
		{`"--"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"N/A"`, 0, false},
	}
	for _, tc := range cases {
		var f LooseFloat
		err := json.Unmarshal([]byte(tc.in), &f)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.valid, f.Valid, tc.in)
		if tc.valid {
			assert.InDelta(t, tc.value, f.Value, 0.0001, tc.in)
		}
	}
}

func TestLooseIntTruncates(t *testing.T) {
	var i LooseInt
	require.NoError(t, json.Unmarshal([]byte(`"71"`), &i))
	assert.True(t, i.Valid)
	assert.Equal(t, 71, i.Value)

	var j LooseInt
	require.NoError(t, json.Unmarshal([]byte(`68.0`), &j))
	assert.Equal(t, 68, j.Value)
}

func TestParseMadeAttempted(t *testing.T) {
	m, a, ok := parseMadeAttempted("24-58")
	require.True(t, ok)
	assert.Equal(t, 24, m)
	assert.Equal(t, 58, a)

	_, _, ok = parseMadeAttempted("--")
	assert.False(t, ok)

	_, _, ok = parseMadeAttempted("24")
	assert.False(t, ok)

	_, _, ok = parseMadeAttempted("")
	assert.False(t, ok)
}

func TestIDFromRef(t *testing.T) {
	id, ok := idFromRef("http://sports.core.api.espn.com/v2/sports/basketball/leagues/mens-college-basketball/seasons/2026/teams/2509?lang=en&region=us")
	require.True(t, ok)
	assert.Equal(t, 2509, id)

	id, ok = idFromRef("http://api/teams/52")
	require.True(t, ok)
	assert.Equal(t, 52, id)

	_, ok = idFromRef("")
	assert.False(t, ok)

	_, ok = idFromRef("http://api/teams/abc")
	assert.False(t, ok)
}
