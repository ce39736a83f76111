package cricbuzz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber(t *testing.T) {
	var v struct {
		A flexNumber `json:"a"`
		B flexNumber `json:"b"`
		C flexNumber `json:"c"`
		D flexNumber `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "3.5", "c": null, "d": "-"}`), &v))

	assert.Equal(t, 42, v.A.Int())
	assert.InDelta(t, 3.5, v.B.Float(), 0.001)
	assert.Equal(t, 0, v.C.Int())
	assert.Equal(t, 0.0, v.D.Float(), "non-numeric strings read as zero")
}

func TestParseScorecardDropsDuplicates(t *testing.T) {
	var resp scorecardResponse
	// The same innings block repeated, as the feed sometimes serves it.
	require.NoError(t, json.Unmarshal([]byte(`{
		"scorecard": [
			{
				"inningsid": 1,
				"batteamname": "India",
				"score": 185,
				"batsman": [{"name": "Sharma", "runs": 55}],
				"bowler": [{"name": "Starc", "wickets": 2}],
				"fow": {"fow": [{"batsmanname": "Gill", "runs": 30, "overnbr": 5.2}]}
			},
			{
				"inningsid": 1,
				"batteamname": "India",
				"score": 185,
				"batsman": [{"name": "Sharma", "runs": 55}],
				"bowler": [{"name": "Starc", "wickets": 2}],
				"fow": {"fow": [{"batsmanname": "Gill", "runs": 30, "overnbr": 5.2}]}
			}
		]
	}`), &resp))

	card := parseScorecard(&resp, 7)
	assert.Len(t, card.Summary, 1)
	assert.Len(t, card.Batting, 1)
	assert.Len(t, card.Bowling, 1)
	assert.Len(t, card.FallOfWickets, 1)
	assert.Equal(t, 7, card.Summary[0].MatchID)
}

func TestFlattenSkipsAdWrappers(t *testing.T) {
	var resp liveResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"typeMatches": [
			{"seriesMatches": [
				{"adDetail": {"name": "ad"}},
				{"seriesAdWrapper": {"matches": [{"matchInfo": {"matchId": 5, "matchDesc": "2nd ODI"}}]}}
			]}
		]
	}`), &resp))

	matches := resp.flatten()
	require.Len(t, matches, 1)
	assert.Equal(t, 5, matches[0].ID)
	assert.Equal(t, "N/A", matches[0].Series)
	assert.Equal(t, "TBC", matches[0].Team1)
	assert.Equal(t, "Unknown", matches[0].Venue)
}
