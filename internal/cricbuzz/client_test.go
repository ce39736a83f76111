package cricbuzz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liveFixture = `{
  "typeMatches": [
    {
      "seriesMatches": [
        {
          "seriesAdWrapper": {
            "matches": [
              {
                "matchInfo": {
                  "matchId": 101,
                  "matchDesc": "1st Test",
                  "seriesName": "The Ashes",
                  "state": "In Progress",
                  "status": "Day 2: Session 1",
                  "team1": {"teamName": "Australia"},
                  "team2": {"teamName": "England"},
                  "venueInfo": {"ground": "MCG"}
                }
              }
            ]
          }
        },
        {"adDetail": {"name": "ad block"}}
      ]
    }
  ]
}`

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(Config{
		Host:       "cricbuzz-cricket.p.rapidapi.com",
		Key:        "test-key",
		BaseURL:    srv.URL,
		Rate:       1000,
		RetryDelay: time.Millisecond,
	}, nil)
	return client, srv
}

func TestLiveMatches(t *testing.T) {
	var gotHost, gotKey string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.Header.Get("x-rapidapi-host")
		gotKey = r.Header.Get("x-rapidapi-key")
		assert.Equal(t, "/matches/v1/live", r.URL.Path)
		w.Write([]byte(liveFixture))
	}))

	matches, err := client.LiveMatches(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cricbuzz-cricket.p.rapidapi.com", gotHost)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, matches, 1)
	assert.Equal(t, 101, matches[0].ID)
	assert.Equal(t, "1st Test", matches[0].Desc)
	assert.Equal(t, "The Ashes", matches[0].Series)
	assert.Equal(t, "Australia", matches[0].Team1)
	assert.Equal(t, "England", matches[0].Team2)
	assert.Equal(t, "MCG", matches[0].Venue)
}

func TestLiveMatchesCached(t *testing.T) {
	hits := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(liveFixture))
	}))

	_, err := client.LiveMatches(context.Background())
	require.NoError(t, err)
	_, err = client.LiveMatches(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second call should be served from cache")
}

func TestRetryOnRateLimit(t *testing.T) {
	hits := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(liveFixture))
	}))

	matches, err := client.LiveMatches(context.Background())
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, 3, hits)
}

func TestRateLimitExhaustsRetries(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.LiveMatches(context.Background())
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestServerErrorIsFatal(t *testing.T) {
	hits := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.LiveMatches(context.Background())
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, 1, hits, "non-429 errors must not be retried")
}

func TestSearchPlayers(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/v1/player/search", r.URL.Path)
		assert.Equal(t, "Virat Kohli", r.URL.Query().Get("plrN"))
		w.Write([]byte(`{"player": [{"id": "1413", "name": "Virat Kohli", "teamName": "India", "dob": "November 05, 1988"}]}`))
	}))

	players, err := client.SearchPlayers(context.Background(), "Virat Kohli")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "1413", players[0].ID)
	assert.Equal(t, "India", players[0].TeamName)
}

func TestPlayerStats(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/v1/player/1413/batting", r.URL.Path)
		w.Write([]byte(`{
			"headers": ["ROWHEADER", "Test", "ODI", "T20"],
			"values": [
				{"values": ["Matches", "113", "292", "115"]},
				{"values": ["Runs", "8848", "13848", "4008"]},
				{"values": []}
			]
		}`))
	}))

	table, err := client.PlayerStats(context.Background(), "1413", "batting")
	require.NoError(t, err)
	assert.Equal(t, []string{"ROWHEADER", "Test", "ODI", "T20"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Runs", "8848", "13848", "4008"}, table.Rows[1])
}

func TestPlayerStatsRejectsUnknownKind(t *testing.T) {
	hits := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))

	_, err := client.PlayerStats(context.Background(), "1413", "fielding")
	require.Error(t, err)
	assert.Equal(t, 0, hits, "invalid kind must not reach the API")
}

func TestScorecard(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mcenter/v1/101/hscard", r.URL.Path)
		w.Write([]byte(`{
			"scorecard": [
				{
					"inningsid": 1,
					"batteamname": "Australia",
					"score": 327,
					"wickets": 10,
					"overs": "98.2",
					"runrate": 3.32,
					"batsman": [
						{"name": "Khawaja", "runs": 81, "balls": 125, "fours": 9, "sixes": 0, "strkrate": "64.8", "outdec": "c Root b Anderson"}
					],
					"bowler": [
						{"name": "Anderson", "overs": "22.2", "runs": 53, "wickets": 3, "economy": "2.37"}
					],
					"fow": {"fow": [{"batsmanname": "Warner", "runs": 12, "overnbr": "4.3"}]},
					"extras": {"total": 14, "byes": 4, "legbyes": 6, "wides": 3, "noballs": 1}
				}
			]
		}`))
	}))

	card, err := client.Scorecard(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 101, card.MatchID)

	require.Len(t, card.Summary, 1)
	assert.Equal(t, "Australia", card.Summary[0].Team)
	assert.Equal(t, 327, card.Summary[0].Score)
	assert.InDelta(t, 98.2, card.Summary[0].Overs, 0.001)
	assert.Equal(t, 14, card.Summary[0].Extras)
	assert.Equal(t, 4, card.Summary[0].Byes)

	require.Len(t, card.Batting, 1)
	assert.Equal(t, "c Root b Anderson", card.Batting[0].Dismissal)
	assert.InDelta(t, 64.8, card.Batting[0].StrikeRate, 0.001)

	require.Len(t, card.Bowling, 1)
	assert.InDelta(t, 22.2, card.Bowling[0].Overs, 0.001)

	require.Len(t, card.FallOfWickets, 1)
	assert.Equal(t, "Warner", card.FallOfWickets[0].Batsman)
}
