package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownQuery is returned when a query id is not in the catalog.
var ErrUnknownQuery = errors.New("unknown query")

// Query is one predefined analytics query. The SQL never leaves the server;
// clients address queries by id only.
type Query struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SQL   string `json:"-"`
}

// Result holds the outcome of a catalog query in a shape any client can
// render: column names plus row values.
type Result struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Queries returns the analytics catalog in display order.
func Queries() []Query {
	out := make([]Query, len(catalog))
	copy(out, catalog)
	return out
}

// QueryByID looks up a catalog entry.
func QueryByID(id string) (Query, bool) {
	for _, q := range catalog {
		if q.ID == id {
			return q, true
		}
	}
	return Query{}, false
}

// RunQuery executes a catalog query and returns its columns and rows.
// Arbitrary SQL is rejected: only ids present in the catalog run.
func (s *Store) RunQuery(ctx context.Context, id string) (*Result, error) {
	q, ok := QueryByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, id)
	}

	rows, err := s.DB.QueryxContext(ctx, q.SQL)
	if err != nil {
		return nil, fmt.Errorf("running query %s: %w", q.ID, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns for query %s: %w", q.ID, err)
	}

	result := &Result{ID: q.ID, Title: q.Title, Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scanning row for query %s: %w", q.ID, err)
		}
		for i, v := range vals {
			// Drivers hand back []byte for text and numeric columns.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows for query %s: %w", q.ID, err)
	}
	return result, nil
}

var catalog = []Query{
	{
		ID:    "q1",
		Title: "Indian players: name, role and styles",
		SQL: `SELECT player_id, name, battingstyle, bowlingstyle, role
FROM team_india;`,
	},
	{
		ID:    "q2",
		Title: "Recent matches: teams, venue and date",
		SQL: `SELECT *
FROM recent_matches
ORDER BY recent_matches.end_date_time DESC;`,
	},
	{
		ID:    "q3",
		Title: "Top 10 ODI run scorers",
		SQL: `SELECT player_id, name, matches_played, innings_batted, runs, average, hundred
FROM top_players
ORDER BY top_players.runs DESC
LIMIT 10;`,
	},
	{
		ID:    "q4",
		Title: "Venues with 30,000+ capacity",
		SQL: `SELECT ground, city, country, capacity
FROM venues
WHERE capacity > 30000
ORDER BY capacity DESC;`,
	},
	{
		ID:    "q5",
		Title: "Teams by total wins for a series",
		SQL: `SELECT s.seriesname,
       CASE
           WHEN s.status ILIKE '%Sri Lanka won%' THEN 'Sri Lanka'
           WHEN s.status ILIKE '%New Zealand won%' THEN 'New Zealand'
       END AS winner_team,
       COUNT(*) AS total_wins
FROM series_matches s
WHERE s.status ILIKE '%won by%'
  AND s.seriesid = 8553
GROUP BY s.seriesname, winner_team
ORDER BY total_wins DESC;`,
	},
	{
		ID:    "q6",
		Title: "Player count by playing role, India",
		SQL: `SELECT role, COUNT(*)
FROM team_india
GROUP BY role;`,
	},
	{
		ID:    "q7",
		Title: "Highest score per format",
		SQL: `SELECT player_name, format,
       MAX(CASE
               WHEN highest ~ '^\d+' THEN (regexp_replace(highest, '[^0-9]', '', 'g'))::INT
               ELSE NULL
           END) AS highest_score
FROM player_batting_career_stats
WHERE format IN ('Test', 'ODI', 'T20', 'T20I', 'IPL')
GROUP BY player_name, format
ORDER BY highest_score DESC;`,
	},
	{
		ID:    "q8",
		Title: "Series started in 2024",
		SQL: `SELECT host_country,
       seriesname,
       matchformat,
       COUNT(seriesname) AS total_number_of_matches
FROM series_matches
WHERE series_start_date LIKE '%2024%'
  AND host_country IS NOT NULL
GROUP BY host_country, seriesname, matchformat;`,
	},
	{
		ID:    "q9",
		Title: "All-rounders with 1000+ runs and 50+ wickets",
		SQL: `SELECT p.player_id,
       p.name AS player_name,
       bc.format,
       SUM(bc.runs::INT) AS total_runs,
       SUM(bw.wickets::INT) AS total_wickets
FROM player_batting_career_stats bc
JOIN player_bowling_career_stats bw
  ON bc.player_id = bw.player_id
 AND bc.format = bw.format
JOIN players p
  ON p.player_id = bc.player_id
GROUP BY p.player_id, p.name, bc.format
HAVING SUM(bc.runs::INT) > 1000
   AND SUM(bw.wickets::INT) > 50
ORDER BY total_runs DESC;`,
	},
	{
		ID:    "q10",
		Title: "Last completed matches: winners and details",
		SQL: `SELECT match_description,
       team_name_1 AS team1,
       team_name_2 AS team2,
       substring(result FROM '^(.*?) won by') AS winner_team,
       venue_name,
       CASE
           WHEN result ILIKE '%runs' THEN 'runs'
           WHEN result ILIKE '%wkts' THEN 'wickets'
           ELSE 'Unknown'
       END AS victory_type,
       result,
       end_date_time AS date
FROM recent_matches
ORDER BY end_date_time DESC;`,
	},
	{
		ID:    "q11",
		Title: "Player performance across formats",
		SQL: `WITH player_formats AS (
    SELECT player_id,
           player_name,
           format,
           runs::INT AS runs,
           average::NUMERIC AS avg_value
    FROM player_batting_career_stats
    WHERE format IN ('Test', 'ODI', 'T20')
),
aggregated AS (
    SELECT player_id,
           player_name,
           COUNT(DISTINCT format) AS formats_played,
           SUM(CASE WHEN format = 'Test' THEN runs ELSE 0 END) AS test_runs,
           SUM(CASE WHEN format = 'ODI' THEN runs ELSE 0 END) AS odi_runs,
           SUM(CASE WHEN format = 'T20' THEN runs ELSE 0 END) AS t20_runs,
           ROUND(AVG(avg_value), 2) AS overall_avg
    FROM player_formats
    GROUP BY player_id, player_name
)
SELECT player_id,
       player_name,
       test_runs,
       odi_runs,
       t20_runs,
       overall_avg
FROM aggregated
WHERE formats_played >= 2
ORDER BY overall_avg DESC, player_name;`,
	},
	{
		ID:    "q12",
		Title: "Team wins, home vs away",
		SQL: `SELECT substring(status FROM '^(.*?) won by') AS team,
       CASE
           WHEN LOWER(substring(status FROM '^(.*?) won by')) = LOWER(host_country)
               THEN 'Home'
           ELSE 'Away'
       END AS location,
       COUNT(*) AS wins
FROM series_matches
WHERE status ILIKE '%won by%'
GROUP BY team, location
ORDER BY team, location;`,
	},
	{
		ID:    "q13",
		Title: "Partnerships of 100+ by consecutive batters",
		SQL: `SELECT b1.player_name AS player1,
       b2.player_name AS player2,
       b1.runs + b2.runs AS combined_runs,
       b1.innings_id,
       b1.series_name
FROM innings_batting b1
JOIN innings_batting b2
  ON b1.innings_id = b2.innings_id
 AND b2.batting_pos = b1.batting_pos + 1
WHERE b1.runs + b2.runs >= 100;`,
	},
	{
		ID:    "q14",
		Title: "Bowling stats by venue, min 3 matches and 4 overs",
		SQL: `SELECT bp.player_id,
       bp.player_name,
       ms.venue,
       COUNT(DISTINCT bp.match_id) AS matches_played,
       bp.overs,
       ROUND(SUM(bp.runs)::numeric / NULLIF(SUM(bp.overs)::numeric, 0), 2) AS avg_economy,
       SUM(bp.wickets) AS total_wickets
FROM bowling_performance bp
JOIN match_summary ms
  ON bp.match_id = ms.match_id
GROUP BY bp.player_id, bp.player_name, bp.overs, ms.venue
HAVING COUNT(DISTINCT CASE WHEN bp.overs >= 4 THEN bp.match_id END) >= 3
ORDER BY bp.player_name, avg_economy, ms.venue;`,
	},
	{
		ID:    "q15",
		Title: "Top performers in close matches",
		SQL: `WITH close_matches AS (
    SELECT sm.match_id,
           CASE
               WHEN sm.result ILIKE '%won by%'
                    AND sm.result ILIKE '%run%'
                    AND regexp_replace(sm.result, '\D', '', 'g')::INT < 50 THEN TRUE
               WHEN sm.result ILIKE '%won by%'
                    AND sm.result ILIKE '%wkt%'
                    AND regexp_replace(sm.result, '\D', '', 'g')::INT < 5 THEN TRUE
               ELSE FALSE
           END AS is_close,
           regexp_replace(sm.result, ' won.*', '') AS winner_team,
           regexp_replace(sm.result, '.*won by ', '') AS margin
    FROM match_summary sm
)
SELECT bp.player_name,
       p.team,
       ROUND(AVG(bp.runs::INT), 2) AS avg_runs_close_matches,
       COUNT(DISTINCT bp.match_id) AS total_close_matches,
       SUM(CASE WHEN cm.winner_team = p.team THEN 1 ELSE 0 END) AS matches_won_by_team,
       STRING_AGG(DISTINCT cm.margin, ', ') AS win_margins
FROM batting_performance bp
JOIN players p ON bp.player_id = p.player_id
JOIN close_matches cm ON cm.match_id = bp.match_id
WHERE cm.is_close = TRUE
GROUP BY bp.player_name, p.name, p.team
ORDER BY avg_runs_close_matches DESC;`,
	},
	{
		ID:    "q16",
		Title: "Batting trends by year since 2020",
		SQL: `WITH player_year_stats AS (
    SELECT bp.player_id,
           p.name,
           EXTRACT(YEAR FROM smt.start_date) AS year,
           COUNT(DISTINCT bp.match_id) AS matches_played,
           ROUND(SUM(bp.runs) * 1.0 / COUNT(DISTINCT bp.match_id), 2) AS avg_runs_per_match,
           ROUND(AVG(NULLIF(bp.strike_rate, 0))::NUMERIC, 2) AS avg_strike_rate
    FROM batting_performance bp
    JOIN match_summary ms
      ON bp.match_id = ms.match_id
    JOIN series_matches smt
      ON ms.match_id = smt.match_id
    JOIN players p
      ON bp.player_id = p.player_id
    GROUP BY bp.player_id, p.name, year
),
multi_year_players AS (
    SELECT player_id
    FROM player_year_stats
    GROUP BY player_id
    HAVING COUNT(DISTINCT year) >= 4
)
SELECT pys.*
FROM player_year_stats pys
JOIN multi_year_players myp
  ON pys.player_id = myp.player_id
WHERE pys.year >= 2020
  AND pys.matches_played >= 5
ORDER BY pys.name, pys.year;`,
	},
}
