package cricket

// Match is one entry from the live match feed, flattened out of the
// nested series structure the upstream API returns.
type Match struct {
	ID     int    `json:"id"`
	Desc   string `json:"name"`
	Series string `json:"series"`
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Venue  string `json:"venue"`
	State  string `json:"state"`
	Status string `json:"status"`
}

// InningsSummary holds the per-innings totals, including the extras breakdown.
type InningsSummary struct {
	MatchID   int     `json:"match_id"`
	InningsID int     `json:"innings_id"`
	Team      string  `json:"team"`
	Score     int     `json:"score"`
	Wickets   int     `json:"wickets"`
	Overs     float64 `json:"overs"`
	RunRate   float64 `json:"run_rate"`
	Extras    int     `json:"extras"`
	Byes      int     `json:"byes"`
	LegByes   int     `json:"leg_byes"`
	Wides     int     `json:"wides"`
	NoBalls   int     `json:"no_balls"`
}

// BattingEntry is one batter's line in an innings.
type BattingEntry struct {
	InningsID  int     `json:"innings_id"`
	Team       string  `json:"team"`
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	Dismissal  string  `json:"dismissal"`
}

// BowlingEntry is one bowler's line in an innings.
type BowlingEntry struct {
	InningsID int     `json:"innings_id"`
	Team      string  `json:"team"`
	Name      string  `json:"name"`
	Overs     float64 `json:"overs"`
	Runs      int     `json:"runs"`
	Wickets   int     `json:"wickets"`
	Economy   float64 `json:"economy"`
}

// FallOfWicket records the team score when a batter fell.
type FallOfWicket struct {
	InningsID int     `json:"innings_id"`
	Team      string  `json:"team"`
	Batsman   string  `json:"batsman"`
	Score     int     `json:"score_at_fall"`
	Over      float64 `json:"over"`
}

// Scorecard is the full parsed scorecard for a match, split into the four
// tables the dashboard renders.
type Scorecard struct {
	MatchID       int              `json:"match_id"`
	Summary       []InningsSummary `json:"summary"`
	Batting       []BattingEntry   `json:"batting"`
	Bowling       []BowlingEntry   `json:"bowling"`
	FallOfWickets []FallOfWicket   `json:"fall_of_wickets"`
}

// Player is a search result from the player index.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TeamName string `json:"team_name"`
	DOB      string `json:"dob,omitempty"`
}

// StatsTable is a career stats grid as the API serves it: a header row plus
// string-valued cells, one row per format.
type StatsTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// TopPlayer is a row in the top_players table.
type TopPlayer struct {
	ID            int64   `db:"id" json:"id"`
	PlayerID      int64   `db:"player_id" json:"player_id"`
	Name          string  `db:"name" json:"name"`
	MatchesPlayed int     `db:"matches_played" json:"matches_played"`
	InningsBatted int     `db:"innings_batted" json:"innings_batted"`
	Runs          int     `db:"runs" json:"runs"`
	Average       float64 `db:"average" json:"average"`
	Hundreds      int     `db:"hundred" json:"hundreds"`
}
