package cricbuzz

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/utakatalp/cricview/internal/cricket"
)

// flexNumber tolerates the API serving numeric fields as either JSON numbers
// or strings, which it does inconsistently across match types.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if string(data) == "null" {
		*n = ""
		return nil
	}
	*n = flexNumber(data)
	return nil
}

func (n flexNumber) Int() int {
	f := n.Float()
	return int(f)
}

func (n flexNumber) Float() float64 {
	if n == "" {
		return 0
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0
	}
	return f
}

// liveResponse mirrors the nested structure of /matches/v1/live. Entries
// without a seriesAdWrapper are advertising blocks and carry no matches.
type liveResponse struct {
	TypeMatches []struct {
		SeriesMatches []struct {
			SeriesAdWrapper *struct {
				Matches []struct {
					MatchInfo *matchInfo `json:"matchInfo"`
				} `json:"matches"`
			} `json:"seriesAdWrapper"`
		} `json:"seriesMatches"`
	} `json:"typeMatches"`
}

type matchInfo struct {
	MatchID    int    `json:"matchId"`
	MatchDesc  string `json:"matchDesc"`
	SeriesName string `json:"seriesName"`
	State      string `json:"state"`
	Status     string `json:"status"`
	Team1      struct {
		TeamName string `json:"teamName"`
	} `json:"team1"`
	Team2 struct {
		TeamName string `json:"teamName"`
	} `json:"team2"`
	VenueInfo struct {
		Ground string `json:"ground"`
	} `json:"venueInfo"`
}

func (r *liveResponse) flatten() []cricket.Match {
	var matches []cricket.Match
	for _, mtype := range r.TypeMatches {
		for _, series := range mtype.SeriesMatches {
			if series.SeriesAdWrapper == nil {
				continue
			}
			for _, m := range series.SeriesAdWrapper.Matches {
				info := m.MatchInfo
				if info == nil {
					continue
				}
				match := cricket.Match{
					ID:     info.MatchID,
					Desc:   info.MatchDesc,
					Series: info.SeriesName,
					Team1:  info.Team1.TeamName,
					Team2:  info.Team2.TeamName,
					Venue:  info.VenueInfo.Ground,
					State:  info.State,
					Status: info.Status,
				}
				if match.Series == "" {
					match.Series = "N/A"
				}
				if match.Team1 == "" {
					match.Team1 = "TBC"
				}
				if match.Team2 == "" {
					match.Team2 = "TBC"
				}
				if match.Venue == "" {
					match.Venue = "Unknown"
				}
				matches = append(matches, match)
			}
		}
	}
	return matches
}

// scorecardResponse mirrors /mcenter/v1/{id}/hscard.
type scorecardResponse struct {
	Scorecard []struct {
		InningsID   int        `json:"inningsid"`
		BatTeamName string     `json:"batteamname"`
		Score       flexNumber `json:"score"`
		Wickets     flexNumber `json:"wickets"`
		Overs       flexNumber `json:"overs"`
		RunRate     flexNumber `json:"runrate"`
		Batsman     []struct {
			Name       string     `json:"name"`
			Runs       flexNumber `json:"runs"`
			Balls      flexNumber `json:"balls"`
			Fours      flexNumber `json:"fours"`
			Sixes      flexNumber `json:"sixes"`
			StrikeRate flexNumber `json:"strkrate"`
			OutDec     string     `json:"outdec"`
		} `json:"batsman"`
		Bowler []struct {
			Name    string     `json:"name"`
			Overs   flexNumber `json:"overs"`
			Runs    flexNumber `json:"runs"`
			Wickets flexNumber `json:"wickets"`
			Economy flexNumber `json:"economy"`
		} `json:"bowler"`
		FOW struct {
			FOW []struct {
				BatsmanName string     `json:"batsmanname"`
				Runs        flexNumber `json:"runs"`
				OverNbr     flexNumber `json:"overnbr"`
			} `json:"fow"`
		} `json:"fow"`
		Extras struct {
			Total   flexNumber `json:"total"`
			Byes    flexNumber `json:"byes"`
			LegByes flexNumber `json:"legbyes"`
			Wides   flexNumber `json:"wides"`
			NoBalls flexNumber `json:"noballs"`
		} `json:"extras"`
	} `json:"scorecard"`
}

// HasInnings reports whether the response contains at least one innings.
func (r *scorecardResponse) HasInnings() bool {
	return len(r.Scorecard) > 0
}

// parseScorecard splits the raw scorecard into the four dashboard tables.
// Some feeds repeat innings blocks, so identical rows are collapsed.
func parseScorecard(resp *scorecardResponse, matchID int) *cricket.Scorecard {
	card := &cricket.Scorecard{MatchID: matchID}
	seen := make(map[string]struct{})

	uniq := func(parts ...any) bool {
		key := fmt.Sprint(parts...)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	}

	for _, inns := range resp.Scorecard {
		for _, b := range inns.Batsman {
			entry := cricket.BattingEntry{
				InningsID:  inns.InningsID,
				Team:       inns.BatTeamName,
				Name:       b.Name,
				Runs:       b.Runs.Int(),
				Balls:      b.Balls.Int(),
				Fours:      b.Fours.Int(),
				Sixes:      b.Sixes.Int(),
				StrikeRate: b.StrikeRate.Float(),
				Dismissal:  b.OutDec,
			}
			if uniq("bat", entry) {
				card.Batting = append(card.Batting, entry)
			}
		}
		for _, bw := range inns.Bowler {
			entry := cricket.BowlingEntry{
				InningsID: inns.InningsID,
				Team:      inns.BatTeamName,
				Name:      bw.Name,
				Overs:     bw.Overs.Float(),
				Runs:      bw.Runs.Int(),
				Wickets:   bw.Wickets.Int(),
				Economy:   bw.Economy.Float(),
			}
			if uniq("bowl", entry) {
				card.Bowling = append(card.Bowling, entry)
			}
		}
		for _, f := range inns.FOW.FOW {
			entry := cricket.FallOfWicket{
				InningsID: inns.InningsID,
				Team:      inns.BatTeamName,
				Batsman:   f.BatsmanName,
				Score:     f.Runs.Int(),
				Over:      f.OverNbr.Float(),
			}
			if uniq("fow", entry) {
				card.FallOfWickets = append(card.FallOfWickets, entry)
			}
		}
		summary := cricket.InningsSummary{
			MatchID:   matchID,
			InningsID: inns.InningsID,
			Team:      inns.BatTeamName,
			Score:     inns.Score.Int(),
			Wickets:   inns.Wickets.Int(),
			Overs:     inns.Overs.Float(),
			RunRate:   inns.RunRate.Float(),
			Extras:    inns.Extras.Total.Int(),
			Byes:      inns.Extras.Byes.Int(),
			LegByes:   inns.Extras.LegByes.Int(),
			Wides:     inns.Extras.Wides.Int(),
			NoBalls:   inns.Extras.NoBalls.Int(),
		}
		if uniq("sum", summary) {
			card.Summary = append(card.Summary, summary)
		}
	}
	return card
}

// playerSearchResponse mirrors /stats/v1/player/search.
type playerSearchResponse struct {
	Player []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		TeamName string `json:"teamName"`
		DOB      string `json:"dob"`
	} `json:"player"`
}

// playerStatsResponse mirrors /stats/v1/player/{id}/{batting,bowling}.
type playerStatsResponse struct {
	Headers []string `json:"headers"`
	Values  []struct {
		Values []string `json:"values"`
	} `json:"values"`
}

func (r *playerStatsResponse) table() *cricket.StatsTable {
	table := &cricket.StatsTable{Headers: r.Headers}
	for _, row := range r.Values {
		if len(row.Values) == 0 {
			continue
		}
		table.Rows = append(table.Rows, row.Values)
	}
	return table
}
