package server

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/utakatalp/cricview/internal/cricket"
	"github.com/utakatalp/cricview/internal/store"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// dashboardData feeds the server-rendered overview page.
type dashboardData struct {
	Matches     []cricket.Match
	MatchesErr  string
	RunLeaders  []store.Leader
	HundLeaders []store.Leader
	Queries     []store.Query
}

// dashboard renders the overview: live matches plus the two leaderboards the
// original UI charted. An upstream failure degrades to a notice rather than
// taking the page down.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := dashboardData{Queries: store.Queries()}

	matches, err := h.api.LiveMatches(ctx)
	if err != nil {
		h.log.Warn("dashboard: live matches unavailable", zap.Error(err))
		data.MatchesErr = "No live matches found or API limit may have been reached."
	} else {
		data.Matches = matches
	}

	if leaders, err := h.db.LeadersByRuns(ctx, 10); err == nil {
		data.RunLeaders = leaders
	} else {
		h.log.Warn("dashboard: run leaders unavailable", zap.Error(err))
	}
	if leaders, err := h.db.LeadersByHundreds(ctx, 10); err == nil {
		data.HundLeaders = leaders
	} else {
		h.log.Warn("dashboard: hundred leaders unavailable", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		h.log.Error("rendering dashboard", zap.Error(err))
	}
}
