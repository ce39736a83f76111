package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/utakatalp/cricview/internal/cricbuzz"
	"github.com/utakatalp/cricview/internal/cricket"
	"github.com/utakatalp/cricview/internal/store"
)

// CricketAPI is the slice of the upstream client the handlers need.
type CricketAPI interface {
	LiveMatches(ctx context.Context) ([]cricket.Match, error)
	Scorecard(ctx context.Context, matchID int) (*cricket.Scorecard, error)
	SearchPlayers(ctx context.Context, name string) ([]cricket.Player, error)
	PlayerStats(ctx context.Context, playerID, kind string) (*cricket.StatsTable, error)
}

// Database is the slice of the store the handlers need.
type Database interface {
	Ping(ctx context.Context) error
	ListTopPlayers(ctx context.Context, nameFilter string) ([]cricket.TopPlayer, error)
	GetTopPlayer(ctx context.Context, playerID int64) (*cricket.TopPlayer, error)
	CreateTopPlayer(ctx context.Context, p cricket.TopPlayer) error
	UpdateTopPlayer(ctx context.Context, playerID int64, upd store.TopPlayerUpdate) error
	DeleteTopPlayer(ctx context.Context, playerID int64) error
	LeadersByRuns(ctx context.Context, limit int) ([]store.Leader, error)
	LeadersByHundreds(ctx context.Context, limit int) ([]store.Leader, error)
	RunQuery(ctx context.Context, id string) (*store.Result, error)
}

// Handler routes dashboard and API requests.
type Handler struct {
	api    CricketAPI
	db     Database
	log    *zap.Logger
	router *mux.Router
}

// NewHandler wires up all routes.
func NewHandler(api CricketAPI, db Database, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{api: api, db: db, log: log}

	r := mux.NewRouter()
	r.Use(h.withRequestID, h.withLogging, h.withRecovery)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/", h.dashboard).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/matches/live", h.liveMatches).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches/{id:[0-9]+}/scorecard", h.scorecard).Methods(http.MethodGet)
	apiRouter.HandleFunc("/players/search", h.searchPlayers).Methods(http.MethodGet)
	apiRouter.HandleFunc("/players/{id}/stats/{kind:batting|bowling}", h.playerStats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/queries", h.listQueries).Methods(http.MethodGet)
	apiRouter.HandleFunc("/queries/{id}/run", h.runQuery).Methods(http.MethodPost)
	apiRouter.HandleFunc("/top-players", h.listTopPlayers).Methods(http.MethodGet)
	apiRouter.HandleFunc("/top-players", h.createTopPlayer).Methods(http.MethodPost)
	apiRouter.HandleFunc("/top-players/leaders", h.leaders).Methods(http.MethodGet)
	apiRouter.HandleFunc("/top-players/{playerID:[0-9]+}", h.getTopPlayer).Methods(http.MethodGet)
	apiRouter.HandleFunc("/top-players/{playerID:[0-9]+}", h.updateTopPlayer).Methods(http.MethodPut)
	apiRouter.HandleFunc("/top-players/{playerID:[0-9]+}", h.deleteTopPlayer).Methods(http.MethodDelete)

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encoding response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// apiError maps known failures onto HTTP statuses.
func (h *Handler) apiError(w http.ResponseWriter, err error) {
	var statusErr *cricbuzz.StatusError
	switch {
	case errors.Is(err, cricbuzz.ErrRateLimited):
		h.writeError(w, http.StatusServiceUnavailable, "API rate limit reached, please wait a minute")
	case errors.As(err, &statusErr):
		h.writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUnknownQuery):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away, nothing useful to send.
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) liveMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.api.LiveMatches(r.Context())
	if err != nil {
		h.apiError(w, err)
		return
	}
	if matches == nil {
		matches = []cricket.Match{}
	}
	h.writeJSON(w, http.StatusOK, matches)
}

func (h *Handler) scorecard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	card, err := h.api.Scorecard(r.Context(), id)
	if err != nil {
		h.apiError(w, err)
		return
	}
	if len(card.Summary) == 0 {
		h.writeError(w, http.StatusNotFound, "scorecard not available for this match yet")
		return
	}
	h.writeJSON(w, http.StatusOK, card)
}

func (h *Handler) searchPlayers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("q")
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	players, err := h.api.SearchPlayers(r.Context(), name)
	if err != nil {
		h.apiError(w, err)
		return
	}
	if players == nil {
		players = []cricket.Player{}
	}
	h.writeJSON(w, http.StatusOK, players)
}

func (h *Handler) playerStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	table, err := h.api.PlayerStats(r.Context(), vars["id"], vars["kind"])
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, table)
}

func (h *Handler) listQueries(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, store.Queries())
}

func (h *Handler) runQuery(w http.ResponseWriter, r *http.Request) {
	res, err := h.db.RunQuery(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listTopPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.db.ListTopPlayers(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.apiError(w, err)
		return
	}
	if players == nil {
		players = []cricket.TopPlayer{}
	}
	h.writeJSON(w, http.StatusOK, players)
}

func (h *Handler) getTopPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(mux.Vars(r)["playerID"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	p, err := h.db.GetTopPlayer(r.Context(), playerID)
	if err != nil {
		h.apiError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createTopPlayer(w http.ResponseWriter, r *http.Request) {
	var p cricket.TopPlayer
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		h.writeError(w, http.StatusBadRequest, "player name is required")
		return
	}
	if p.PlayerID <= 0 {
		h.writeError(w, http.StatusBadRequest, "player_id must be positive")
		return
	}
	if err := h.db.CreateTopPlayer(r.Context(), p); err != nil {
		h.apiError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateTopPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(mux.Vars(r)["playerID"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var upd store.TopPlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.db.UpdateTopPlayer(r.Context(), playerID, upd); err != nil {
		h.apiError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteTopPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(mux.Vars(r)["playerID"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	if err := h.db.DeleteTopPlayer(r.Context(), playerID); err != nil {
		h.apiError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) leaders(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		leaders []store.Leader
		err     error
	)
	switch by := r.URL.Query().Get("by"); by {
	case "", "runs":
		leaders, err = h.db.LeadersByRuns(r.Context(), limit)
	case "hundreds":
		leaders, err = h.db.LeadersByHundreds(r.Context(), limit)
	default:
		h.writeError(w, http.StatusBadRequest, "by must be runs or hundreds")
		return
	}
	if err != nil {
		h.apiError(w, err)
		return
	}
	if leaders == nil {
		leaders = []store.Leader{}
	}
	h.writeJSON(w, http.StatusOK, leaders)
}
