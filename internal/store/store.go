// Package store persists and queries cricket data in Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/utakatalp/cricview/internal/cricket"
)

// ErrNotFound is returned when a player id does not exist.
var ErrNotFound = errors.New("player not found")

// ErrDuplicate is returned when an insert collides on player_id.
var ErrDuplicate = errors.New("player already exists")

// Store wraps a Postgres connection and provides methods to persist and
// retrieve cricket data.
type Store struct {
	DB  *sqlx.DB
	log *zap.Logger
}

// Open opens a Postgres connection using the given connection string.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Info("database connection established")
	return &Store{DB: db, log: log}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(db *sqlx.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{DB: db, log: log}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Ping checks the connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Migrate creates the necessary tables if they do not exist. It covers the
// CRUD target table and the analytics schema the predefined queries read, so
// a fresh database runs every query instead of erroring on missing relations.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS top_players (
			id             SERIAL PRIMARY KEY,
			player_id      BIGINT  NOT NULL UNIQUE,
			name           TEXT    NOT NULL,
			matches_played INT     NOT NULL DEFAULT 0,
			innings_batted INT     NOT NULL DEFAULT 0,
			runs           INT     NOT NULL DEFAULT 0,
			average        NUMERIC(6,2) NOT NULL DEFAULT 0,
			hundred        INT     NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			player_id BIGINT PRIMARY KEY,
			name      TEXT NOT NULL,
			team      TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS team_india (
			player_id    BIGINT PRIMARY KEY,
			name         TEXT NOT NULL,
			battingstyle TEXT,
			bowlingstyle TEXT,
			role         TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS venues (
			id       SERIAL PRIMARY KEY,
			ground   TEXT NOT NULL,
			city     TEXT,
			country  TEXT,
			capacity INT
		);`,
		`CREATE TABLE IF NOT EXISTS recent_matches (
			match_id          BIGINT PRIMARY KEY,
			match_description TEXT,
			team_name_1       TEXT,
			team_name_2       TEXT,
			result            TEXT,
			venue_name        TEXT,
			end_date_time     TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS series_matches (
			id                SERIAL PRIMARY KEY,
			match_id          BIGINT,
			seriesid          BIGINT,
			seriesname        TEXT,
			status            TEXT,
			host_country      TEXT,
			matchformat       TEXT,
			series_start_date TEXT,
			start_date        DATE
		);`,
		// Career stat values arrive as scraped text ("273*", "-"), so the
		// columns stay TEXT and the analytics queries cast where needed.
		`CREATE TABLE IF NOT EXISTS player_batting_career_stats (
			player_id   BIGINT,
			player_name TEXT,
			format      TEXT,
			runs        TEXT,
			average     TEXT,
			highest     TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS player_bowling_career_stats (
			player_id   BIGINT,
			player_name TEXT,
			format      TEXT,
			wickets     TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS innings_batting (
			innings_id  BIGINT,
			series_name TEXT,
			player_name TEXT,
			batting_pos INT,
			runs        INT
		);`,
		`CREATE TABLE IF NOT EXISTS batting_performance (
			match_id    BIGINT,
			player_id   BIGINT,
			player_name TEXT,
			runs        INT,
			strike_rate DOUBLE PRECISION
		);`,
		`CREATE TABLE IF NOT EXISTS bowling_performance (
			match_id    BIGINT,
			player_id   BIGINT,
			player_name TEXT,
			overs       DOUBLE PRECISION,
			runs        INT,
			wickets     INT
		);`,
		`CREATE TABLE IF NOT EXISTS match_summary (
			match_id BIGINT PRIMARY KEY,
			venue    TEXT,
			result   TEXT
		);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// ListTopPlayers returns all rows in top_players, optionally filtered by a
// case-insensitive name fragment.
func (s *Store) ListTopPlayers(ctx context.Context, nameFilter string) ([]cricket.TopPlayer, error) {
	var players []cricket.TopPlayer
	var err error
	if nameFilter == "" {
		err = s.DB.SelectContext(ctx, &players,
			`SELECT id, player_id, name, matches_played, innings_batted, runs, average, hundred
			 FROM top_players ORDER BY id`)
	} else {
		err = s.DB.SelectContext(ctx, &players,
			`SELECT id, player_id, name, matches_played, innings_batted, runs, average, hundred
			 FROM top_players WHERE name ILIKE '%' || $1 || '%' ORDER BY id`, nameFilter)
	}
	if err != nil {
		return nil, fmt.Errorf("querying top players: %w", err)
	}
	return players, nil
}

// GetTopPlayer returns one player by player_id.
func (s *Store) GetTopPlayer(ctx context.Context, playerID int64) (*cricket.TopPlayer, error) {
	var p cricket.TopPlayer
	err := s.DB.GetContext(ctx, &p,
		`SELECT id, player_id, name, matches_played, innings_batted, runs, average, hundred
		 FROM top_players WHERE player_id = $1`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying top player %d: %w", playerID, err)
	}
	return &p, nil
}

// CreateTopPlayer inserts a new row.
func (s *Store) CreateTopPlayer(ctx context.Context, p cricket.TopPlayer) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO top_players (player_id, name, matches_played, innings_batted, runs, average, hundred)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.PlayerID, p.Name, p.MatchesPlayed, p.InningsBatted, p.Runs, p.Average, p.Hundreds)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting player %d (%s): %w", p.PlayerID, p.Name, err)
	}
	return nil
}

// TopPlayerUpdate carries the fields the update form may change.
type TopPlayerUpdate struct {
	Runs     int     `json:"runs"`
	Average  float64 `json:"average"`
	Hundreds int     `json:"hundreds"`
}

// UpdateTopPlayer updates a player's career numbers by player_id.
func (s *Store) UpdateTopPlayer(ctx context.Context, playerID int64, upd TopPlayerUpdate) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE top_players SET runs = $1, average = $2, hundred = $3 WHERE player_id = $4`,
		upd.Runs, upd.Average, upd.Hundreds, playerID)
	if err != nil {
		return fmt.Errorf("updating player %d: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating player %d: %w", playerID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTopPlayer removes a player by player_id.
func (s *Store) DeleteTopPlayer(ctx context.Context, playerID int64) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM top_players WHERE player_id = $1`, playerID)
	if err != nil {
		return fmt.Errorf("deleting player %d: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting player %d: %w", playerID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Leader is one bar in a dashboard leaderboard chart.
type Leader struct {
	Name  string `db:"name" json:"name"`
	Value int64  `db:"value" json:"value"`
}

// LeadersByRuns returns the top players ranked by total runs.
func (s *Store) LeadersByRuns(ctx context.Context, limit int) ([]Leader, error) {
	var leaders []Leader
	err := s.DB.SelectContext(ctx, &leaders,
		`SELECT name, runs AS value FROM top_players ORDER BY runs DESC, name LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run leaders: %w", err)
	}
	return leaders, nil
}

// LeadersByHundreds returns the top players ranked by centuries.
func (s *Store) LeadersByHundreds(ctx context.Context, limit int) ([]Leader, error) {
	var leaders []Leader
	err := s.DB.SelectContext(ctx, &leaders,
		`SELECT name, hundred AS value FROM top_players ORDER BY hundred DESC, name LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying hundred leaders: %w", err)
	}
	return leaders, nil
}
