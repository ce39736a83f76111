// Package cricbuzz is a client for the Cricbuzz cricket API on RapidAPI.
// It throttles and retries requests and caches responses, since the free
// tier enforces an aggressive rate limit.
package cricbuzz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/ratelimit"
	"github.com/juju/retry"
	"go.uber.org/zap"

	"github.com/utakatalp/cricview/internal/cricket"
)

// ErrRateLimited reports that the upstream kept answering 429 until the
// retry budget ran out.
var ErrRateLimited = errors.New("upstream rate limit reached")

// StatusError is returned for any non-429 error status from the API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Config defines the inputs for the API client. Zero values fall back to
// sensible defaults; only Host and Key are required.
type Config struct {
	Host string
	Key  string
	// BaseURL overrides the https://<Host> default. Tests point it at a
	// local server.
	BaseURL string

	Timeout time.Duration
	// Rate is the sustained request rate against the upstream, per second.
	Rate float64

	LiveTTL      time.Duration
	ScorecardTTL time.Duration
	PlayerTTL    time.Duration

	RetryAttempts int
	RetryDelay    time.Duration

	Clock clock.Clock
}

// Client calls the Cricbuzz API.
type Client struct {
	baseURL string
	host    string
	key     string

	httpClient *http.Client
	log        *zap.Logger
	clk        clock.Clock
	bucket     *ratelimit.Bucket
	cache      *ttlCache

	liveTTL   time.Duration
	cardTTL   time.Duration
	playerTTL time.Duration

	retryAttempts int
	retryDelay    time.Duration
}

// New builds a configured client.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 5
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = 60 * time.Second
	}
	if cfg.ScorecardTTL <= 0 {
		cfg.ScorecardTTL = 30 * time.Second
	}
	if cfg.PlayerTTL <= 0 {
		cfg.PlayerTTL = time.Hour
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 4
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Host
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		host:          cfg.Host,
		key:           cfg.Key,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		log:           log,
		clk:           cfg.Clock,
		bucket:        ratelimit.NewBucketWithRate(cfg.Rate, 1),
		cache:         newTTLCache(cfg.Clock),
		liveTTL:       cfg.LiveTTL,
		cardTTL:       cfg.ScorecardTTL,
		playerTTL:     cfg.PlayerTTL,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
}

// LiveMatches fetches the current live matches, flattened into a single list.
func (c *Client) LiveMatches(ctx context.Context) ([]cricket.Match, error) {
	const key = "live"
	if v, ok := c.cache.get(key); ok {
		return v.([]cricket.Match), nil
	}
	var resp liveResponse
	if err := c.getJSON(ctx, "/matches/v1/live", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching live matches: %w", err)
	}
	matches := resp.flatten()
	c.cache.set(key, matches, c.liveTTL)
	return matches, nil
}

// Scorecard fetches and parses the full scorecard for a match.
func (c *Client) Scorecard(ctx context.Context, matchID int) (*cricket.Scorecard, error) {
	key := fmt.Sprintf("hscard/%d", matchID)
	if v, ok := c.cache.get(key); ok {
		return v.(*cricket.Scorecard), nil
	}
	var resp scorecardResponse
	path := fmt.Sprintf("/mcenter/v1/%d/hscard", matchID)
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching scorecard for match %d: %w", matchID, err)
	}
	card := parseScorecard(&resp, matchID)
	c.cache.set(key, card, c.cardTTL)
	return card, nil
}

// SearchPlayers looks up players by name.
func (c *Client) SearchPlayers(ctx context.Context, name string) ([]cricket.Player, error) {
	key := "search/" + strings.ToLower(strings.TrimSpace(name))
	if v, ok := c.cache.get(key); ok {
		return v.([]cricket.Player), nil
	}
	var resp playerSearchResponse
	q := url.Values{"plrN": {name}}
	if err := c.getJSON(ctx, "/stats/v1/player/search", q, &resp); err != nil {
		return nil, fmt.Errorf("searching players for %q: %w", name, err)
	}
	players := make([]cricket.Player, 0, len(resp.Player))
	for _, p := range resp.Player {
		players = append(players, cricket.Player{
			ID:       p.ID,
			Name:     p.Name,
			TeamName: p.TeamName,
			DOB:      p.DOB,
		})
	}
	c.cache.set(key, players, c.playerTTL)
	return players, nil
}

// PlayerStats fetches a career stats grid. Kind is "batting" or "bowling".
func (c *Client) PlayerStats(ctx context.Context, playerID, kind string) (*cricket.StatsTable, error) {
	if kind != "batting" && kind != "bowling" {
		return nil, fmt.Errorf("stats kind must be %q or %q, got %q", "batting", "bowling", kind)
	}
	key := "stats/" + playerID + "/" + kind
	if v, ok := c.cache.get(key); ok {
		return v.(*cricket.StatsTable), nil
	}
	var resp playerStatsResponse
	path := fmt.Sprintf("/stats/v1/player/%s/%s", url.PathEscape(playerID), kind)
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching %s stats for player %s: %w", kind, playerID, err)
	}
	table := resp.table()
	c.cache.set(key, table, c.playerTTL)
	return table, nil
}

// getJSON performs a throttled GET with retry on 429 and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return c.do(ctx, target, out)
		},
		IsFatalError: func(err error) bool {
			return !errors.Is(err, ErrRateLimited)
		},
		NotifyFunc: func(lastError error, attempt int) {
			c.log.Warn("retrying upstream request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(lastError))
		},
		Attempts:    c.retryAttempts,
		Delay:       c.retryDelay,
		MaxDelay:    10 * time.Second,
		BackoffFunc: retry.DoubleDelay,
		Clock:       c.clk,
		Stop:        ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		return retry.LastError(err)
	}
	return err
}

// do performs a single request attempt.
func (c *Client) do(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 400:
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// throttle takes a token from the rate bucket, waiting if necessary.
func (c *Client) throttle(ctx context.Context) error {
	wait := c.bucket.Take(1)
	if wait <= 0 {
		return nil
	}
	select {
	case <-c.clk.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
