// Package espn fetches live game snapshots from ESPN's public scoreboard
// API. Only the fields the reconciliation engine consumes are decoded.
package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/game"
	"github.com/gridironlabs/squares/internal/platform/logging"
	"github.com/gridironlabs/squares/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football"

	nflScoreboardPath = "/nfl/scoreboard"
	cfbScoreboardPath = "/college-football/scoreboard"
)

var (
	ErrGameNotFound = stderrors.New("game not found on scoreboard")

	errESPNTransient = crerr.New("espn transient failure")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Scoreboard fetches every game currently listed for the sport. Concurrent
// callers for the same sport share one request.
func (c *Client) Scoreboard(ctx context.Context, sport board.Sport) ([]game.Info, error) {
	value, err, _ := c.flight.Do("scoreboard:"+string(sport), func() (any, error) {
		return c.fetchScoreboard(ctx, sport)
	})
	if err != nil {
		return nil, err
	}
	games, _ := value.([]game.Info)
	return games, nil
}

// GameByID returns the snapshot for one game id, or ErrGameNotFound.
func (c *Client) GameByID(ctx context.Context, gameID string, sport board.Sport) (game.Info, error) {
	games, err := c.Scoreboard(ctx, sport)
	if err != nil {
		return game.Info{}, err
	}
	for _, info := range games {
		if info.ID == gameID {
			return info, nil
		}
	}
	return game.Info{}, fmt.Errorf("game_id=%s sport=%s: %w", gameID, sport, ErrGameNotFound)
}

// FindGame locates the game pairing the two team abbreviations.
func (c *Client) FindGame(ctx context.Context, sport board.Sport, team1, team2 string) (game.Info, error) {
	games, err := c.Scoreboard(ctx, sport)
	if err != nil {
		return game.Info{}, err
	}
	for _, info := range games {
		if matchesTeams(info, team1, team2) {
			return info, nil
		}
	}
	return game.Info{}, fmt.Errorf("teams=%s/%s sport=%s: %w", team1, team2, sport, ErrGameNotFound)
}

func matchesTeams(info game.Info, team1, team2 string) bool {
	abbrs := map[string]bool{
		info.Home.Abbreviation: true,
		info.Away.Abbreviation: true,
	}
	return abbrs[team1] && abbrs[team2]
}

func (c *Client) fetchScoreboard(ctx context.Context, sport board.Sport) ([]game.Info, error) {
	path := nflScoreboardPath
	if sport == board.SportCFB {
		path = cfbScoreboardPath
	}

	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard sport=%s: %w", sport, err)
	}

	games := make([]game.Info, 0, len(envelope.Events))
	for _, event := range envelope.Events {
		info, ok := mapEvent(event)
		if !ok {
			c.logger.WarnContext(ctx, "skipping malformed scoreboard event", "event_id", event.ID)
			continue
		}
		games = append(games, info)
	}
	return games, nil
}

func (c *Client) doJSON(ctx context.Context, path string, out any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("espn is temporarily unavailable: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = c.doJSONOnce(ctx, path, out)
		if lastErr == nil {
			if c.circuitEnabled {
				c.breaker.RecordSuccess()
			}
			return nil
		}
		if !crerr.Is(lastErr, errESPNTransient) {
			break
		}
		c.logger.WarnContext(ctx, "espn request retry",
			"path", path,
			"attempt", attempt+1,
			"error", lastErr,
		)
	}

	if c.circuitEnabled {
		c.breaker.RecordFailure()
	}
	return lastErr
}

func (c *Client) doJSONOnce(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(fmt.Errorf("do request: %w", err), errESPNTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := io.Copy(buf, io.LimitReader(resp.Body, 8<<20)); err != nil {
		return crerr.Mark(fmt.Errorf("read response body: %w", err), errESPNTransient)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return crerr.Mark(fmt.Errorf("espn status %d", resp.StatusCode), errESPNTransient)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("espn status %d", resp.StatusCode)
	}

	if err := sonic.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("decode scoreboard payload: %w", err)
	}
	return nil
}

// Wire schema, limited to the consumed fields.

type scoreboardEnvelope struct {
	Events []eventPayload `json:"events"`
}

type eventPayload struct {
	ID           string               `json:"id"`
	ShortName    string               `json:"shortName"`
	Competitions []competitionPayload `json:"competitions"`
}

type competitionPayload struct {
	Competitors []competitorPayload `json:"competitors"`
	Status      statusPayload       `json:"status"`
}

type competitorPayload struct {
	HomeAway   string             `json:"homeAway"`
	Score      string             `json:"score"`
	Team       teamPayload        `json:"team"`
	LineScores []lineScorePayload `json:"linescores"`
}

type teamPayload struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
}

type lineScorePayload struct {
	Value float64 `json:"value"`
}

type statusPayload struct {
	DisplayClock string            `json:"displayClock"`
	Period       int               `json:"period"`
	Type         statusTypePayload `json:"type"`
}

type statusTypePayload struct {
	State string `json:"state"`
}

func mapEvent(event eventPayload) (game.Info, bool) {
	if len(event.Competitions) == 0 {
		return game.Info{}, false
	}
	competition := event.Competitions[0]

	var home, away *competitorPayload
	for i := range competition.Competitors {
		switch competition.Competitors[i].HomeAway {
		case "home":
			home = &competition.Competitors[i]
		case "away":
			away = &competition.Competitors[i]
		}
	}
	if home == nil || away == nil {
		return game.Info{}, false
	}

	status := game.Status(competition.Status.Type.State)
	switch status {
	case game.StatusPre, game.StatusIn, game.StatusPost:
	default:
		return game.Info{}, false
	}

	return game.Info{
		ID:        event.ID,
		ShortName: event.ShortName,
		Home:      mapCompetitor(*home),
		Away:      mapCompetitor(*away),
		Period:    competition.Status.Period,
		Clock:     competition.Status.DisplayClock,
		Status:    status,
	}, true
}

func mapCompetitor(competitor competitorPayload) game.Team {
	score, err := strconv.Atoi(strings.TrimSpace(competitor.Score))
	if err != nil {
		score = 0
	}

	lineScores := make([]int, 0, len(competitor.LineScores))
	for _, line := range competitor.LineScores {
		lineScores = append(lineScores, int(line.Value))
	}

	return game.Team{
		ID:           competitor.Team.ID,
		Abbreviation: competitor.Team.Abbreviation,
		Name:         competitor.Team.Name,
		DisplayName:  competitor.Team.DisplayName,
		Score:        score,
		LineScores:   lineScores,
	}
}
