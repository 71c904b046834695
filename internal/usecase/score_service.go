package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gridironlabs/squares/external/espn"
	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/game"
	"github.com/gridironlabs/squares/internal/platform/cache"
	"github.com/gridironlabs/squares/internal/platform/logging"
	"github.com/gridironlabs/squares/internal/platform/resilience"
)

const (
	defaultScoreFetchInterval = 20 * time.Second
	defaultPrefetchWorkers    = 4
)

// ScoreFeed is the live scoreboard dependency.
type ScoreFeed interface {
	Scoreboard(ctx context.Context, sport board.Sport) ([]game.Info, error)
	GameByID(ctx context.Context, gameID string, sport board.Sport) (game.Info, error)
	FindGame(ctx context.Context, sport board.Sport, team1, team2 string) (game.Info, error)
}

// ScoreService serves game snapshots to views, keeping a short-TTL cache warm
// so a page full of boards does not fan out into one feed call per board.
type ScoreService struct {
	feed      ScoreFeed
	boardRepo board.Repository
	cache     *cache.Store
	logger    *logging.Logger
	now       func() time.Time

	fetchFlight     resilience.SingleFlight
	fetchMu         sync.Mutex
	lastFetchAt     map[string]time.Time
	fetchInterval   time.Duration
	prefetchWorkers int
}

func NewScoreService(feed ScoreFeed, boardRepo board.Repository, scoreCache *cache.Store, logger *logging.Logger) *ScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	if scoreCache == nil {
		scoreCache = cache.NewStore(defaultScoreFetchInterval)
	}
	return &ScoreService{
		feed:            feed,
		boardRepo:       boardRepo,
		cache:           scoreCache,
		logger:          logger,
		now:             time.Now,
		lastFetchAt:     make(map[string]time.Time),
		fetchInterval:   defaultScoreFetchInterval,
		prefetchWorkers: defaultPrefetchWorkers,
	}
}

// GameForBoard returns the snapshot for the board's configured game, or nil
// when the board has no game attached or the game is not on the scoreboard.
// Game ids of the form "AAA-BBB" are treated as a team pairing and matched
// against abbreviations, covering boards configured before kickoff week when
// the event id is not yet known.
func (s *ScoreService) GameForBoard(ctx context.Context, b board.BoardState) (*game.Info, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.GameForBoard")
	defer span.End()

	gameID := strings.TrimSpace(b.GameID)
	if gameID == "" {
		return nil, nil
	}

	key := scoreCacheKey(b.Sport, gameID)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		info, fetchErr := s.fetchGame(ctx, b.Sport, gameID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		s.markFetch(key, s.now().UTC())
		return info, nil
	})
	if err != nil {
		if errors.Is(err, espn.ErrGameNotFound) {
			s.logger.WarnContext(ctx, "configured game not on scoreboard",
				"board_id", b.ID,
				"game_id", gameID,
				"sport", b.Sport,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: score feed: %v", ErrDependencyUnavailable, err)
	}

	info, ok := value.(game.Info)
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (s *ScoreService) fetchGame(ctx context.Context, sport board.Sport, gameID string) (game.Info, error) {
	if team1, team2, ok := splitTeamPair(gameID); ok {
		return s.feed.FindGame(ctx, sport, team1, team2)
	}
	return s.feed.GameByID(ctx, gameID, sport)
}

// splitTeamPair recognizes "DEN-BUF" style ids. Real ESPN event ids are
// numeric, so any single hyphen with non-empty sides means a team pairing.
func splitTeamPair(gameID string) (string, string, bool) {
	parts := strings.Split(gameID, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), true
}

// PrefetchAll warms the cache for every board with a game attached. Fetches
// for distinct games run on a small worker pool; games refreshed within the
// fetch interval are skipped.
func (s *ScoreService) PrefetchAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.PrefetchAll")
	defer span.End()

	states, err := s.boardRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list boards for score prefetch: %w", err)
	}

	type target struct {
		sport  board.Sport
		gameID string
	}
	seen := make(map[string]bool)
	targets := make([]target, 0, len(states))
	for _, state := range states {
		gameID := strings.TrimSpace(state.GameID)
		if gameID == "" {
			continue
		}
		key := scoreCacheKey(state.Sport, gameID)
		if seen[key] || s.shouldSkipFetch(key, s.now().UTC()) {
			continue
		}
		seen[key] = true
		targets = append(targets, target{sport: state.Sport, gameID: gameID})
	}
	if len(targets) == 0 {
		return nil
	}

	pool, err := ants.NewPool(s.prefetchWorkers)
	if err != nil {
		return fmt.Errorf("create prefetch worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, t := range targets {
		t := t
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			key := scoreCacheKey(t.sport, t.gameID)
			info, fetchErr := s.fetchGame(ctx, t.sport, t.gameID)
			if fetchErr != nil {
				if !errors.Is(fetchErr, espn.ErrGameNotFound) {
					s.logger.WarnContext(ctx, "score prefetch failed",
						"game_id", t.gameID,
						"sport", t.sport,
						"error", fetchErr,
					)
				}
				return
			}
			s.cache.Set(ctx, key, info)
			s.markFetch(key, s.now().UTC())
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit prefetch task: %w", err)
		}
	}
	workers.Wait()

	return nil
}

// RunPoller refreshes scores on a fixed cadence until the context is
// cancelled. Run it in its own goroutine.
func (s *ScoreService) RunPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultScoreFetchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("score poller started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("score poller stopped")
			return
		case <-ticker.C:
			if err := s.PrefetchAll(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("score poll tick failed", "error", err)
			}
		}
	}
}

func (s *ScoreService) shouldSkipFetch(key string, now time.Time) bool {
	if s.fetchInterval <= 0 || key == "" {
		return false
	}
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	last, ok := s.lastFetchAt[key]
	if !ok || last.IsZero() {
		return false
	}
	return now.Sub(last) < s.fetchInterval
}

func (s *ScoreService) markFetch(key string, now time.Time) {
	if key == "" {
		return
	}
	s.fetchMu.Lock()
	s.lastFetchAt[key] = now
	s.fetchMu.Unlock()
}

func scoreCacheKey(sport board.Sport, gameID string) string {
	return "score:" + string(sport) + ":" + gameID
}
