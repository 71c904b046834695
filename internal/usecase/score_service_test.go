package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gridironlabs/squares/external/espn"
	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/game"
	"github.com/gridironlabs/squares/internal/platform/cache"
	"github.com/gridironlabs/squares/internal/platform/logging"
)

type stubScoreFeed struct {
	mu        sync.Mutex
	games     map[string]game.Info
	err       error
	calls     int
	pairCalls []string
}

func newStubScoreFeed(games ...game.Info) *stubScoreFeed {
	byID := make(map[string]game.Info, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return &stubScoreFeed{games: byID}
}

func (f *stubScoreFeed) Scoreboard(_ context.Context, _ board.Sport) ([]game.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]game.Info, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, g)
	}
	return out, nil
}

func (f *stubScoreFeed) GameByID(_ context.Context, gameID string, _ board.Sport) (game.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return game.Info{}, f.err
	}
	info, ok := f.games[gameID]
	if !ok {
		return game.Info{}, fmt.Errorf("game=%s: %w", gameID, espn.ErrGameNotFound)
	}
	return info, nil
}

func (f *stubScoreFeed) FindGame(_ context.Context, _ board.Sport, team1, team2 string) (game.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.pairCalls = append(f.pairCalls, team1+"/"+team2)
	if f.err != nil {
		return game.Info{}, f.err
	}
	for _, g := range f.games {
		if g.Home.Abbreviation == team1 || g.Away.Abbreviation == team1 {
			if g.Home.Abbreviation == team2 || g.Away.Abbreviation == team2 {
				return g, nil
			}
		}
	}
	return game.Info{}, fmt.Errorf("pairing %s-%s: %w", team1, team2, espn.ErrGameNotFound)
}

func (f *stubScoreFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func denBufGame() game.Info {
	return game.Info{
		ID:        "401547417",
		ShortName: "DEN @ BUF",
		Home:      game.Team{Abbreviation: "BUF", Score: 24},
		Away:      game.Team{Abbreviation: "DEN", Score: 17},
		Status:    game.StatusIn,
	}
}

func newTestScoreService(feed ScoreFeed, repo board.Repository) *ScoreService {
	svc := NewScoreService(feed, repo, cache.NewStore(time.Minute), logging.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func boardWithGame(id, gameID string) board.BoardState {
	return board.New(id, id, gameID, board.SportNFL, 10, testNow)
}

func TestGameForBoard(t *testing.T) {
	feed := newStubScoreFeed(denBufGame())
	svc := newTestScoreService(feed, nil)
	ctx := context.Background()

	info, err := svc.GameForBoard(ctx, boardWithGame("b", "401547417"))
	if err != nil {
		t.Fatalf("game for board: %v", err)
	}
	if info == nil || info.Home.Score != 24 {
		t.Fatalf("unexpected snapshot: %+v", info)
	}

	// Second lookup is served from cache.
	if _, err := svc.GameForBoard(ctx, boardWithGame("b2", "401547417")); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if got := feed.callCount(); got != 1 {
		t.Fatalf("feed calls = %d, want 1", got)
	}
}

func TestGameForBoard_NoGameConfigured(t *testing.T) {
	svc := newTestScoreService(newStubScoreFeed(), nil)

	info, err := svc.GameForBoard(context.Background(), boardWithGame("b", ""))
	if err != nil || info != nil {
		t.Fatalf("expected nil, nil for board without game, got %v, %v", info, err)
	}
}

func TestGameForBoard_NotOnScoreboard(t *testing.T) {
	svc := newTestScoreService(newStubScoreFeed(), nil)

	info, err := svc.GameForBoard(context.Background(), boardWithGame("b", "999"))
	if err != nil {
		t.Fatalf("missing game should degrade, not fail: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil snapshot, got %+v", info)
	}
}

func TestGameForBoard_FeedDown(t *testing.T) {
	feed := newStubScoreFeed()
	feed.err = errors.New("connection refused")
	svc := newTestScoreService(feed, nil)

	_, err := svc.GameForBoard(context.Background(), boardWithGame("b", "401547417"))
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestGameForBoard_TeamPairFallback(t *testing.T) {
	feed := newStubScoreFeed(denBufGame())
	svc := newTestScoreService(feed, nil)

	info, err := svc.GameForBoard(context.Background(), boardWithGame("b", "den-buf"))
	if err != nil {
		t.Fatalf("team pair lookup: %v", err)
	}
	if info == nil || info.ID != "401547417" {
		t.Fatalf("unexpected snapshot: %+v", info)
	}
	if len(feed.pairCalls) != 1 || feed.pairCalls[0] != "DEN/BUF" {
		t.Fatalf("expected uppercased pair lookup, got %v", feed.pairCalls)
	}
}

func TestSplitTeamPair(t *testing.T) {
	cases := []struct {
		gameID string
		ok     bool
	}{
		{"den-buf", true},
		{"DEN-BUF", true},
		{"401547417", false},
		{"den-buf-extra", false},
		{"-buf", false},
		{"den-", false},
		{"", false},
	}
	for _, tc := range cases {
		if _, _, ok := splitTeamPair(tc.gameID); ok != tc.ok {
			t.Fatalf("splitTeamPair(%q) ok = %v, want %v", tc.gameID, ok, tc.ok)
		}
	}
}

func TestPrefetchAll(t *testing.T) {
	feed := newStubScoreFeed(denBufGame())
	boards, _ := newTestBoardService()
	ctx := context.Background()

	// Two boards on the same game, one without a game.
	if _, err := boards.CreateBoard(ctx, adminActor, CreateBoardInput{ID: "a", Name: "A", GameID: "401547417"}); err != nil {
		t.Fatalf("create board: %v", err)
	}
	if _, err := boards.CreateBoard(ctx, adminActor, CreateBoardInput{ID: "b", Name: "B", GameID: "401547417"}); err != nil {
		t.Fatalf("create board: %v", err)
	}
	if _, err := boards.CreateBoard(ctx, adminActor, CreateBoardInput{ID: "c", Name: "C"}); err != nil {
		t.Fatalf("create board: %v", err)
	}

	svc := newTestScoreService(feed, boards.boardRepo)
	if err := svc.PrefetchAll(ctx); err != nil {
		t.Fatalf("prefetch: %v", err)
	}
	if got := feed.callCount(); got != 1 {
		t.Fatalf("feed calls = %d, want 1 (deduped)", got)
	}

	// A second pass within the fetch interval skips the refresh entirely.
	if err := svc.PrefetchAll(ctx); err != nil {
		t.Fatalf("second prefetch: %v", err)
	}
	if got := feed.callCount(); got != 1 {
		t.Fatalf("feed calls = %d, want 1 (interval skip)", got)
	}

	// After the interval the game is fetched again.
	svc.now = func() time.Time { return testNow.Add(time.Minute) }
	if err := svc.PrefetchAll(ctx); err != nil {
		t.Fatalf("third prefetch: %v", err)
	}
	if got := feed.callCount(); got != 2 {
		t.Fatalf("feed calls = %d, want 2", got)
	}
}

func TestPrefetchAll_ToleratesFeedErrors(t *testing.T) {
	feed := newStubScoreFeed()
	feed.err = errors.New("boom")
	boards, _ := newTestBoardService()
	ctx := context.Background()

	if _, err := boards.CreateBoard(ctx, adminActor, CreateBoardInput{ID: "a", Name: "A", GameID: "401547417"}); err != nil {
		t.Fatalf("create board: %v", err)
	}

	svc := newTestScoreService(feed, boards.boardRepo)
	if err := svc.PrefetchAll(ctx); err != nil {
		t.Fatalf("prefetch should swallow per-game errors, got %v", err)
	}
}
