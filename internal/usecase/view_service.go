package usecase

import (
	"context"

	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/game"
	"github.com/gridironlabs/squares/internal/domain/identity"
	"github.com/gridironlabs/squares/internal/domain/payout"
	"github.com/gridironlabs/squares/internal/platform/logging"
)

// CellBadges pairs one grid cell with its quarter labels.
type CellBadges struct {
	Row    int      `json:"row"`
	Col    int      `json:"col"`
	Badges []string `json:"badges"`
}

// BoardView is everything a grid page needs in one shot. All score-derived
// fields are recomputed from the live snapshot on every request.
type BoardView struct {
	Board         board.BoardState       `json:"board"`
	Game          *game.Info             `json:"game,omitempty"`
	TotalPot      int                    `json:"totalPot"`
	Payouts       []payout.QuarterPayout `json:"payouts"`
	Badges        []CellBadges           `json:"badges"`
	CurrentWinner *payout.Position       `json:"currentWinner,omitempty"`
}

// MySquaresView is the viewer's personal rollup on one board.
type MySquaresView struct {
	Squares []payout.RankedSquare `json:"squares"`
	Summary payout.PaymentSummary `json:"summary"`
}

// ViewService assembles read models by joining board state with the live
// score feed through the reconciliation functions.
type ViewService struct {
	boards *BoardService
	scores *ScoreService
	logger *logging.Logger
}

func NewViewService(boards *BoardService, scores *ScoreService, logger *logging.Logger) *ViewService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ViewService{
		boards: boards,
		scores: scores,
		logger: logger,
	}
}

// BoardView renders the grid for a viewer. Until numbers are locked, digit
// assignments are hidden from everyone but admins so nobody can aim their
// claims at known digits.
func (s *ViewService) BoardView(ctx context.Context, viewer identity.Identity, boardID string) (BoardView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ViewService.BoardView")
	defer span.End()

	state, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return BoardView{}, err
	}

	info := s.gameOrNil(ctx, state)

	view := BoardView{
		Board:    maskNumbers(state, viewer),
		Game:     info,
		TotalPot: payout.TotalPot(state),
		Payouts:  payout.QuarterPayouts(state, info),
		Badges:   flattenBadges(payout.Badges(state, info)),
	}
	if pos, ok := payout.CurrentWinner(state, info); ok {
		view.CurrentWinner = &pos
	}
	return view, nil
}

// MySquares ranks the viewer's squares and totals what they owe.
func (s *ViewService) MySquares(ctx context.Context, viewer identity.Identity, boardID string) (MySquaresView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ViewService.MySquares")
	defer span.End()

	if viewer.IsZero() {
		return MySquaresView{}, ErrUnauthorized
	}

	state, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return MySquaresView{}, err
	}

	info := s.gameOrNil(ctx, state)
	return MySquaresView{
		Squares: payout.MySquares(state, info, viewer.Key()),
		Summary: payout.Summarize(state, viewer.Key()),
	}, nil
}

// UserStats is the admin money table: squares and amount owed per person.
func (s *ViewService) UserStats(ctx context.Context, viewer identity.Identity, boardID string) ([]payout.UserStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ViewService.UserStats")
	defer span.End()

	if err := s.boards.requireAdmin(viewer); err != nil {
		return nil, err
	}

	state, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return payout.UserStats(state), nil
}

// Scenarios projects the winning square for common scoring plays. Empty until
// numbers are locked and a game snapshot is available.
func (s *ViewService) Scenarios(ctx context.Context, viewer identity.Identity, boardID string) ([]payout.Scenario, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ViewService.Scenarios")
	defer span.End()

	state, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	info := s.gameOrNil(ctx, state)
	return payout.Scenarios(state, info, viewer.Key()), nil
}

// gameOrNil degrades to a score-less view when the feed is down. The grid and
// claims still render; winners and badges simply disappear until the next
// successful poll.
func (s *ViewService) gameOrNil(ctx context.Context, state board.BoardState) *game.Info {
	info, err := s.scores.GameForBoard(ctx, state)
	if err != nil {
		s.logger.WarnContext(ctx, "rendering board without live score",
			"board_id", state.ID,
			"error", err,
		)
		return nil
	}
	return info
}

func maskNumbers(state board.BoardState, viewer identity.Identity) board.BoardState {
	if state.NumbersLocked || viewer.IsAdmin() {
		return state
	}
	masked := state.Clone()
	masked.RowNumbers = nil
	masked.ColNumbers = nil
	return masked
}

func flattenBadges(badges map[payout.Position][]string) []CellBadges {
	if len(badges) == 0 {
		return []CellBadges{}
	}
	out := make([]CellBadges, 0, len(badges))
	for row := 0; row < board.GridSize; row++ {
		for col := 0; col < board.GridSize; col++ {
			if labels, ok := badges[payout.Position{Row: row, Col: col}]; ok {
				out = append(out, CellBadges{Row: row, Col: col, Badges: labels})
			}
		}
	}
	return out
}
