package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/identity"
	"github.com/gridironlabs/squares/internal/platform/id"
	"github.com/gridironlabs/squares/internal/platform/logging"
)

// BoardService owns every board mutation. All writes funnel through the
// repository's Mutate so the grid rules run against fresh state.
type BoardService struct {
	boardRepo board.Repository
	idGen     id.Generator
	logger    *logging.Logger
	now       func() time.Time
	newRand   func() *rand.Rand
}

func NewBoardService(boardRepo board.Repository, idGen id.Generator, logger *logging.Logger) *BoardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BoardService{
		boardRepo: boardRepo,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

type CreateBoardInput struct {
	ID             string
	Name           string
	GameID         string
	Sport          board.Sport
	PricePerSquare int
}

func (s *BoardService) ListBoards(ctx context.Context) ([]board.BoardMeta, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.ListBoards")
	defer span.End()

	states, err := s.boardRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	metas := make([]board.BoardMeta, 0, len(states))
	for _, state := range states {
		metas = append(metas, state.Meta())
	}
	return metas, nil
}

func (s *BoardService) CreateBoard(ctx context.Context, actor identity.Identity, input CreateBoardInput) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.CreateBoard")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return board.BoardState{}, err
	}

	boardID := strings.TrimSpace(input.ID)
	if !board.ValidID(boardID) {
		return board.BoardState{}, fmt.Errorf("%w: %s", ErrInvalidInput, board.ErrInvalidBoardID)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return board.BoardState{}, fmt.Errorf("%w: %s", ErrInvalidInput, board.ErrBoardNameMissing)
	}

	_, exists, err := s.boardRepo.Get(ctx, boardID)
	if err != nil {
		return board.BoardState{}, fmt.Errorf("get board: %w", err)
	}
	if exists {
		return board.BoardState{}, fmt.Errorf("%w: board=%s", board.ErrBoardExists, boardID)
	}

	state := board.New(boardID, name, strings.TrimSpace(input.GameID), input.Sport, input.PricePerSquare, s.now().UTC())
	if err := s.boardRepo.Save(ctx, state); err != nil {
		return board.BoardState{}, fmt.Errorf("save board: %w", err)
	}

	s.logger.InfoContext(ctx, "board created",
		"board_id", boardID,
		"game_id", state.GameID,
		"sport", state.Sport,
		"actor", actor.Key(),
	)
	return state, nil
}

// GetBoard loads a board, creating an empty one on first access. Auto-created
// boards use the id as their name and carry defaults until an admin edits
// them.
func (s *BoardService) GetBoard(ctx context.Context, boardID string) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.GetBoard")
	defer span.End()

	boardID = strings.TrimSpace(boardID)
	if !board.ValidID(boardID) {
		return board.BoardState{}, fmt.Errorf("%w: %s", ErrInvalidInput, board.ErrInvalidBoardID)
	}

	state, exists, err := s.boardRepo.Get(ctx, boardID)
	if err != nil {
		return board.BoardState{}, fmt.Errorf("get board: %w", err)
	}
	if exists {
		return state, nil
	}

	state = board.New(boardID, boardID, "", board.SportNFL, board.DefaultPricePerSquare, s.now().UTC())
	if err := s.boardRepo.Save(ctx, state); err != nil {
		return board.BoardState{}, fmt.Errorf("save board: %w", err)
	}

	s.logger.InfoContext(ctx, "board auto-created on first access", "board_id", boardID)
	return state, nil
}

func (s *BoardService) ClaimSquare(ctx context.Context, actor identity.Identity, boardID string, row, col int, displayName string) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.ClaimSquare")
	defer span.End()

	if err := s.requireActor(actor, boardID); err != nil {
		return board.BoardState{}, err
	}

	label := strings.TrimSpace(displayName)
	if label == "" {
		label = actor.Label()
	}

	now := s.now().UTC()
	return s.mutate(ctx, boardID, func(state *board.BoardState) error {
		return state.Claim(row, col, actor.Key(), label, now)
	})
}

func (s *BoardService) UnclaimSquare(ctx context.Context, actor identity.Identity, boardID string, row, col int) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.UnclaimSquare")
	defer span.End()

	if err := s.requireActor(actor, boardID); err != nil {
		return board.BoardState{}, err
	}
	if !actor.CanUnclaim() {
		return board.BoardState{}, fmt.Errorf("%w: share links cannot release squares", ErrForbidden)
	}

	return s.mutate(ctx, boardID, func(state *board.BoardState) error {
		if actor.IsAdmin() && board.ValidPosition(row, col) {
			// Admins release anyone's unpaid square.
			if square := state.Squares[row][col]; square.Claimed() && !square.Paid {
				return state.Clear(row, col)
			}
		}
		return state.Unclaim(row, col, actor.Key())
	})
}

func (s *BoardService) SetSquarePaid(ctx context.Context, actor identity.Identity, boardID string, row, col int, paid bool) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.SetSquarePaid")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return board.BoardState{}, err
	}

	now := s.now().UTC()
	return s.mutate(ctx, boardID, func(state *board.BoardState) error {
		return state.SetPaid(row, col, paid, now)
	})
}

func (s *BoardService) SetSquareOwner(ctx context.Context, actor identity.Identity, boardID string, row, col int, owner string) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.SetSquareOwner")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return board.BoardState{}, err
	}

	return s.mutate(ctx, boardID, func(state *board.BoardState) error {
		return state.SetOwner(row, col, strings.TrimSpace(owner))
	})
}

func (s *BoardService) SetSquareDisplayName(ctx context.Context, actor identity.Identity, boardID string, row, col int, displayName string) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.SetSquareDisplayName")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return board.BoardState{}, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return board.BoardState{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	return s.mutate(ctx, boardID, func(state *board.BoardState) error {
		return state.SetDisplayName(row, col, displayName)
	})
}

func (s *BoardService) ClearSquare(ctx context.Context, actor identity.Identity, boardID string, row, col int) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.ClearSquare")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return board.BoardState{}, err
	}

	return s.mutate(ctx, boardID, func(state *board.BoardState) error {
		return state.Clear(row, col)
	})
}

func (s *BoardService) RandomizeNumbers(ctx context.Context, actor identity.Identity, boardID string) (board.BoardState, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.RandomizeNumbers")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return board.BoardState{}, err
	}

	rng := s.newRand()
	state, err := s.mutate(ctx, boardID, func(state *board.BoardState) error {
		return state.Randomize(rng)
	})
	if err != nil {
		return board.BoardState{}, err
	}

	s.logger.InfoContext(ctx, "board numbers randomized and locked",
		"board_id", boardID,
		"actor", actor.Key(),
	)
	return state, nil
}

// CreateShareLink mints a token granting claim-only access to one board.
func (s *BoardService) CreateShareLink(ctx context.Context, actor identity.Identity, boardID string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.CreateShareLink")
	defer span.End()

	if err := s.requireAdmin(actor); err != nil {
		return "", err
	}

	if _, err := s.GetBoard(ctx, boardID); err != nil {
		return "", err
	}

	token, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	if err := s.boardRepo.CreateShareToken(ctx, boardID, token); err != nil {
		return "", fmt.Errorf("create share token: %w", err)
	}

	s.logger.InfoContext(ctx, "share link created", "board_id", boardID, "actor", actor.Key())
	return token, nil
}

// ResolveShareIdentity exchanges a share token plus a chosen display name for
// a board-scoped identity.
func (s *BoardService) ResolveShareIdentity(ctx context.Context, boardID, token, displayName string) (identity.Identity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.ResolveShareIdentity")
	defer span.End()

	boardID = strings.TrimSpace(boardID)
	token = strings.TrimSpace(token)
	displayName = strings.TrimSpace(displayName)
	if boardID == "" || token == "" {
		return identity.Identity{}, fmt.Errorf("%w: share token is missing", ErrUnauthorized)
	}
	if displayName == "" {
		return identity.Identity{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	valid, err := s.boardRepo.ValidateShareToken(ctx, boardID, token)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("validate share token: %w", err)
	}
	if !valid {
		return identity.Identity{}, fmt.Errorf("%w: share token is not valid for this board", ErrUnauthorized)
	}

	return identity.Share(displayName, boardID), nil
}

func (s *BoardService) mutate(ctx context.Context, boardID string, fn func(*board.BoardState) error) (board.BoardState, error) {
	boardID = strings.TrimSpace(boardID)
	if !board.ValidID(boardID) {
		return board.BoardState{}, fmt.Errorf("%w: %s", ErrInvalidInput, board.ErrInvalidBoardID)
	}

	// Boards are auto-created on first read, so a mutation against a fresh id
	// creates it too.
	if _, err := s.GetBoard(ctx, boardID); err != nil {
		return board.BoardState{}, err
	}

	state, err := s.boardRepo.Mutate(ctx, boardID, fn)
	if err != nil {
		return board.BoardState{}, err
	}
	return state, nil
}

func (s *BoardService) requireActor(actor identity.Identity, boardID string) error {
	if actor.IsZero() {
		return fmt.Errorf("%w: sign in or use a share link", ErrUnauthorized)
	}
	if !actor.CanAct(boardID) {
		return fmt.Errorf("%w: share link is scoped to another board", ErrForbidden)
	}
	return nil
}

func (s *BoardService) requireAdmin(actor identity.Identity) error {
	if actor.IsZero() {
		return fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin required", ErrForbidden)
	}
	return nil
}
