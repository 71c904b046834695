package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gridironlabs/squares/internal/domain/board"
)

// BoardRepository keeps boards in process memory. The default backend for
// tests and single-node setups without persistence.
type BoardRepository struct {
	mu     sync.RWMutex
	items  map[string]board.BoardState
	tokens map[string]map[string]bool
}

func NewBoardRepository() *BoardRepository {
	return &BoardRepository{
		items:  make(map[string]board.BoardState),
		tokens: make(map[string]map[string]bool),
	}
}

func (r *BoardRepository) Get(_ context.Context, id string) (board.BoardState, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.items[id]
	if !ok {
		return board.BoardState{}, false, nil
	}
	return state.Clone(), true, nil
}

func (r *BoardRepository) Save(_ context.Context, state board.BoardState) error {
	if state.ID == "" {
		return fmt.Errorf("save board: %w", board.ErrInvalidBoardID)
	}

	r.mu.Lock()
	r.items[state.ID] = state.Clone()
	r.mu.Unlock()
	return nil
}

func (r *BoardRepository) List(_ context.Context) ([]board.BoardState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]board.BoardState, 0, len(r.items))
	for _, state := range r.items {
		out = append(out, state.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Mutate runs fn against the stored state under the write lock, so in-memory
// mutations fully serialize per repository.
func (r *BoardRepository) Mutate(_ context.Context, id string, fn func(*board.BoardState) error) (board.BoardState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[id]
	if !ok {
		return board.BoardState{}, fmt.Errorf("board=%s: %w", id, board.ErrBoardNotFound)
	}

	state := stored.Clone()
	if err := fn(&state); err != nil {
		return board.BoardState{}, err
	}

	r.items[id] = state.Clone()
	return state, nil
}

func (r *BoardRepository) CreateShareToken(_ context.Context, boardID, token string) error {
	if boardID == "" || token == "" {
		return fmt.Errorf("create share token: board id and token are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokens[boardID] == nil {
		r.tokens[boardID] = make(map[string]bool)
	}
	r.tokens[boardID][token] = true
	return nil
}

func (r *BoardRepository) ValidateShareToken(_ context.Context, boardID, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tokens[boardID][token], nil
}
