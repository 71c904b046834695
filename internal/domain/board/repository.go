package board

import (
	"context"
	"errors"
)

// ErrBoardNotFound is returned by Mutate when the board id has no state yet.
var ErrBoardNotFound = errors.New("board not found")

// Repository persists whole-board state blobs. Mutate performs a
// read-modify-write of the full blob; whether concurrent mutations to the
// same board serialize or race last-write-wins is a property of the backend.
type Repository interface {
	Get(ctx context.Context, id string) (BoardState, bool, error)
	Save(ctx context.Context, state BoardState) error
	List(ctx context.Context) ([]BoardState, error)
	Mutate(ctx context.Context, id string, fn func(*BoardState) error) (BoardState, error)
	CreateShareToken(ctx context.Context, boardID, token string) error
	ValidateShareToken(ctx context.Context, boardID, token string) (bool, error)
}
