// Package postgres persists boards as JSON blobs in a single table. Mutations
// lock the row with SELECT ... FOR UPDATE so concurrent writes to one board
// serialize instead of racing.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/gridironlabs/squares/internal/domain/board"
)

type BoardRepository struct {
	db *sqlx.DB
}

func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Get(ctx context.Context, id string) (board.BoardState, bool, error) {
	var row boardTableModel
	err := r.db.GetContext(ctx, &row, `SELECT id, state, created_at, updated_at FROM boards WHERE id = $1`, id)
	if isNotFound(err) {
		return board.BoardState{}, false, nil
	}
	if err != nil {
		return board.BoardState{}, false, fmt.Errorf("get board: %w", err)
	}

	state, err := decodeState(row.ID, row.State)
	if err != nil {
		return board.BoardState{}, false, err
	}
	return state, true, nil
}

func (r *BoardRepository) Save(ctx context.Context, state board.BoardState) error {
	if state.ID == "" {
		return fmt.Errorf("save board: %w", board.ErrInvalidBoardID)
	}

	payload, err := sonic.Marshal(board.NewRecord(state))
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO boards (id, state, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		state.ID, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert board: %w", err)
	}
	return nil
}

func (r *BoardRepository) List(ctx context.Context) ([]board.BoardState, error) {
	var rows []boardTableModel
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, state, created_at, updated_at FROM boards ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select boards: %w", err)
	}

	out := make([]board.BoardState, 0, len(rows))
	for _, row := range rows {
		state, err := decodeState(row.ID, row.State)
		if err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, nil
}

func (r *BoardRepository) Mutate(ctx context.Context, id string, fn func(*board.BoardState) error) (board.BoardState, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return board.BoardState{}, fmt.Errorf("begin board mutation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row boardTableModel
	err = tx.GetContext(ctx, &row, `SELECT id, state, created_at, updated_at FROM boards WHERE id = $1 FOR UPDATE`, id)
	if isNotFound(err) {
		return board.BoardState{}, fmt.Errorf("board=%s: %w", id, board.ErrBoardNotFound)
	}
	if err != nil {
		return board.BoardState{}, fmt.Errorf("lock board row: %w", err)
	}

	state, err := decodeState(row.ID, row.State)
	if err != nil {
		return board.BoardState{}, err
	}

	if err := fn(&state); err != nil {
		return board.BoardState{}, err
	}

	payload, err := sonic.Marshal(board.NewRecord(state))
	if err != nil {
		return board.BoardState{}, fmt.Errorf("encode board: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE boards SET state = $2, updated_at = now() WHERE id = $1`, id, payload); err != nil {
		return board.BoardState{}, fmt.Errorf("update board: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return board.BoardState{}, fmt.Errorf("commit board mutation: %w", err)
	}
	return state, nil
}

func (r *BoardRepository) CreateShareToken(ctx context.Context, boardID, token string) error {
	if boardID == "" || token == "" {
		return fmt.Errorf("create share token: board id and token are required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO board_share_tokens (board_id, token, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING`,
		boardID, token,
	)
	if err != nil {
		return fmt.Errorf("insert share token: %w", err)
	}
	return nil
}

func (r *BoardRepository) ValidateShareToken(ctx context.Context, boardID, token string) (bool, error) {
	var row shareTokenTableModel
	err := r.db.GetContext(ctx, &row, `SELECT board_id, token, created_at FROM board_share_tokens WHERE board_id = $1 AND token = $2`, boardID, token)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get share token: %w", err)
	}
	return true, nil
}

func decodeState(id string, payload []byte) (board.BoardState, error) {
	var rec board.Record
	if err := sonic.Unmarshal(payload, &rec); err != nil {
		return board.BoardState{}, fmt.Errorf("decode board blob: %w", err)
	}
	return board.UpgradeRecord(id, rec), nil
}
