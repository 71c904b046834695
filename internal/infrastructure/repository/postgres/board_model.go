package postgres

import "time"

// boardTableModel maps the boards table. State is the full board blob; the id
// column exists so mutations can lock one row.
type boardTableModel struct {
	ID        string    `db:"id"`
	State     []byte    `db:"state"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type shareTokenTableModel struct {
	BoardID   string    `db:"board_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}
