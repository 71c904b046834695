package board

import (
	"errors"
	"math/rand"
	"time"
)

var (
	ErrInvalidPosition  = errors.New("square position out of range")
	ErrAlreadyClaimed   = errors.New("square already claimed")
	ErrNotClaimed       = errors.New("square not claimed")
	ErrNotClaimedByYou  = errors.New("square not claimed by you")
	ErrAlreadyLocked    = errors.New("numbers already randomized")
	ErrBoardExists      = errors.New("board already exists")
	ErrInvalidBoardID   = errors.New("board id can only contain letters, numbers, and hyphens")
	ErrBoardNameMissing = errors.New("board name is required")
)

// ValidPosition reports whether (row, col) addresses a cell on the grid.
func ValidPosition(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

func (b *BoardState) squareAt(row, col int) (*Square, error) {
	if !ValidPosition(row, col) {
		return nil, ErrInvalidPosition
	}
	return &b.Squares[row][col], nil
}

// Claim assigns an empty cell to the given claim key. displayName is the
// label shown on the grid; share-link visitors pass their chosen name here.
func (b *BoardState) Claim(row, col int, key, displayName string, now time.Time) error {
	square, err := b.squareAt(row, col)
	if err != nil {
		return err
	}
	if square.Claimed() {
		return ErrAlreadyClaimed
	}
	if displayName == "" {
		displayName = key
	}

	claimedAt := now
	square.ClaimedBy = key
	square.ClaimedAt = &claimedAt
	square.DisplayName = displayName
	return nil
}

// Unclaim resets a cell claimed by key. A paid cell can never be unclaimed,
// payment is final.
func (b *BoardState) Unclaim(row, col int, key string) error {
	square, err := b.squareAt(row, col)
	if err != nil {
		return err
	}
	if square.ClaimedBy != key || square.Paid {
		return ErrNotClaimedByYou
	}

	b.reset(square)
	return nil
}

// SetPaid toggles payment on a claimed cell. Marking paid propagates to every
// cell claimed by the same key: payment is per person, not per square.
// Marking unpaid touches only the targeted cell.
func (b *BoardState) SetPaid(row, col int, paid bool, now time.Time) error {
	square, err := b.squareAt(row, col)
	if err != nil {
		return err
	}
	if !square.Claimed() {
		return ErrNotClaimed
	}

	if !paid {
		square.Paid = false
		square.PaidAt = nil
		return nil
	}

	paidAt := now
	key := square.ClaimedBy
	for rowIdx := range b.Squares {
		for colIdx := range b.Squares[rowIdx] {
			cell := &b.Squares[rowIdx][colIdx]
			if cell.ClaimedBy == key {
				cell.Paid = true
				cell.PaidAt = &paidAt
			}
		}
	}
	return nil
}

// SetOwner stamps the real-world payer label on every cell sharing the
// targeted cell's claim key.
func (b *BoardState) SetOwner(row, col int, owner string) error {
	square, err := b.squareAt(row, col)
	if err != nil {
		return err
	}
	if !square.Claimed() {
		return ErrNotClaimed
	}

	key := square.ClaimedBy
	for rowIdx := range b.Squares {
		for colIdx := range b.Squares[rowIdx] {
			cell := &b.Squares[rowIdx][colIdx]
			if cell.ClaimedBy == key {
				cell.Owner = owner
			}
		}
	}
	return nil
}

// SetDisplayName relabels a single claimed cell. Unlike SetOwner this never
// propagates; the label belongs to the cell, not the person.
func (b *BoardState) SetDisplayName(row, col int, displayName string) error {
	square, err := b.squareAt(row, col)
	if err != nil {
		return err
	}
	if !square.Claimed() {
		return ErrNotClaimed
	}

	square.DisplayName = displayName
	return nil
}

// Clear unconditionally resets one cell.
func (b *BoardState) Clear(row, col int) error {
	square, err := b.squareAt(row, col)
	if err != nil {
		return err
	}

	b.reset(square)
	return nil
}

func (b *BoardState) reset(square *Square) {
	*square = Square{Row: square.Row, Col: square.Col}
}

// Randomize shuffles row and column digit assignments and locks them. The
// lock is one-shot for the lifetime of the board.
func (b *BoardState) Randomize(rng *rand.Rand) error {
	if b.NumbersLocked {
		return ErrAlreadyLocked
	}

	shuffle(b.RowNumbers, rng)
	shuffle(b.ColNumbers, rng)
	b.NumbersLocked = true
	return nil
}

// Fisher-Yates over the digit slice.
func shuffle(numbers []int, rng *rand.Rand) {
	for i := len(numbers) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		numbers[i], numbers[j] = numbers[j], numbers[i]
	}
}
