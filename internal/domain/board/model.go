package board

import (
	"regexp"
	"time"
)

// GridSize is the number of rows and columns on every board.
const GridSize = 10

// DefaultPricePerSquare is applied when a board is created without an
// explicit price.
const DefaultPricePerSquare = 10

// CurrentSchemaVersion is stamped on every persisted board record.
const CurrentSchemaVersion = 2

type Sport string

const (
	SportNFL Sport = "nfl"
	SportCFB Sport = "cfb"
)

var boardIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidID reports whether id is usable as a board identifier.
func ValidID(id string) bool {
	return id != "" && boardIDPattern.MatchString(id)
}

// Square is one cell of the grid. A zero ClaimedBy means the cell is empty;
// every other claim field must then be empty as well.
type Square struct {
	Row         int        `json:"row"`
	Col         int        `json:"col"`
	ClaimedBy   string     `json:"claimedBy,omitempty"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Paid        bool       `json:"paid"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

func (s Square) Claimed() bool {
	return s.ClaimedBy != ""
}

// Label is the name shown on the grid for a claimed square.
func (s Square) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.ClaimedBy
}

// BoardState is the full persisted state of one squares board.
type BoardState struct {
	SchemaVersion  int          `json:"schemaVersion"`
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Squares        [][]Square   `json:"squares"`
	RowNumbers     []int        `json:"rowNumbers"`
	ColNumbers     []int        `json:"colNumbers"`
	NumbersLocked  bool         `json:"numbersLocked"`
	GameID         string       `json:"gameId,omitempty"`
	Sport          Sport        `json:"sport"`
	CreatedAt      time.Time    `json:"createdAt"`
	PricePerSquare int          `json:"pricePerSquare"`
}

// BoardMeta is the listing projection of a board. Derived, never persisted.
type BoardMeta struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	GameID       string    `json:"gameId,omitempty"`
	Sport        Sport     `json:"sport"`
	CreatedAt    time.Time `json:"createdAt"`
	ClaimedCount int       `json:"claimedCount"`
}

// New builds an empty board: all squares unclaimed and row/col numbers at the
// identity permutation, unlocked.
func New(id, name, gameID string, sport Sport, pricePerSquare int, now time.Time) BoardState {
	if sport == "" {
		sport = SportNFL
	}
	if pricePerSquare <= 0 {
		pricePerSquare = DefaultPricePerSquare
	}

	squares := make([][]Square, GridSize)
	for row := 0; row < GridSize; row++ {
		squares[row] = make([]Square, GridSize)
		for col := 0; col < GridSize; col++ {
			squares[row][col] = Square{Row: row, Col: col}
		}
	}

	return BoardState{
		SchemaVersion:  CurrentSchemaVersion,
		ID:             id,
		Name:           name,
		Squares:        squares,
		RowNumbers:     identityNumbers(),
		ColNumbers:     identityNumbers(),
		GameID:         gameID,
		Sport:          sport,
		CreatedAt:      now,
		PricePerSquare: pricePerSquare,
	}
}

func identityNumbers() []int {
	numbers := make([]int, GridSize)
	for i := range numbers {
		numbers[i] = i
	}
	return numbers
}

// Meta derives the listing projection.
func (b BoardState) Meta() BoardMeta {
	return BoardMeta{
		ID:           b.ID,
		Name:         b.Name,
		GameID:       b.GameID,
		Sport:        b.Sport,
		CreatedAt:    b.CreatedAt,
		ClaimedCount: b.ClaimedCount(),
	}
}

func (b BoardState) ClaimedCount() int {
	count := 0
	for _, row := range b.Squares {
		for _, square := range row {
			if square.Claimed() {
				count++
			}
		}
	}
	return count
}

// ClaimedSquares returns every claimed cell in row-major order.
func (b BoardState) ClaimedSquares() []Square {
	out := make([]Square, 0, 16)
	for _, row := range b.Squares {
		for _, square := range row {
			if square.Claimed() {
				out = append(out, square)
			}
		}
	}
	return out
}

// Clone deep-copies the state so callers can mutate without sharing slices.
func (b BoardState) Clone() BoardState {
	copied := b
	copied.Squares = make([][]Square, len(b.Squares))
	for i, row := range b.Squares {
		copied.Squares[i] = append([]Square(nil), row...)
	}
	copied.RowNumbers = append([]int(nil), b.RowNumbers...)
	copied.ColNumbers = append([]int(nil), b.ColNumbers...)
	return copied
}
