package board

import "time"

// Record is the persisted wire shape of a board, loose enough to decode every
// schema generation we have ever written. Version 0 records predate
// multi-board support: squares carried the claiming identity in "owner" and
// the board had no name, sport, or price.
type Record struct {
	SchemaVersion  int            `json:"schemaVersion"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Squares        [][]SquareRecord `json:"squares"`
	RowNumbers     []int          `json:"rowNumbers"`
	ColNumbers     []int          `json:"colNumbers"`
	NumbersLocked  bool           `json:"numbersLocked"`
	GameID         string         `json:"gameId"`
	Sport          string         `json:"sport"`
	CreatedAt      *time.Time     `json:"createdAt"`
	PricePerSquare *int           `json:"pricePerSquare"`
}

type SquareRecord struct {
	Row         int        `json:"row"`
	Col         int        `json:"col"`
	ClaimedBy   string     `json:"claimedBy"`
	ClaimedAt   *time.Time `json:"claimedAt"`
	DisplayName string     `json:"displayName"`
	Owner       string     `json:"owner"`
	Paid        bool       `json:"paid"`
	PaidAt      *time.Time `json:"paidAt"`
}

// UpgradeRecord converts any persisted record generation into the current
// in-memory shape. id wins over the stored id so renamed keys stay
// consistent. The function is pure: absent timestamps stay zero.
func UpgradeRecord(id string, rec Record) BoardState {
	state := BoardState{
		SchemaVersion: CurrentSchemaVersion,
		ID:            id,
		Name:          rec.Name,
		NumbersLocked: rec.NumbersLocked,
		GameID:        rec.GameID,
		Sport:         Sport(rec.Sport),
	}
	if state.ID == "" {
		state.ID = rec.ID
	}
	if state.Name == "" {
		state.Name = state.ID
	}
	if state.Sport != SportNFL && state.Sport != SportCFB {
		state.Sport = SportNFL
	}
	if rec.CreatedAt != nil {
		state.CreatedAt = *rec.CreatedAt
	}
	if rec.PricePerSquare != nil && *rec.PricePerSquare > 0 {
		state.PricePerSquare = *rec.PricePerSquare
	} else {
		state.PricePerSquare = DefaultPricePerSquare
	}

	state.RowNumbers = upgradeNumbers(rec.RowNumbers)
	state.ColNumbers = upgradeNumbers(rec.ColNumbers)

	legacyClaims := rec.SchemaVersion < 1

	state.Squares = make([][]Square, GridSize)
	for row := 0; row < GridSize; row++ {
		state.Squares[row] = make([]Square, GridSize)
		for col := 0; col < GridSize; col++ {
			cell := Square{Row: row, Col: col}
			if row < len(rec.Squares) && col < len(rec.Squares[row]) {
				cell = upgradeSquare(row, col, rec.Squares[row][col], legacyClaims)
			}
			state.Squares[row][col] = cell
		}
	}

	return state
}

func upgradeSquare(row, col int, rec SquareRecord, legacyClaims bool) Square {
	square := Square{
		Row:         row,
		Col:         col,
		ClaimedBy:   rec.ClaimedBy,
		ClaimedAt:   rec.ClaimedAt,
		DisplayName: rec.DisplayName,
		Owner:       rec.Owner,
		Paid:        rec.Paid,
		PaidAt:      rec.PaidAt,
	}

	// v0 stored the claiming identity in the owner field.
	if legacyClaims && square.ClaimedBy == "" && rec.Owner != "" {
		square.ClaimedBy = rec.Owner
		square.DisplayName = rec.Owner
		square.Owner = ""
	}

	if square.ClaimedBy == "" {
		// Enforce the empty-cell invariant on whatever we loaded.
		return Square{Row: row, Col: col}
	}
	if square.DisplayName == "" {
		square.DisplayName = square.ClaimedBy
	}
	if !square.Paid {
		square.PaidAt = nil
	}
	return square
}

// upgradeNumbers accepts only a full 10-digit assignment; anything else falls
// back to the identity permutation (which also forces NumbersLocked boards
// with corrupt numbers back into a sane display).
func upgradeNumbers(numbers []int) []int {
	if len(numbers) != GridSize {
		return identityNumbers()
	}
	seen := make(map[int]bool, GridSize)
	for _, n := range numbers {
		if n < 0 || n >= GridSize || seen[n] {
			return identityNumbers()
		}
		seen[n] = true
	}
	return append([]int(nil), numbers...)
}

// NewRecord is the write-side counterpart of UpgradeRecord.
func NewRecord(state BoardState) Record {
	rec := Record{
		SchemaVersion: CurrentSchemaVersion,
		ID:            state.ID,
		Name:          state.Name,
		RowNumbers:    append([]int(nil), state.RowNumbers...),
		ColNumbers:    append([]int(nil), state.ColNumbers...),
		NumbersLocked: state.NumbersLocked,
		GameID:        state.GameID,
		Sport:         string(state.Sport),
	}
	if !state.CreatedAt.IsZero() {
		createdAt := state.CreatedAt
		rec.CreatedAt = &createdAt
	}
	price := state.PricePerSquare
	rec.PricePerSquare = &price

	rec.Squares = make([][]SquareRecord, len(state.Squares))
	for row := range state.Squares {
		rec.Squares[row] = make([]SquareRecord, len(state.Squares[row]))
		for col, cell := range state.Squares[row] {
			rec.Squares[row][col] = SquareRecord{
				Row:         cell.Row,
				Col:         cell.Col,
				ClaimedBy:   cell.ClaimedBy,
				ClaimedAt:   cell.ClaimedAt,
				DisplayName: cell.DisplayName,
				Owner:       cell.Owner,
				Paid:        cell.Paid,
				PaidAt:      cell.PaidAt,
			}
		}
	}

	return rec
}
