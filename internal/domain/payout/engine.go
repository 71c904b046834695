// Package payout is the score-to-grid reconciliation engine: pure functions
// from (board state, game snapshot) to winners, badges, payouts, and
// per-identity rollups. Nothing here mutates state or caches; callers
// recompute on every poll.
package payout

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/game"
)

var quarterLabels = [3]string{"Q1", "Q2", "Q3"}

// WinningPosition maps a score pair to the grid cell owning its last digits.
// The home digit selects the column, the away digit the row. Returns false
// until numbers are locked; a locked board always resolves because row and
// column numbers are full permutations of 0-9.
func WinningPosition(b board.BoardState, homeScore, awayScore int) (Position, bool) {
	if !b.NumbersLocked {
		return Position{}, false
	}

	col := indexOf(b.ColNumbers, homeScore%10)
	row := indexOf(b.RowNumbers, awayScore%10)
	if row < 0 || col < 0 {
		return Position{}, false
	}
	return Position{Row: row, Col: col}, true
}

func indexOf(numbers []int, digit int) int {
	for i, n := range numbers {
		if n == digit {
			return i
		}
	}
	return -1
}

// CurrentWinner maps the live total score to a cell.
func CurrentWinner(b board.BoardState, info *game.Info) (Position, bool) {
	if info == nil {
		return Position{}, false
	}
	return WinningPosition(b, info.Home.Score, info.Away.Score)
}

// Badges maps each winning cell to its labels: Q1-Q3 from cumulative period
// scores, F from the final score. A cell can collect several labels when
// quarters repeat digits. F never appears before the game is over, even if
// the live score already points at a cell.
func Badges(b board.BoardState, info *game.Info) map[Position][]string {
	badges := make(map[Position][]string)
	if info == nil || !b.NumbersLocked {
		return badges
	}

	cumulative := game.CumulativeScores(*info)
	for i := 0; i < len(quarterLabels) && i < len(cumulative); i++ {
		if pos, ok := WinningPosition(b, cumulative[i].Home, cumulative[i].Away); ok {
			badges[pos] = append(badges[pos], quarterLabels[i])
		}
	}

	if info.IsOver() {
		if pos, ok := WinningPosition(b, info.Home.Score, info.Away.Score); ok {
			badges[pos] = append(badges[pos], "F")
		}
	}

	return badges
}

// TotalPot is the full board's take.
func TotalPot(b board.BoardState) int {
	return board.GridSize * board.GridSize * b.PricePerSquare
}

// QuarterPayouts resolves the four payout slots. Slots whose period has not
// completed (or, for the final, whose game is not over) carry a nil winner.
func QuarterPayouts(b board.BoardState, info *game.Info) []QuarterPayout {
	pot := TotalPot(b)
	quarterPayout := int(float64(pot) * QuarterShare)
	finalPayout := int(float64(pot) * FinalShare)

	out := []QuarterPayout{
		{Label: "Q1", Payout: quarterPayout},
		{Label: "Q2", Payout: quarterPayout},
		{Label: "Q3", Payout: quarterPayout},
		{Label: "Final", Payout: finalPayout},
	}
	if info == nil || !b.NumbersLocked {
		return out
	}

	cumulative := game.CumulativeScores(*info)
	for i := 0; i < len(quarterLabels); i++ {
		if i >= len(cumulative) {
			continue
		}
		out[i].Winner = resolveWinner(b, *info, cumulative[i].Home, cumulative[i].Away)
	}

	if info.IsOver() {
		out[3].Winner = resolveWinner(b, *info, info.Home.Score, info.Away.Score)
	}

	return out
}

func resolveWinner(b board.BoardState, info game.Info, homeScore, awayScore int) *Winner {
	pos, ok := WinningPosition(b, homeScore, awayScore)
	if !ok {
		return nil
	}

	score := fmt.Sprintf("%s %d, %s %d",
		info.Away.Abbreviation, awayScore,
		info.Home.Abbreviation, homeScore,
	)

	square := b.Squares[pos.Row][pos.Col]
	if !square.Claimed() {
		return &Winner{DisplayName: UnclaimedLabel, Score: score}
	}
	return &Winner{DisplayName: square.Label(), Score: score}
}

// SquaresOf returns every cell claimed by the given identity key in
// row-major order.
func SquaresOf(b board.BoardState, key string) []board.Square {
	if key == "" {
		return nil
	}
	out := make([]board.Square, 0, 8)
	for _, row := range b.Squares {
		for _, square := range row {
			if square.ClaimedBy == key {
				out = append(out, square)
			}
		}
	}
	return out
}

// Summarize computes paid/unpaid counts and the amount still owed for the
// given identity key.
func Summarize(b board.BoardState, key string) PaymentSummary {
	summary := PaymentSummary{}
	for _, square := range SquaresOf(b, key) {
		if square.Paid {
			summary.PaidCount++
		} else {
			summary.UnpaidCount++
		}
	}
	summary.AmountOwed = summary.UnpaidCount * b.PricePerSquare
	return summary
}

// UserStats groups every claimed cell by claim identity, sorted by square
// count descending. Ties break on the claim key so the admin table is stable
// across polls.
func UserStats(b board.BoardState) []UserStat {
	byKey := make(map[string]*UserStat)
	order := make([]string, 0, 16)
	for _, square := range b.ClaimedSquares() {
		stat, ok := byKey[square.ClaimedBy]
		if !ok {
			stat = &UserStat{Key: square.ClaimedBy, DisplayName: square.Label()}
			byKey[square.ClaimedBy] = stat
			order = append(order, square.ClaimedBy)
		}
		stat.Total++
		if square.Paid {
			stat.Paid++
		} else {
			stat.Unpaid++
		}
	}

	out := make([]UserStat, 0, len(order))
	for _, key := range order {
		stat := byKey[key]
		stat.AmountOwed = stat.Unpaid * b.PricePerSquare
		out = append(out, *stat)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// MySquares annotates the viewer's squares with digit labels, badges, and
// whether each is the current winning cell, sorted current-winner first and
// then by badge count descending. The residual order within ties is the grid
// scan order and is not part of the contract.
func MySquares(b board.BoardState, info *game.Info, key string) []RankedSquare {
	squares := SquaresOf(b, key)
	if len(squares) == 0 {
		return nil
	}

	badges := Badges(b, info)
	current, hasCurrent := CurrentWinner(b, info)

	out := make([]RankedSquare, 0, len(squares))
	for _, square := range squares {
		pos := Position{Row: square.Row, Col: square.Col}
		ranked := RankedSquare{
			Square:    square,
			HomeDigit: "?",
			AwayDigit: "?",
			Badges:    badges[pos],
		}
		if b.NumbersLocked {
			ranked.HomeDigit = strconv.Itoa(b.ColNumbers[square.Col])
			ranked.AwayDigit = strconv.Itoa(b.RowNumbers[square.Row])
		}
		if hasCurrent && pos == current {
			ranked.IsCurrentWinner = true
		}
		out = append(out, ranked)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsCurrentWinner != out[j].IsCurrentWinner {
			return out[i].IsCurrentWinner
		}
		return len(out[i].Badges) > len(out[j].Badges)
	})
	return out
}

type scenarioDelta struct {
	label string
	delta int
}

// Common scoring plays for the "winner if" projection.
var scenarioDeltas = []scenarioDelta{
	{"TD (+7)", 7},
	{"TD + 2pt (+8)", 8},
	{"TD, missed XP (+6)", 6},
	{"FG (+3)", 3},
	{"Safety (+2)", 2},
}

// Scenarios projects the winning cell for each common scoring play by either
// side. Purely projective: recomputed fresh every poll, never stored.
func Scenarios(b board.BoardState, info *game.Info, viewerKey string) []Scenario {
	if info == nil || !b.NumbersLocked {
		return nil
	}

	out := make([]Scenario, 0, 2*len(scenarioDeltas))
	for _, d := range scenarioDeltas {
		out = append(out, buildScenario(b, *info,
			fmt.Sprintf("%s %s", info.Home.Abbreviation, d.label),
			info.Home.Score+d.delta, info.Away.Score, viewerKey))
	}
	for _, d := range scenarioDeltas {
		out = append(out, buildScenario(b, *info,
			fmt.Sprintf("%s %s", info.Away.Abbreviation, d.label),
			info.Home.Score, info.Away.Score+d.delta, viewerKey))
	}
	return out
}

func buildScenario(b board.BoardState, info game.Info, label string, homeScore, awayScore int, viewerKey string) Scenario {
	scenario := Scenario{
		Label:     label,
		HomeScore: homeScore,
		AwayScore: awayScore,
		HomeDigit: homeScore % 10,
		AwayDigit: awayScore % 10,
	}

	pos, ok := WinningPosition(b, homeScore, awayScore)
	if !ok {
		return scenario
	}

	square := b.Squares[pos.Row][pos.Col]
	if !square.Claimed() {
		return scenario
	}

	scenario.Claimed = true
	scenario.DisplayName = square.Label()
	scenario.IsMine = viewerKey != "" && square.ClaimedBy == viewerKey
	return scenario
}
