package payout

import "github.com/gridironlabs/squares/internal/domain/board"

// Pot split: each of Q1-Q3 pays 20% of the pot, the final pays 40%.
const (
	QuarterShare = 0.2
	FinalShare   = 0.4
)

// UnclaimedLabel is reported as the winner name for unclaimed winning cells.
const UnclaimedLabel = "Unclaimed"

// Position addresses one grid cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Winner resolves a payout slot to a person (or the unclaimed sentinel) plus
// the score line that won it, e.g. "DEN 17, BUF 24".
type Winner struct {
	DisplayName string `json:"displayName"`
	Score       string `json:"score"`
}

// QuarterPayout is one of the four payout slots.
type QuarterPayout struct {
	Label  string  `json:"label"`
	Payout int     `json:"payout"`
	Winner *Winner `json:"winner,omitempty"`
}

// PaymentSummary aggregates one identity's squares for money tracking.
type PaymentSummary struct {
	PaidCount   int `json:"paidCount"`
	UnpaidCount int `json:"unpaidCount"`
	AmountOwed  int `json:"amountOwed"`
}

// UserStat is the admin rollup of one claim identity.
type UserStat struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Total       int    `json:"total"`
	Paid        int    `json:"paid"`
	Unpaid      int    `json:"unpaid"`
	AmountOwed  int    `json:"amountOwed"`
}

// RankedSquare is one of the viewer's squares annotated for display. Digit
// labels are "?" until numbers are locked.
type RankedSquare struct {
	Square          board.Square `json:"square"`
	HomeDigit       string       `json:"homeDigit"`
	AwayDigit       string       `json:"awayDigit"`
	Badges          []string     `json:"badges"`
	IsCurrentWinner bool         `json:"isCurrentWinner"`
}

// Scenario is one "winner if the score changes by X" projection.
type Scenario struct {
	Label       string `json:"label"`
	HomeScore   int    `json:"homeScore"`
	AwayScore   int    `json:"awayScore"`
	HomeDigit   int    `json:"homeDigit"`
	AwayDigit   int    `json:"awayDigit"`
	DisplayName string `json:"displayName,omitempty"`
	Claimed     bool   `json:"claimed"`
	IsMine      bool   `json:"isMine"`
}
