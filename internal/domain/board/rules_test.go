package board

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

var testNow = time.Date(2026, 2, 8, 18, 30, 0, 0, time.UTC)

func newTestBoard() BoardState {
	return New("superbowl", "Super Bowl LX", "401547417", SportNFL, 10, testNow)
}

func TestBoardState_ClaimAndUnclaim(t *testing.T) {
	b := newTestBoard()

	if err := b.Claim(2, 3, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}

	square := b.Squares[2][3]
	if square.ClaimedBy != "alice" || square.DisplayName != "Alice" {
		t.Fatalf("unexpected square after claim: %+v", square)
	}
	if square.ClaimedAt == nil || !square.ClaimedAt.Equal(testNow) {
		t.Fatalf("expected claimedAt %v, got %v", testNow, square.ClaimedAt)
	}

	if err := b.Claim(2, 3, "bob", "Bob", testNow); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}

	if err := b.Unclaim(2, 3, "bob"); !errors.Is(err, ErrNotClaimedByYou) {
		t.Fatalf("expected ErrNotClaimedByYou for wrong key, got %v", err)
	}

	if err := b.Unclaim(2, 3, "alice"); err != nil {
		t.Fatalf("unclaim: %v", err)
	}
	if b.Squares[2][3].Claimed() {
		t.Fatalf("square still claimed after unclaim: %+v", b.Squares[2][3])
	}
}

func TestBoardState_ClaimDefaultsDisplayNameToKey(t *testing.T) {
	b := newTestBoard()

	if err := b.Claim(0, 0, "alice", "", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got := b.Squares[0][0].DisplayName; got != "alice" {
		t.Fatalf("expected display name to default to key, got %q", got)
	}
}

func TestBoardState_ClaimOutOfRange(t *testing.T) {
	b := newTestBoard()

	cases := [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}}
	for _, pos := range cases {
		if err := b.Claim(pos[0], pos[1], "alice", "Alice", testNow); !errors.Is(err, ErrInvalidPosition) {
			t.Fatalf("position (%d,%d): expected ErrInvalidPosition, got %v", pos[0], pos[1], err)
		}
	}
}

func TestBoardState_SetPaidPropagatesPerClaimKey(t *testing.T) {
	b := newTestBoard()

	for _, pos := range [][2]int{{0, 0}, {4, 7}, {9, 9}} {
		if err := b.Claim(pos[0], pos[1], "alice", "Alice", testNow); err != nil {
			t.Fatalf("claim (%d,%d): %v", pos[0], pos[1], err)
		}
	}
	if err := b.Claim(1, 1, "bob", "Bob", testNow); err != nil {
		t.Fatalf("claim bob: %v", err)
	}

	paidAt := testNow.Add(time.Hour)
	if err := b.SetPaid(4, 7, true, paidAt); err != nil {
		t.Fatalf("set paid: %v", err)
	}

	for _, pos := range [][2]int{{0, 0}, {4, 7}, {9, 9}} {
		square := b.Squares[pos[0]][pos[1]]
		if !square.Paid {
			t.Fatalf("square (%d,%d) not marked paid", pos[0], pos[1])
		}
		if square.PaidAt == nil || !square.PaidAt.Equal(paidAt) {
			t.Fatalf("square (%d,%d) paidAt = %v, want %v", pos[0], pos[1], square.PaidAt, paidAt)
		}
	}
	if b.Squares[1][1].Paid {
		t.Fatal("bob's square should be untouched")
	}

	// Unpaid touches only the targeted cell.
	if err := b.SetPaid(4, 7, false, paidAt); err != nil {
		t.Fatalf("set unpaid: %v", err)
	}
	if b.Squares[4][7].Paid || b.Squares[4][7].PaidAt != nil {
		t.Fatalf("square (4,7) still paid: %+v", b.Squares[4][7])
	}
	if !b.Squares[0][0].Paid || !b.Squares[9][9].Paid {
		t.Fatal("other alice squares should stay paid")
	}
}

func TestBoardState_SetPaidOnEmptySquare(t *testing.T) {
	b := newTestBoard()

	if err := b.SetPaid(5, 5, true, testNow); !errors.Is(err, ErrNotClaimed) {
		t.Fatalf("expected ErrNotClaimed, got %v", err)
	}
}

func TestBoardState_UnclaimPaidSquareRefused(t *testing.T) {
	b := newTestBoard()

	if err := b.Claim(3, 3, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := b.SetPaid(3, 3, true, testNow); err != nil {
		t.Fatalf("set paid: %v", err)
	}

	if err := b.Unclaim(3, 3, "alice"); !errors.Is(err, ErrNotClaimedByYou) {
		t.Fatalf("expected ErrNotClaimedByYou for paid square, got %v", err)
	}
}

func TestBoardState_SetOwnerPropagates(t *testing.T) {
	b := newTestBoard()

	if err := b.Claim(0, 0, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := b.Claim(5, 5, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := b.Claim(1, 1, "bob", "Bob", testNow); err != nil {
		t.Fatalf("claim bob: %v", err)
	}

	if err := b.SetOwner(0, 0, "Alice Smith"); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if b.Squares[0][0].Owner != "Alice Smith" || b.Squares[5][5].Owner != "Alice Smith" {
		t.Fatal("owner should propagate to every square with the same claim key")
	}
	if b.Squares[1][1].Owner != "" {
		t.Fatal("bob's square should be untouched")
	}
}

func TestBoardState_SetDisplayNameSingleCell(t *testing.T) {
	b := newTestBoard()

	if err := b.Claim(0, 0, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := b.Claim(5, 5, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := b.SetDisplayName(0, 0, "Alice (gift)"); err != nil {
		t.Fatalf("set display name: %v", err)
	}
	if b.Squares[0][0].DisplayName != "Alice (gift)" {
		t.Fatalf("display name not set: %+v", b.Squares[0][0])
	}
	if b.Squares[5][5].DisplayName != "Alice" {
		t.Fatal("display name must not propagate")
	}
}

func TestBoardState_ClearResetsEverything(t *testing.T) {
	b := newTestBoard()

	if err := b.Claim(7, 2, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := b.SetPaid(7, 2, true, testNow); err != nil {
		t.Fatalf("set paid: %v", err)
	}

	if err := b.Clear(7, 2); err != nil {
		t.Fatalf("clear: %v", err)
	}

	square := b.Squares[7][2]
	if square.Claimed() || square.Paid || square.PaidAt != nil || square.Owner != "" || square.DisplayName != "" {
		t.Fatalf("square not fully reset: %+v", square)
	}
	if square.Row != 7 || square.Col != 2 {
		t.Fatalf("square coordinates lost: %+v", square)
	}
}

func TestBoardState_RandomizeIsOneShot(t *testing.T) {
	b := newTestBoard()
	rng := rand.New(rand.NewSource(42))

	if err := b.Randomize(rng); err != nil {
		t.Fatalf("randomize: %v", err)
	}
	if !b.NumbersLocked {
		t.Fatal("board should be locked after randomize")
	}

	assertPermutation(t, b.RowNumbers)
	assertPermutation(t, b.ColNumbers)

	if err := b.Randomize(rng); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked on second randomize, got %v", err)
	}
}

func TestBoardState_RandomizeKeepsClaims(t *testing.T) {
	b := newTestBoard()
	if err := b.Claim(2, 2, "alice", "Alice", testNow); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if err := b.Randomize(rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("randomize: %v", err)
	}

	if b.Squares[2][2].ClaimedBy != "alice" {
		t.Fatal("claims must survive randomize")
	}
}

func assertPermutation(t *testing.T, numbers []int) {
	t.Helper()

	if len(numbers) != GridSize {
		t.Fatalf("expected %d numbers, got %d", GridSize, len(numbers))
	}
	seen := make(map[int]bool, GridSize)
	for _, n := range numbers {
		if n < 0 || n >= GridSize || seen[n] {
			t.Fatalf("numbers are not a 0-9 permutation: %v", numbers)
		}
		seen[n] = true
	}
}

func TestValidID(t *testing.T) {
	valid := []string{"superbowl", "week-1", "Board2026", "a"}
	for _, id := range valid {
		if !ValidID(id) {
			t.Fatalf("expected %q to be valid", id)
		}
	}

	invalid := []string{"", "has space", "semi;colon", "slash/board", "dot.board"}
	for _, id := range invalid {
		if ValidID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}
