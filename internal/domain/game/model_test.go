package game

import "testing"

func TestCumulativeScores(t *testing.T) {
	info := Info{
		Home: Team{LineScores: []int{7, 3, 0, 14}},
		Away: Team{LineScores: []int{0, 10, 7, 0}},
	}

	got := CumulativeScores(info)
	want := []CumulativeScore{
		{Home: 7, Away: 0},
		{Home: 10, Away: 10},
		{Home: 10, Away: 17},
		{Home: 24, Away: 17},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCumulativeScores_UnevenPeriodsDropped(t *testing.T) {
	// Home has reported Q3, away has not. Only the common prefix counts.
	info := Info{
		Home: Team{LineScores: []int{7, 3, 6}},
		Away: Team{LineScores: []int{0, 10}},
	}

	got := CumulativeScores(info)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[1] != (CumulativeScore{Home: 10, Away: 10}) {
		t.Fatalf("entry 1 = %+v", got[1])
	}
}

func TestCumulativeScores_Empty(t *testing.T) {
	if got := CumulativeScores(Info{}); len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}

func TestInfoStatus(t *testing.T) {
	if (Info{Status: StatusPre}).HasStarted() {
		t.Fatal("pre game should not count as started")
	}
	if !(Info{Status: StatusIn}).HasStarted() {
		t.Fatal("in-progress game should count as started")
	}
	if (Info{Status: StatusIn}).IsOver() {
		t.Fatal("in-progress game is not over")
	}
	if !(Info{Status: StatusPost}).IsOver() {
		t.Fatal("post game is over")
	}
}
