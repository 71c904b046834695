package game

// Status is the feed's game lifecycle state.
type Status string

const (
	StatusPre  Status = "pre"
	StatusIn   Status = "in"
	StatusPost Status = "post"
)

// Team is one side of a game as reported by the score feed. LineScores holds
// per-period points in order, index 0 = period 1.
type Team struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Score        int    `json:"score"`
	LineScores   []int  `json:"lineScores"`
}

// Info is one poll snapshot of a game. It is never persisted; callers
// recompute everything derived from it on every poll tick.
type Info struct {
	ID        string `json:"id"`
	ShortName string `json:"shortName"`
	Home      Team   `json:"home"`
	Away      Team   `json:"away"`
	Period    int    `json:"period"`
	Clock     string `json:"clock"`
	Status    Status `json:"status"`
}

func (i Info) IsOver() bool {
	return i.Status == StatusPost
}

func (i Info) HasStarted() bool {
	return i.Status != StatusPre
}

// CumulativeScore is the running total for both sides after some period.
type CumulativeScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// CumulativeScores returns running totals over the common prefix of both
// teams' line scores: index 0 is the score after period 1, index 1 after
// periods 1+2, and so on. Periods reported for only one side are dropped.
func CumulativeScores(info Info) []CumulativeScore {
	n := len(info.Home.LineScores)
	if len(info.Away.LineScores) < n {
		n = len(info.Away.LineScores)
	}

	out := make([]CumulativeScore, 0, n)
	home, away := 0, 0
	for i := 0; i < n; i++ {
		home += info.Home.LineScores[i]
		away += info.Away.LineScores[i]
		out = append(out, CumulativeScore{Home: home, Away: away})
	}
	return out
}
