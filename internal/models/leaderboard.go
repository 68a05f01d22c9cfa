package models

// LeaderboardEntry is one ranked student on the placement leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Batch  string `json:"batch"`
	Score  int    `json:"score"`
	Tests  int    `json:"tests"`
	Streak int    `json:"streak"`
	Trend  string `json:"trend"`
	Avatar string `json:"avatar"`
}
