// Package types contains read shapes shared between the store and the API.
package types

// Entry is one row of the serving streak leaderboard.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Shirt    string `json:"shirt"`
	TeamID   string `json:"teamId"`
	MatchID  string `json:"matchId"`
	Set      int    `json:"set"`
	Length   int    `json:"length"`
}

// Before reports whether a ranks ahead of b: longer streaks first, then
// player id ascending.
func Before(a, b Entry) bool {
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	return a.PlayerID < b.PlayerID
}
