package simulator

import "github.com/okian/libero/internal/domain/model"

// Warning kinds recorded in GameStats.Warnings.
const (
	WarnInvalidLineupEntry = "invalid_lineup_entry"
	WarnDuplicatePlayer    = "duplicate_player"
	WarnUnknownTeam        = "unknown_team"
	WarnUnknownScorer      = "unknown_scorer"
	WarnUnparseableScore   = "unparseable_score"
	WarnEventPanic         = "event_panic"
)

// TeamInfo carries the per-team counters of one match.
type TeamInfo struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Score                 int    `json:"score"`
	Timeouts              int    `json:"timeouts"`
	Subs                  int    `json:"subs"`
	ImpliedOpponentErrors int    `json:"impliedOpponentErrors"`
	ImpliedErrorsMade     int    `json:"impliedErrorsMade"`
}

// PlayerStats carries the per-player counters of one match.
type PlayerStats struct {
	Name            string         `json:"name"`
	Shirt           string         `json:"shirt"`
	Team            model.TeamSide `json:"team"`
	Points          int            `json:"points"`
	Serves          int            `json:"serves"`
	IsCaptain       bool           `json:"isCaptain"`
	SetsPlayedFully int            `json:"setsPlayedFully"`
}

// SetDuration spans the first and last timed event of a set.
type SetDuration struct {
	Set      int    `json:"set"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

// Warning is a non-fatal finding raised while simulating.
type Warning struct {
	Kind    string `json:"kind"`
	EventID string `json:"eventId,omitempty"`
	Message string `json:"message"`
}

// GameStats is the result of simulating one match.
type GameStats struct {
	MatchID         string                  `json:"matchId"`
	Date            string                  `json:"date"`
	TeamA           TeamInfo                `json:"teamA"`
	TeamB           TeamInfo                `json:"teamB"`
	Players         map[string]*PlayerStats `json:"players"`
	SetsInMatch     int                     `json:"setsInMatch"`
	SetDurations    []SetDuration           `json:"setDurations"`
	EventsProcessed int                     `json:"eventsProcessed"`
	Warnings        []Warning               `json:"warnings"`
	Incomplete      bool                    `json:"incomplete"`
}

// Team returns the counters of one side.
func (g *GameStats) Team(side model.TeamSide) *TeamInfo {
	switch side {
	case model.SideA:
		return &g.TeamA
	case model.SideB:
		return &g.TeamB
	case model.SideNone:
		return nil
	default:
		return nil
	}
}
