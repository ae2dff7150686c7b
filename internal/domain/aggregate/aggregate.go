// Package aggregate accumulates single-match statistics into season totals
// for one team of interest.
package aggregate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/simulator"
)

// TeamTotals are the season counters of the team of interest.
type TeamTotals struct {
	Timeouts              int `json:"timeouts"`
	Subs                  int `json:"subs"`
	ImpliedOpponentErrors int `json:"impliedOpponentErrors"`
	ImpliedErrorsMade     int `json:"impliedErrorsMade"`
	GamesProcessed        int `json:"gamesProcessed"`
}

// SeasonPlayer are the season counters of one player.
type SeasonPlayer struct {
	Name            string `json:"name"`
	Shirt           string `json:"shirt"`
	Points          int    `json:"points"`
	Serves          int    `json:"serves"`
	GamesPlayed     int    `json:"gamesPlayed"`
	SetsPlayedFully int    `json:"setsPlayedFully"`
	IsCaptain       bool   `json:"isCaptain"`
}

// Season is owned by the caller; concurrent Add calls on one Season must be
// serialized.
type Season struct {
	TeamID  string                   `json:"teamId"`
	Team    TeamTotals               `json:"team"`
	Players map[string]*SeasonPlayer `json:"players"`
}

// Outcome reports what a season session did with a submitted match.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeOtherTeam Outcome = "other_team"
	OutcomeDuplicate Outcome = "duplicate"
)

// NewSeason returns empty totals for teamID.
func NewSeason(teamID string) *Season {
	return &Season{TeamID: teamID, Players: make(map[string]*SeasonPlayer)}
}

// NormalizeID trims and NFC-normalizes a team id for comparison.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// SideOf reports which side of stats teamID played on.
func SideOf(stats *simulator.GameStats, teamID string) model.TeamSide {
	if stats == nil {
		return model.SideNone
	}
	id := NormalizeID(teamID)
	switch {
	case id == "":
		return model.SideNone
	case id == NormalizeID(stats.TeamA.ID):
		return model.SideA
	case id == NormalizeID(stats.TeamB.ID):
		return model.SideB
	default:
		return model.SideNone
	}
}

// Add folds stats into season for teamID and reports whether the match
// involved that team. A non-matching team or nil input leaves season unchanged.
func Add(season *Season, stats *simulator.GameStats, teamID string) bool {
	if season == nil {
		return false
	}
	side := SideOf(stats, teamID)
	if side == model.SideNone {
		return false
	}
	if season.Players == nil {
		season.Players = make(map[string]*SeasonPlayer)
	}

	t := stats.Team(side)
	season.Team.Timeouts += t.Timeouts
	season.Team.Subs += t.Subs
	season.Team.ImpliedOpponentErrors += t.ImpliedOpponentErrors
	season.Team.ImpliedErrorsMade += t.ImpliedErrorsMade
	season.Team.GamesProcessed++

	for id, p := range stats.Players {
		if p.Team != side {
			continue
		}
		sp, ok := season.Players[id]
		if !ok {
			sp = &SeasonPlayer{Name: p.Name, Shirt: p.Shirt}
			season.Players[id] = sp
		}
		sp.IsCaptain = sp.IsCaptain || p.IsCaptain
		sp.Points += p.Points
		sp.Serves += p.Serves
		sp.SetsPlayedFully += p.SetsPlayedFully
		sp.GamesPlayed++
	}
	return true
}
