// Package model contains the volleyball match models passed between layers.
package model

import "strings"

// TeamSide identifies one of the two teams of a match.
type TeamSide string

const (
	SideNone TeamSide = ""
	SideA    TeamSide = "A"
	SideB    TeamSide = "B"
)

// Other returns the opposing side. SideNone has no opponent.
func (s TeamSide) Other() TeamSide {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	default:
		return SideNone
	}
}

// Team is one side of a match as described by the upstream feed.
type Team struct {
	ID         string
	Name       string
	FinalScore int
}

// LineupEntry is a rostered player. StartingPositions maps set number to
// court position; only positions 1..6 are meaningful.
type LineupEntry struct {
	PlayerID          string
	TeamID            string
	Name              string
	Shirt             string
	Captain           bool
	StartingPositions map[int]int
}

// StartingPosition returns the court position the player starts set at, or
// 0 when the player does not start that set.
func (l LineupEntry) StartingPosition(set int) int {
	pos := l.StartingPositions[set]
	if pos < 1 || pos > 6 {
		return 0
	}
	return pos
}

// GameEvent is one entry of the match event log.
type GameEvent struct {
	ID          string
	Code        EventCode
	RawCode     string
	Set         int
	TeamID      string
	WallTime    string
	Description string
	PlayerID    string
	Player2ID   string
}

// SubstitutionEvent records PlayerIn replacing PlayerOut during Set.
type SubstitutionEvent struct {
	Set       int
	TeamID    string
	PlayerIn  string
	PlayerOut string
	WallTime  string
}

// Match is a fully materialized match. Nil Lineups or Events mean the field
// was absent upstream.
type Match struct {
	ID            string
	Date          string
	TeamA         Team
	TeamB         Team
	Lineups       []LineupEntry
	Events        []GameEvent
	Substitutions []SubstitutionEvent
}

// SideOf maps a team id onto the match's sides.
func (m *Match) SideOf(teamID string) TeamSide {
	id := strings.TrimSpace(teamID)
	switch {
	case id == "":
		return SideNone
	case id == strings.TrimSpace(m.TeamA.ID):
		return SideA
	case id == strings.TrimSpace(m.TeamB.ID):
		return SideB
	default:
		return SideNone
	}
}

// Team returns the team on side s.
func (m *Match) Team(s TeamSide) Team {
	if s == SideB {
		return m.TeamB
	}
	return m.TeamA
}

// SubstitutionLog returns the dedicated substitution log when present and
// non-empty, otherwise the substitution events of the general log.
func (m *Match) SubstitutionLog() []SubstitutionEvent {
	if len(m.Substitutions) > 0 {
		return m.Substitutions
	}
	var subs []SubstitutionEvent
	for _, e := range m.Events {
		if e.Code == CodeSubstitution {
			subs = append(subs, e.Substitution())
		}
	}
	return subs
}

// Substitution converts a substitution event of the general log.
func (e GameEvent) Substitution() SubstitutionEvent {
	return SubstitutionEvent{
		Set:       e.Set,
		TeamID:    e.TeamID,
		PlayerIn:  e.PlayerID,
		PlayerOut: e.Player2ID,
		WallTime:  e.WallTime,
	}
}
