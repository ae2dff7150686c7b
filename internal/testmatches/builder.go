// Package testmatches builds upstream-shaped matches for tests, demos and
// load generation.
package testmatches

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/libero/internal/domain/model"
)

const (
	defaultStart = 10 * 3600
	defaultTick  = 10
)

// Builder assembles a match event by event. Every event advances the wall
// clock by ten seconds unless At is used.
type Builder struct {
	match model.Match
	clock int
	seq   int
}

// NewBuilder starts a match between teams "A" and "B".
func NewBuilder(matchID string) *Builder {
	return &Builder{
		match: model.Match{
			ID:      matchID,
			Date:    "2024-01-15",
			TeamA:   model.Team{ID: "A", Name: "Team A"},
			TeamB:   model.Team{ID: "B", Name: "Team B"},
			Lineups: []model.LineupEntry{},
			Events:  []model.GameEvent{},
		},
		clock: defaultStart,
	}
}

// Teams overrides both team ids and names.
func (b *Builder) Teams(aID, aName, bID, bName string) *Builder {
	b.match.TeamA.ID, b.match.TeamA.Name = aID, aName
	b.match.TeamB.ID, b.match.TeamB.Name = bID, bName
	return b
}

// Final records the final set score.
func (b *Builder) Final(a, bScore int) *Builder {
	b.match.TeamA.FinalScore, b.match.TeamB.FinalScore = a, bScore
	return b
}

// Player adds a lineup entry. positions maps set to starting position.
func (b *Builder) Player(id, teamID, name, shirt string, positions map[int]int) *Builder {
	b.match.Lineups = append(b.match.Lineups, model.LineupEntry{
		PlayerID:          id,
		TeamID:            teamID,
		Name:              name,
		Shirt:             shirt,
		StartingPositions: positions,
	})
	return b
}

// Captain marks an already added player as captain.
func (b *Builder) Captain(id string) *Builder {
	for i := range b.match.Lineups {
		if b.match.Lineups[i].PlayerID == id {
			b.match.Lineups[i].Captain = true
		}
	}
	return b
}

// Roster adds six players <teamID>1..<teamID>6 starting at positions 1..6 in
// every listed set.
func (b *Builder) Roster(teamID string, sets ...int) *Builder {
	for pos := 1; pos <= 6; pos++ {
		positions := make(map[int]int, len(sets))
		for _, s := range sets {
			positions[s] = pos
		}
		id := teamID + strconv.Itoa(pos)
		b.Player(id, teamID, "Player "+id, strconv.Itoa(pos), positions)
	}
	return b
}

// At sets the wall clock of the next event, "HH:MM:SS".
func (b *Builder) At(wall string) *Builder {
	var h, m, s int
	if _, err := fmt.Sscanf(wall, "%d:%d:%d", &h, &m, &s); err == nil {
		b.clock = h*3600 + m*60 + s
	}
	return b
}

// Event appends a raw event; empty ids and wall times are filled in.
func (b *Builder) Event(e model.GameEvent) *Builder {
	b.seq++
	if e.ID == "" {
		e.ID = "e" + strconv.Itoa(b.seq)
	}
	if e.WallTime == "" {
		e.WallTime = wall(b.clock)
		b.clock += defaultTick
	}
	if e.RawCode == "" {
		e.RawCode = e.Code.String()
	}
	b.match.Events = append(b.match.Events, e)
	return b
}

func (b *Builder) SetStart(set int) *Builder {
	return b.Event(model.GameEvent{Code: model.CodeSetStart, Set: set})
}

func (b *Builder) Serve(set int, teamID string) *Builder {
	return b.Event(model.GameEvent{Code: model.CodeServingTeam, Set: set, TeamID: teamID})
}

// Point records a rally won by teamID; score is the set score after it,
// e.g. "3-1". An empty scorer means no scorer was recorded.
func (b *Builder) Point(set int, teamID, scorer, score string) *Builder {
	return b.Event(model.GameEvent{Code: model.CodePoint, Set: set, TeamID: teamID, PlayerID: scorer, Description: score})
}

func (b *Builder) Timeout(set int, teamID string) *Builder {
	return b.Event(model.GameEvent{Code: model.CodeTimeout, Set: set, TeamID: teamID})
}

// Sub records a substitution in the general event log.
func (b *Builder) Sub(set int, teamID, in, out string) *Builder {
	return b.Event(model.GameEvent{Code: model.CodeSubstitution, Set: set, TeamID: teamID, PlayerID: in, Player2ID: out})
}

// LoggedSub records a substitution in the dedicated substitution log.
func (b *Builder) LoggedSub(set int, teamID, in, out string) *Builder {
	b.match.Substitutions = append(b.match.Substitutions, model.SubstitutionEvent{
		Set: set, TeamID: teamID, PlayerIn: in, PlayerOut: out, WallTime: wall(b.clock),
	})
	b.clock += defaultTick
	return b
}

func (b *Builder) SegmentEnd(set int) *Builder {
	return b.Event(model.GameEvent{Code: model.CodeSegmentEnd, Set: set})
}

func (b *Builder) MatchEnd(set int) *Builder {
	return b.Event(model.GameEvent{Code: model.CodeMatchEnd, Set: set})
}

// Build returns a copy of the match built so far.
func (b *Builder) Build() *model.Match {
	m := b.match
	m.Lineups = append([]model.LineupEntry(nil), b.match.Lineups...)
	m.Events = append([]model.GameEvent(nil), b.match.Events...)
	if b.match.Substitutions != nil {
		m.Substitutions = append([]model.SubstitutionEvent(nil), b.match.Substitutions...)
	}
	return &m
}

// JSON renders the match in the upstream {"match": {...}} shape.
func (b *Builder) JSON() []byte {
	return Encode(b.Build())
}

// Encode renders m in the upstream {"match": {...}} shape.
func Encode(m *model.Match) []byte {
	lineups := make([]map[string]any, 0, len(m.Lineups))
	for _, l := range m.Lineups {
		pos := make(map[string]int, len(l.StartingPositions))
		for set, p := range l.StartingPositions {
			pos[strconv.Itoa(set)] = p
		}
		entry := map[string]any{
			"player_id":        l.PlayerID,
			"team_id":          l.TeamID,
			"player_name":      l.Name,
			"shirt_number":     l.Shirt,
			"playing_position": pos,
		}
		if l.Captain {
			entry["captain"] = "C"
		}
		lineups = append(lineups, entry)
	}
	events := make([]map[string]any, 0, len(m.Events))
	for _, e := range m.Events {
		events = append(events, map[string]any{
			"event_id":    e.ID,
			"code":        e.RawCode,
			"period":      strconv.Itoa(e.Set),
			"team_id":     e.TeamID,
			"wall_time":   e.WallTime,
			"description": e.Description,
			"player_id":   e.PlayerID,
			"player_2_id": e.Player2ID,
		})
	}
	subs := make([]map[string]any, 0, len(m.Substitutions))
	for _, s := range m.Substitutions {
		subs = append(subs, map[string]any{
			"code":        model.CodeSubstitution.String(),
			"period":      s.Set,
			"team_id":     s.TeamID,
			"wall_time":   s.WallTime,
			"player_id":   s.PlayerIn,
			"player_2_id": s.PlayerOut,
		})
	}
	body := map[string]any{
		"match": map[string]any{
			"match_id":            m.ID,
			"date":                m.Date,
			"team_A_id":           m.TeamA.ID,
			"team_A_name":         m.TeamA.Name,
			"fs_A":                m.TeamA.FinalScore,
			"team_B_id":           m.TeamB.ID,
			"team_B_name":         m.TeamB.Name,
			"fs_B":                m.TeamB.FinalScore,
			"lineups":             lineups,
			"events":              events,
			"substitution_events": subs,
		},
	}
	out, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return out
}

func wall(sec int) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600%24, sec%3600/60, sec%60)
}
