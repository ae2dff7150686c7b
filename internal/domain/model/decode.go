package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// flexString accepts JSON strings and numbers; null and other kinds decode to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*f = flexString(b)
	default:
		*f = ""
	}
	return nil
}

// flexInt accepts JSON numbers and numeric strings; anything else decodes to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = flexInt(atoi(string(s)))
	return nil
}

// atoi parses the leading integer of s; fractional numbers are truncated.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return int(v)
	}
	end := 0
	if s[0] == '-' || s[0] == '+' {
		end = 1
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// flexBool accepts true/false and the upstream captain marker "C".
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("true")):
		*f = true
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexBool(strings.EqualFold(strings.TrimSpace(s), "C"))
	default:
		*f = false
	}
	return nil
}

type wireLineup struct {
	PlayerID        flexString         `json:"player_id"`
	TeamID          flexString         `json:"team_id"`
	PlayerName      flexString         `json:"player_name"`
	ShirtNumber     flexString         `json:"shirt_number"`
	Captain         flexBool           `json:"captain"`
	PlayingPosition map[string]flexInt `json:"playing_position"`
}

type wireEvent struct {
	EventID     flexString `json:"event_id"`
	Code        string     `json:"code"`
	Period      flexInt    `json:"period"`
	TeamID      flexString `json:"team_id"`
	WallTime    flexString `json:"wall_time"`
	Description flexString `json:"description"`
	PlayerID    flexString `json:"player_id"`
	Player2ID   flexString `json:"player_2_id"`
	PlayerOutID flexString `json:"player_out_id"`
}

type wireMatch struct {
	MatchID       flexString   `json:"match_id"`
	Date          flexString   `json:"date"`
	TeamAID       flexString   `json:"team_A_id"`
	TeamAName     flexString   `json:"team_A_name"`
	FinalScoreA   flexInt      `json:"fs_A"`
	TeamBID       flexString   `json:"team_B_id"`
	TeamBName     flexString   `json:"team_B_name"`
	FinalScoreB   flexInt      `json:"fs_B"`
	Lineups       []wireLineup `json:"lineups"`
	Events        []wireEvent  `json:"events"`
	Substitutions []wireEvent  `json:"substitution_events"`
}

type envelope struct {
	Match *wireMatch `json:"match"`
}

// DecodeMatch reads an upstream match payload. Both the {"match": {...}}
// envelope and a bare match object are accepted.
func DecodeMatch(r io.Reader) (*Match, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeMatch, err)
	}
	return ParseMatch(data)
}

// ParseMatch is DecodeMatch over an in-memory payload.
func ParseMatch(data []byte) (*Match, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeMatch, err)
	}
	w := env.Match
	if w == nil {
		w = &wireMatch{}
		if err := json.Unmarshal(data, w); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeMatch, err)
		}
	}
	return w.toMatch(), nil
}

func (w *wireMatch) toMatch() *Match {
	m := &Match{
		ID:    string(w.MatchID),
		Date:  string(w.Date),
		TeamA: Team{ID: string(w.TeamAID), Name: string(w.TeamAName), FinalScore: int(w.FinalScoreA)},
		TeamB: Team{ID: string(w.TeamBID), Name: string(w.TeamBName), FinalScore: int(w.FinalScoreB)},
	}
	if w.Lineups != nil {
		m.Lineups = make([]LineupEntry, 0, len(w.Lineups))
		for _, l := range w.Lineups {
			m.Lineups = append(m.Lineups, l.toEntry())
		}
	}
	if w.Events != nil {
		m.Events = make([]GameEvent, 0, len(w.Events))
		for _, e := range w.Events {
			m.Events = append(m.Events, e.toEvent())
		}
	}
	for _, s := range w.Substitutions {
		m.Substitutions = append(m.Substitutions, s.toEvent().Substitution())
	}
	return m
}

func (l wireLineup) toEntry() LineupEntry {
	e := LineupEntry{
		PlayerID: strings.TrimSpace(string(l.PlayerID)),
		TeamID:   string(l.TeamID),
		Name:     string(l.PlayerName),
		Shirt:    string(l.ShirtNumber),
		Captain:  bool(l.Captain),
	}
	if len(l.PlayingPosition) > 0 {
		e.StartingPositions = make(map[int]int, len(l.PlayingPosition))
		for k, v := range l.PlayingPosition {
			set := atoi(k)
			if set <= 0 || v < 1 || v > 6 {
				continue
			}
			e.StartingPositions[set] = int(v)
		}
	}
	return e
}

func (w wireEvent) toEvent() GameEvent {
	out := string(w.Player2ID)
	if out == "" {
		out = string(w.PlayerOutID)
	}
	return GameEvent{
		ID:          string(w.EventID),
		Code:        ParseEventCode(w.Code),
		RawCode:     w.Code,
		Set:         int(w.Period),
		TeamID:      string(w.TeamID),
		WallTime:    string(w.WallTime),
		Description: string(w.Description),
		PlayerID:    string(w.PlayerID),
		Player2ID:   out,
	}
}
