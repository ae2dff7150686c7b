// Package participation records which sets each player started, entered and
// left, and derives "sets played fully" from it.
package participation

import "github.com/okian/libero/internal/domain/model"

type record struct {
	started   map[int]struct{}
	subbedIn  map[int]struct{}
	subbedOut map[int]struct{}
}

// Ledger is built once per match and read-only afterwards.
type Ledger struct {
	players map[string]*record
	maxSet  int
}

// New builds a ledger from lineup entries and the substitution log. Only
// players present in the lineup are tracked.
func New(lineups []model.LineupEntry, subs []model.SubstitutionEvent) *Ledger {
	l := &Ledger{players: make(map[string]*record, len(lineups))}
	for _, e := range lineups {
		if e.PlayerID == "" {
			continue
		}
		r := l.record(e.PlayerID)
		for set := range e.StartingPositions {
			if e.StartingPosition(set) == 0 {
				continue
			}
			r.started[set] = struct{}{}
			if set > l.maxSet {
				l.maxSet = set
			}
		}
	}
	for _, s := range subs {
		if s.Set <= 0 {
			continue
		}
		if r, ok := l.players[s.PlayerIn]; ok && s.PlayerIn != "" {
			r.subbedIn[s.Set] = struct{}{}
		}
		if r, ok := l.players[s.PlayerOut]; ok && s.PlayerOut != "" {
			r.subbedOut[s.Set] = struct{}{}
		}
	}
	return l
}

func (l *Ledger) record(id string) *record {
	r, ok := l.players[id]
	if !ok {
		r = &record{
			started:   make(map[int]struct{}),
			subbedIn:  make(map[int]struct{}),
			subbedOut: make(map[int]struct{}),
		}
		l.players[id] = r
	}
	return r
}

// MaxStartedSet is the highest set any lineup entry starts.
func (l *Ledger) MaxStartedSet() int { return l.maxSet }

// Started reports whether player started set.
func (l *Ledger) Started(player string, set int) bool {
	r, ok := l.players[player]
	if !ok {
		return false
	}
	_, in := r.started[set]
	return in
}

// SubbedIn reports whether player entered set as a substitute.
func (l *Ledger) SubbedIn(player string, set int) bool {
	r, ok := l.players[player]
	if !ok {
		return false
	}
	_, in := r.subbedIn[set]
	return in
}

// SubbedOut reports whether player left set at least once.
func (l *Ledger) SubbedOut(player string, set int) bool {
	r, ok := l.players[player]
	if !ok {
		return false
	}
	_, in := r.subbedOut[set]
	return in
}

// SetsPlayedFully counts the sets up to maxSet that player started and never
// left. Re-entering a set after leaving it does not restore the credit.
func (l *Ledger) SetsPlayedFully(player string, maxSet int) int {
	r, ok := l.players[player]
	if !ok {
		return 0
	}
	n := 0
	for set := range r.started {
		if set > maxSet {
			continue
		}
		if _, out := r.subbedOut[set]; !out {
			n++
		}
	}
	return n
}
