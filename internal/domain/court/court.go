// Package court tracks which player occupies each of the six court positions.
package court

import (
	"fmt"
	"strings"

	"github.com/okian/libero/internal/domain/model"
)

// Positions is the number of court slots per team.
const Positions = 6

// SubstitutionPolicy decides whether substitutions move players on court.
type SubstitutionPolicy int

const (
	// PolicyInherit seats the incoming player in the outgoing player's slot.
	PolicyInherit SubstitutionPolicy = iota
	// PolicyKeepSlot leaves the court untouched on substitution.
	PolicyKeepSlot
)

// ParsePolicy maps "inherit" and "keep_slot" onto a policy.
func ParsePolicy(s string) (SubstitutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inherit":
		return PolicyInherit, nil
	case "keep_slot", "keepslot":
		return PolicyKeepSlot, nil
	default:
		return PolicyInherit, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p SubstitutionPolicy) String() string {
	if p == PolicyKeepSlot {
		return "keep_slot"
	}
	return "inherit"
}

// Slots holds player ids by position; index 0 is position 1. Empty string
// marks an empty slot.
type Slots [Positions]string

// State is a value snapshot of both courts.
type State struct {
	A Slots `json:"a"`
	B Slots `json:"b"`
}

// Team returns the slots of one side.
func (s State) Team(side model.TeamSide) Slots {
	if side == model.SideB {
		return s.B
	}
	return s.A
}

// Tracker owns the court state of one simulation pass.
type Tracker struct {
	match  *model.Match
	policy SubstitutionPolicy
	state  State
}

// NewTracker creates an empty tracker for m.
func NewTracker(m *model.Match, policy SubstitutionPolicy) *Tracker {
	return &Tracker{match: m, policy: policy}
}

// ResetForSet clears both courts and seats every lineup entry that starts set
// in a valid position. A slot already taken, or a player already seated,
// keeps the first assignment.
func (t *Tracker) ResetForSet(set int) {
	t.state = State{}
	for _, l := range t.match.Lineups {
		pos := l.StartingPosition(set)
		if pos == 0 || l.PlayerID == "" {
			continue
		}
		slots := t.slots(t.match.SideOf(l.TeamID))
		if slots == nil || slots[pos-1] != "" || indexOf(slots, l.PlayerID) >= 0 {
			continue
		}
		slots[pos-1] = l.PlayerID
	}
}

// Rotate moves every player of side one position back: 1<-2, 6<-1, 5<-6,
// 4<-5, 3<-4, 2<-3.
func (t *Tracker) Rotate(side model.TeamSide) {
	slots := t.slots(side)
	if slots == nil {
		return
	}
	old := *slots
	for i := range slots {
		slots[i] = old[(i+1)%Positions]
	}
}

// Replace seats in wherever out is seated. It reports whether a slot changed;
// nothing happens when in is already on court.
func (t *Tracker) Replace(side model.TeamSide, out, in string) bool {
	slots := t.slots(side)
	if slots == nil || out == "" || in == "" || out == in || indexOf(slots, in) >= 0 {
		return false
	}
	changed := false
	for i, id := range slots {
		if id == out {
			slots[i] = in
			changed = true
		}
	}
	return changed
}

// Substitute applies sub according to the tracker's policy.
func (t *Tracker) Substitute(sub model.SubstitutionEvent) bool {
	if t.policy == PolicyKeepSlot {
		return false
	}
	return t.Replace(t.match.SideOf(sub.TeamID), sub.PlayerOut, sub.PlayerIn)
}

// Server returns the occupant of position 1, or "" when the slot is empty.
func (t *Tracker) Server(side model.TeamSide) string {
	slots := t.slots(side)
	if slots == nil {
		return ""
	}
	return slots[0]
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	return t.state
}

func (t *Tracker) slots(side model.TeamSide) *Slots {
	switch side {
	case model.SideA:
		return &t.state.A
	case model.SideB:
		return &t.state.B
	case model.SideNone:
		return nil
	default:
		return nil
	}
}

func indexOf(slots *Slots, id string) int {
	for i, s := range slots {
		if s == id {
			return i
		}
	}
	return -1
}
