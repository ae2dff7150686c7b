// Package timeline orders a match's events by wall-clock time and merges in
// the dedicated substitution log.
package timeline

import (
	"sort"

	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/wallclock"
)

// Entry is one step of the simulation. Sub is set when the step moves a
// player on court.
type Entry struct {
	Event   model.GameEvent
	Sub     *model.SubstitutionEvent
	Seconds int
}

type keyed struct {
	Entry
	kind  int
	index int
}

// Build returns the events sorted by wall-clock seconds, stable. An event
// whose time is missing or invalid takes its predecessor's time so it keeps
// its place. When dedicated is non-empty its entries are merged in ahead of
// events of the same second and the substitution events of the general log
// no longer move players; otherwise those events carry the substitution.
func Build(events []model.GameEvent, dedicated []model.SubstitutionEvent) []Entry {
	useDedicated := len(dedicated) > 0
	all := make([]keyed, 0, len(events)+len(dedicated))

	prev := 0
	for i, e := range events {
		if sec, ok := wallclock.Parse(e.WallTime); ok {
			prev = sec
		}
		k := keyed{Entry: Entry{Event: e, Seconds: prev}, kind: 1, index: i}
		if e.Code == model.CodeSubstitution && !useDedicated {
			sub := e.Substitution()
			k.Sub = &sub
		}
		all = append(all, k)
	}

	prev = 0
	for i := range dedicated {
		s := dedicated[i]
		if sec, ok := wallclock.Parse(s.WallTime); ok {
			prev = sec
		}
		all = append(all, keyed{
			Entry: Entry{
				Event: model.GameEvent{
					Code:      model.CodeSubstitution,
					RawCode:   model.CodeSubstitution.String(),
					Set:       s.Set,
					TeamID:    s.TeamID,
					WallTime:  s.WallTime,
					PlayerID:  s.PlayerIn,
					Player2ID: s.PlayerOut,
				},
				Sub:     &s,
				Seconds: prev,
			},
			index: i,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Seconds != b.Seconds {
			return a.Seconds < b.Seconds
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.index < b.index
	})

	out := make([]Entry, len(all))
	for i, k := range all {
		out[i] = k.Entry
	}
	return out
}
