// Package streaks extracts runs of consecutive points won on one player's serve.
package streaks

import (
	"sort"

	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/scoring"
	"github.com/okian/libero/internal/domain/timeline"
)

// MinLength is the shortest streak reported.
const MinLength = 2

// Streak is a run of points won while PlayerID was serving.
type Streak struct {
	PlayerID     string         `json:"playerId"`
	Name         string         `json:"name"`
	Shirt        string         `json:"shirt"`
	Team         model.TeamSide `json:"team"`
	Set          int            `json:"set"`
	Length       int            `json:"length"`
	CourtAtStart court.State    `json:"courtAtStart"`
}

// Option applies a configuration option to Extract.
type Option func(*extractor)

// WithSubstitutionPolicy selects how substitutions move players on court.
func WithSubstitutionPolicy(p court.SubstitutionPolicy) Option {
	return func(x *extractor) {
		x.policy = p
	}
}

type extractor struct {
	match   *model.Match
	policy  court.SubstitutionPolicy
	tracker *court.Tracker
	board   scoring.Board
	players map[string]model.LineupEntry

	set      int
	serving  model.TeamSide
	server   string
	length   int
	snapshot court.State
	out      []Streak
}

// Extract replays events and returns every serving streak of at least
// MinLength in the order they ended. Nil match or lineups yield an empty slice.
func Extract(events []model.GameEvent, m *model.Match, opts ...Option) []Streak {
	if m == nil || m.Lineups == nil {
		return []Streak{}
	}
	x := &extractor{match: m, players: make(map[string]model.LineupEntry, len(m.Lineups)), out: []Streak{}}
	for _, opt := range opts {
		opt(x)
	}
	x.tracker = court.NewTracker(m, x.policy)
	for _, l := range m.Lineups {
		if _, ok := x.players[l.PlayerID]; !ok {
			x.players[l.PlayerID] = l
		}
	}

	for _, e := range timeline.Build(events, m.Substitutions) {
		x.step(e)
	}
	x.flush()
	return x.out
}

func (x *extractor) step(e timeline.Entry) {
	if e.Sub != nil {
		x.tracker.Substitute(*e.Sub)
	}
	ev := e.Event
	if ev.Set > 0 && ev.Set != x.set && ev.Code != model.CodeSegmentEnd {
		x.startSet(ev.Set)
	}

	switch ev.Code {
	case model.CodeSetStart:
		x.startSet(max(ev.Set, x.set))
	case model.CodeServingTeam:
		side := x.match.SideOf(ev.TeamID)
		if side == model.SideNone {
			return
		}
		x.flush()
		x.serving = side
		x.server = x.tracker.Server(side)
		x.length = 0
		x.snapshot = x.tracker.Snapshot()
	case model.CodePoint:
		x.point(ev)
	case model.CodeSegmentEnd, model.CodeMatchEnd:
		x.flush()
		x.serving = model.SideNone
	case model.CodeTimeout, model.CodeSubstitution, model.CodeUnknown:
	}
}

func (x *extractor) startSet(set int) {
	x.flush()
	x.set = set
	x.board.Reset()
	x.tracker.ResetForSet(set)
	x.serving = model.SideNone
}

func (x *extractor) point(ev model.GameEvent) {
	winner := x.board.RecordOr(ev.Description, x.match.SideOf(ev.TeamID))
	if winner == model.SideNone {
		return
	}
	switch x.serving {
	case winner:
		if cur := x.tracker.Server(winner); cur == x.server {
			if x.server != "" {
				x.length++
			}
			return
		}
		// Position 1 changed hands by substitution: a new run begins.
		x.flush()
	case model.SideNone:
	default:
		x.flush()
		x.tracker.Rotate(winner)
	}
	x.serving = winner
	x.server = x.tracker.Server(winner)
	x.snapshot = x.tracker.Snapshot()
	x.length = 0
	if x.server != "" {
		x.length = 1
	}
}

// flush emits the open streak when it is long enough and closes it.
func (x *extractor) flush() {
	if x.server != "" && x.length >= MinLength {
		meta := x.players[x.server]
		set := x.set
		if set <= 0 {
			set = 1
		}
		x.out = append(x.out, Streak{
			PlayerID:     x.server,
			Name:         meta.Name,
			Shirt:        meta.Shirt,
			Team:         x.match.SideOf(meta.TeamID),
			Set:          set,
			Length:       x.length,
			CourtAtStart: x.snapshot,
		})
	}
	x.server = ""
	x.length = 0
}

// Sort orders streaks longest first; ties put team A before team B.
func Sort(s []Streak) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Length != s[j].Length {
			return s[i].Length > s[j].Length
		}
		return sideRank(s[i].Team) < sideRank(s[j].Team)
	})
}

func sideRank(side model.TeamSide) int {
	switch side {
	case model.SideA:
		return 0
	case model.SideB:
		return 1
	case model.SideNone:
		return 2
	default:
		return 2
	}
}
