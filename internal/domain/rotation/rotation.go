// Package rotation computes the point differential of each serving rotation,
// keyed by the player standing in position 1 when the rally was decided.
package rotation

import (
	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/scoring"
	"github.com/okian/libero/internal/domain/timeline"
)

// Record counts rallies won and lost while a player held position 1.
type Record struct {
	PointsFor     int `json:"pointsFor"`
	PointsAgainst int `json:"pointsAgainst"`
}

// Stats maps server player id to its record, per team.
type Stats struct {
	TeamA map[string]*Record `json:"teamA"`
	TeamB map[string]*Record `json:"teamB"`
}

// Option applies a configuration option to Calculate.
type Option func(*calculator)

// WithSubstitutionPolicy selects how substitutions move players on court.
func WithSubstitutionPolicy(p court.SubstitutionPolicy) Option {
	return func(c *calculator) {
		c.policy = p
	}
}

type calculator struct {
	match   *model.Match
	policy  court.SubstitutionPolicy
	tracker *court.Tracker
	board   scoring.Board
	set     int
	serving model.TeamSide
	stats   Stats
}

// Calculate replays events and credits the position-1 player of each team
// before any rotation the rally causes. Players never in position 1 when a
// point is decided do not appear.
func Calculate(events []model.GameEvent, m *model.Match, opts ...Option) Stats {
	c := &calculator{
		match: m,
		stats: Stats{TeamA: map[string]*Record{}, TeamB: map[string]*Record{}},
	}
	if m == nil || m.Lineups == nil {
		return c.stats
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tracker = court.NewTracker(m, c.policy)

	for _, e := range timeline.Build(events, m.Substitutions) {
		c.step(e)
	}
	return c.stats
}

func (c *calculator) step(e timeline.Entry) {
	if e.Sub != nil {
		c.tracker.Substitute(*e.Sub)
	}
	ev := e.Event
	if ev.Set > 0 && ev.Set != c.set && ev.Code != model.CodeSegmentEnd {
		c.startSet(ev.Set)
	}

	switch ev.Code {
	case model.CodeSetStart:
		c.startSet(max(ev.Set, c.set))
	case model.CodeServingTeam:
		if side := c.match.SideOf(ev.TeamID); side != model.SideNone {
			c.serving = side
		}
	case model.CodePoint:
		c.point(ev)
	case model.CodeSegmentEnd, model.CodeMatchEnd:
		c.serving = model.SideNone
	case model.CodeTimeout, model.CodeSubstitution, model.CodeUnknown:
	}
}

func (c *calculator) startSet(set int) {
	c.set = set
	c.board.Reset()
	c.tracker.ResetForSet(set)
	c.serving = model.SideNone
}

func (c *calculator) point(ev model.GameEvent) {
	winner := c.board.RecordOr(ev.Description, c.match.SideOf(ev.TeamID))
	if winner == model.SideNone {
		return
	}
	c.credit(model.SideA, c.stats.TeamA, winner)
	c.credit(model.SideB, c.stats.TeamB, winner)

	switch c.serving {
	case winner:
	case model.SideNone:
		c.serving = winner
	default:
		c.tracker.Rotate(winner)
		c.serving = winner
	}
}

func (c *calculator) credit(side model.TeamSide, into map[string]*Record, winner model.TeamSide) {
	server := c.tracker.Server(side)
	if server == "" {
		return
	}
	r, ok := into[server]
	if !ok {
		r = &Record{}
		into[server] = r
	}
	if winner == side {
		r.PointsFor++
	} else {
		r.PointsAgainst++
	}
}
