// Package simulator replays a match's event log against the court tracker
// and produces per-player and per-team statistics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/participation"
	"github.com/okian/libero/internal/domain/scoring"
	"github.com/okian/libero/internal/domain/timeline"
	"github.com/okian/libero/internal/domain/wallclock"
	"github.com/okian/libero/pkg/logger"
)

const ctxCheckEvery = 256

type setSpan struct {
	first, last int
}

type sim struct {
	ctx     context.Context
	opts    options
	log     logger.Logger
	match   *model.Match
	stats   *GameStats
	tracker *court.Tracker
	board   scoring.Board

	set         int
	serving     model.TeamSide
	lastServing model.TeamSide
	spans       map[int]*setSpan
}

// CalculateGameStats simulates m and returns its statistics. Missing events
// or lineups and lineup entries without a player id are fatal; failures of a
// single event are recorded as warnings and mark the result incomplete.
func CalculateGameStats(ctx context.Context, m *model.Match, opts ...Option) (*GameStats, error) {
	if m == nil || m.Events == nil {
		return nil, ErrMissingEvents
	}
	if m.Lineups == nil {
		return nil, fmt.Errorf("match %s: %w", m.ID, ErrMissingLineups)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	s := &sim{
		ctx:     ctx,
		opts:    o,
		log:     o.log.With(logger.String("match_id", m.ID)),
		match:   m,
		tracker: court.NewTracker(m, o.policy),
		spans:   make(map[int]*setSpan),
		stats: &GameStats{
			MatchID: m.ID,
			Date:    m.Date,
			TeamA:   TeamInfo{ID: m.TeamA.ID, Name: m.TeamA.Name, Score: m.TeamA.FinalScore},
			TeamB:   TeamInfo{ID: m.TeamB.ID, Name: m.TeamB.Name, Score: m.TeamB.FinalScore},
			Players: make(map[string]*PlayerStats, len(m.Lineups)),
		},
	}

	if err := s.loadLineups(); err != nil {
		return nil, err
	}

	subs := m.SubstitutionLog()
	ledger := participation.New(m.Lineups, subs)
	s.stats.SetsInMatch = setsInMatch(m, ledger)
	for id, p := range s.stats.Players {
		p.SetsPlayedFully = ledger.SetsPlayedFully(id, s.stats.SetsInMatch)
	}

	s.countTeamEvents(subs)

	for i, e := range timeline.Build(m.Events, m.Substitutions) {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s.trackSpan(e)
		if err := s.step(e); err != nil {
			kind := WarnEventPanic
			if errors.Is(err, ErrUnparseableScore) {
				kind = WarnUnparseableScore
			}
			s.warn(kind, e.Event.ID, err.Error())
			s.stats.Incomplete = true
		}
		s.stats.EventsProcessed++
	}

	s.stats.SetDurations = s.durations()
	if s.stats.Incomplete {
		s.log.Warn(ctx, "statistics may be incomplete", logger.Int("warnings", len(s.stats.Warnings)))
	}
	return s.stats, nil
}

func (s *sim) loadLineups() error {
	for i, l := range s.match.Lineups {
		if l.PlayerID == "" {
			return fmt.Errorf("match %s: entry %d: %w", s.match.ID, i, ErrInvalidLineup)
		}
		if l.TeamID == "" || l.Name == "" || l.Shirt == "" {
			s.warn(WarnInvalidLineupEntry, "", fmt.Sprintf("lineup entry %d for player %s is missing team, name or shirt", i, l.PlayerID))
			continue
		}
		if _, dup := s.stats.Players[l.PlayerID]; dup {
			s.warn(WarnDuplicatePlayer, "", "player "+l.PlayerID+" listed twice")
			continue
		}
		side := s.match.SideOf(l.TeamID)
		if side == model.SideNone {
			s.warn(WarnUnknownTeam, "", fmt.Sprintf("player %s belongs to unknown team %s", l.PlayerID, l.TeamID))
		}
		s.stats.Players[l.PlayerID] = &PlayerStats{
			Name:      l.Name,
			Shirt:     l.Shirt,
			Team:      side,
			IsCaptain: l.Captain,
		}
	}
	return nil
}

func setsInMatch(m *model.Match, ledger *participation.Ledger) int {
	n := max(1, ledger.MaxStartedSet())
	for _, e := range m.Events {
		n = max(n, e.Set)
	}
	return n
}

func (s *sim) countTeamEvents(subs []model.SubstitutionEvent) {
	for _, e := range s.match.Events {
		if e.Code != model.CodeTimeout {
			continue
		}
		if t := s.stats.Team(s.match.SideOf(e.TeamID)); t != nil {
			t.Timeouts++
		}
	}
	for _, sub := range subs {
		if t := s.stats.Team(s.match.SideOf(sub.TeamID)); t != nil {
			t.Subs++
		}
	}
}

// step dispatches one timeline entry. Panics are turned into errors so a
// single bad event never aborts the match.
func (s *sim) step(e timeline.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEventPanic, r)
		}
	}()

	if e.Sub != nil {
		s.tracker.Substitute(*e.Sub)
	}

	ev := e.Event
	if ev.Set > 0 && ev.Set != s.set && ev.Code != model.CodeSegmentEnd {
		s.startSet(ev.Set)
	}

	switch ev.Code {
	case model.CodeSetStart:
		s.startSet(max(ev.Set, s.set))
	case model.CodeServingTeam:
		s.announceServer(ev)
	case model.CodePoint:
		return s.point(ev)
	case model.CodeSegmentEnd, model.CodeMatchEnd:
		s.serving, s.lastServing = model.SideNone, model.SideNone
	case model.CodeTimeout, model.CodeSubstitution:
		// counted up front; substitutions already applied above
	case model.CodeUnknown:
		s.log.Debug(s.ctx, "skipping unknown event code", logger.String("code", ev.RawCode), logger.String("event_id", ev.ID))
	}
	return nil
}

func (s *sim) startSet(set int) {
	s.set = set
	s.board.Reset()
	s.tracker.ResetForSet(set)
	s.serving, s.lastServing = model.SideNone, model.SideNone
}

func (s *sim) announceServer(ev model.GameEvent) {
	side := s.match.SideOf(ev.TeamID)
	if side == model.SideNone {
		s.warn(WarnUnknownTeam, ev.ID, "serving team "+ev.TeamID+" is not part of the match")
		return
	}
	s.serving, s.lastServing = side, side
	s.creditServe(side)
}

func (s *sim) point(ev model.GameEvent) error {
	winner, err := s.board.Record(ev.Description)
	if err != nil {
		return err
	}

	if _, absent := s.opts.sentinels[ev.PlayerID]; absent {
		s.impliedError(winner)
	} else if p, ok := s.stats.Players[ev.PlayerID]; ok {
		p.Points++
	} else {
		s.warn(WarnUnknownScorer, ev.ID, "scorer "+ev.PlayerID+" is not in the lineup")
		s.impliedError(winner)
	}

	switch s.serving {
	case model.SideNone:
		s.serving = winner
	case winner:
		s.creditServe(winner)
	default:
		s.tracker.Rotate(winner)
		s.serving = winner
		s.creditServe(winner)
	}
	s.lastServing = s.serving
	return nil
}

// impliedError books a point without a known scorer as an error of the team
// that conceded it.
func (s *sim) impliedError(winner model.TeamSide) {
	s.stats.Team(winner).ImpliedOpponentErrors++
	s.stats.Team(winner.Other()).ImpliedErrorsMade++
}

func (s *sim) creditServe(side model.TeamSide) {
	if p, ok := s.stats.Players[s.tracker.Server(side)]; ok {
		p.Serves++
	}
}

func (s *sim) warn(kind, eventID, msg string) {
	s.stats.Warnings = append(s.stats.Warnings, Warning{Kind: kind, EventID: eventID, Message: msg})
	s.log.Warn(s.ctx, msg, logger.String("kind", kind), logger.String("event_id", eventID))
}

func (s *sim) trackSpan(e timeline.Entry) {
	if e.Event.Set <= 0 {
		return
	}
	if _, ok := wallclock.Parse(e.Event.WallTime); !ok {
		return
	}
	sp, ok := s.spans[e.Event.Set]
	if !ok {
		s.spans[e.Event.Set] = &setSpan{first: e.Seconds, last: e.Seconds}
		return
	}
	sp.first = min(sp.first, e.Seconds)
	sp.last = max(sp.last, e.Seconds)
}

func (s *sim) durations() []SetDuration {
	sets := make([]int, 0, len(s.spans))
	for set := range s.spans {
		sets = append(sets, set)
	}
	sort.Ints(sets)
	out := make([]SetDuration, 0, len(sets))
	for _, set := range sets {
		sp := s.spans[set]
		out = append(out, SetDuration{
			Set:      set,
			Start:    clock(sp.first),
			End:      clock(sp.last),
			Duration: wallclock.FormatMMSS(sp.last-sp.first, true),
		})
	}
	return out
}

func clock(sec int) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
}
