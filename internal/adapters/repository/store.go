// Package repository holds the streak leaderboard and the season stores.
package repository

import (
	"context"
	"slices"
	"time"

	"github.com/okian/libero/internal/domain/aggregate"
	"github.com/okian/libero/internal/domain/types"
)

// Leaderboard keeps the best serving streak of every player.
type Leaderboard interface {
	// Offer records e when it is longer than the player's current best.
	// Returns true if the leaderboard changed.
	Offer(ctx context.Context, e types.Entry) (bool, error)

	// Rank returns the current rank and best streak of a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (types.Entry, error)

	// TopN returns the top-N entries, longest first.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of players tracked.
	Count(ctx context.Context) int
}

// Session is one season being aggregated for a team.
type Session struct {
	ID        string            `json:"sessionId"`
	TeamID    string            `json:"teamId"`
	CreatedAt time.Time         `json:"createdAt"`
	MatchIDs  []string          `json:"matchIds"`
	Season    *aggregate.Season `json:"season"`
}

// HasMatch reports whether matchID was already aggregated into the session.
func (s Session) HasMatch(matchID string) bool {
	return slices.Contains(s.MatchIDs, matchID)
}

// SeasonStore persists season sessions. Implementations return copies, so
// callers may mutate what they get without affecting the store.
type SeasonStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
	Close() error
}

func cloneSession(s Session) Session {
	out := s
	out.MatchIDs = slices.Clone(s.MatchIDs)
	if s.Season != nil {
		season := *s.Season
		season.Players = make(map[string]*aggregate.SeasonPlayer, len(s.Season.Players))
		for id, p := range s.Season.Players {
			cp := *p
			season.Players[id] = &cp
		}
		out.Season = &season
	}
	return out
}
