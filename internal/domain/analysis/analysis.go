// Package analysis runs every per-match pass over one match.
package analysis

import (
	"context"

	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/rotation"
	"github.com/okian/libero/internal/domain/simulator"
	"github.com/okian/libero/internal/domain/streaks"
	"github.com/okian/libero/pkg/logger"
)

// Result bundles the outputs of one match. StartingCourts is the lineup as
// set -> team id -> position, for clients replaying the match.
type Result struct {
	Stats          *simulator.GameStats                       `json:"stats"`
	Streaks        []streaks.Streak                           `json:"streaks"`
	Rotation       rotation.Stats                             `json:"rotation"`
	StartingCourts map[int]map[string]map[int]model.PlayerRef `json:"startingCourts"`
}

// Analyzer runs the simulator, streak and rotation passes with one
// substitution policy.
type Analyzer struct {
	policy    court.SubstitutionPolicy
	log       logger.Logger
	sentinels []string
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithSubstitutionPolicy selects how substitutions move players on court.
func WithSubstitutionPolicy(p court.SubstitutionPolicy) Option {
	return func(a *Analyzer) {
		a.policy = p
	}
}

// WithLogger sets the logger passed to the simulator.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithScorerSentinel overrides the scorer ids meaning "no scorer".
func WithScorerSentinel(ids ...string) Option {
	return func(a *Analyzer) {
		a.sentinels = ids
	}
}

// New returns an Analyzer using the inherit policy by default.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{policy: court.PolicyInherit}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze simulates m. Streaks are sorted longest first. Errors are those of
// simulator.CalculateGameStats.
func (a *Analyzer) Analyze(ctx context.Context, m *model.Match) (Result, error) {
	simOpts := []simulator.Option{simulator.WithSubstitutionPolicy(a.policy)}
	if a.log != nil {
		simOpts = append(simOpts, simulator.WithLogger(a.log))
	}
	if a.sentinels != nil {
		simOpts = append(simOpts, simulator.WithScorerSentinel(a.sentinels...))
	}
	stats, err := simulator.CalculateGameStats(ctx, m, simOpts...)
	if err != nil {
		return Result{}, err
	}

	found := streaks.Extract(m.Events, m, streaks.WithSubstitutionPolicy(a.policy))
	streaks.Sort(found)
	return Result{
		Stats:          stats,
		Streaks:        found,
		Rotation:       rotation.Calculate(m.Events, m, rotation.WithSubstitutionPolicy(a.policy)),
		StartingCourts: model.StartingPositionsPerSet(m.Lineups),
	}, nil
}
