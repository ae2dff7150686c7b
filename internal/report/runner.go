// Package report builds a season report for one team from local files,
// upstream match ids or generated matches.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"sync"

	"github.com/okian/libero/internal/adapters/source"
	app "github.com/okian/libero/internal/app"
	"github.com/okian/libero/internal/domain/aggregate"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/simulator"
	"github.com/okian/libero/internal/domain/types"
	"github.com/okian/libero/internal/testmatches"
	"github.com/okian/libero/pkg/logger"
)

const defaultTop = 10

// Report is the JSON document written by Run.
type Report struct {
	TeamID      string            `json:"teamId"`
	Season      *aggregate.Season `json:"season"`
	Matches     []MatchSummary    `json:"matches"`
	Leaderboard []types.Entry     `json:"leaderboard"`
}

// MatchSummary describes what happened to one input match.
type MatchSummary struct {
	Source       string                  `json:"source"`
	MatchID      string                  `json:"matchId,omitempty"`
	Outcome      aggregate.Outcome       `json:"outcome,omitempty"`
	SetDurations []simulator.SetDuration `json:"setDurations,omitempty"`
	Warnings     int                     `json:"warnings"`
	Incomplete   bool                    `json:"incomplete"`
	Error        string                  `json:"error,omitempty"`
}

type input struct {
	source string
	match  *model.Match
	err    error
}

// Run starts a service built from svcOpts, aggregates every input and writes
// the report to out. Per-match failures are reported, not returned.
func Run(ctx context.Context, cfg *Config, out io.Writer, svcOpts ...app.Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.GetOrNop().Named("report")

	svc := app.New(svcOpts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		if err := svc.Stop(context.WithoutCancel(ctx)); err != nil {
			log.Warn(ctx, "service stop failed", logger.Error(err))
		}
	}()

	sess, err := svc.CreateSeason(ctx, cfg.TeamID)
	if err != nil {
		return fmt.Errorf("create season: %w", err)
	}

	inputs, err := collect(ctx, cfg, svc)
	if err != nil {
		return err
	}
	log.Info(ctx, "submitting matches", logger.Int("count", len(inputs)), logger.String("team", cfg.TeamID))

	summaries := submitAll(ctx, svc, sess.ID, inputs, cfg.Parallel)

	season, err := svc.Season(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("read season: %w", err)
	}
	top := cfg.Top
	if top < 1 {
		top = defaultTop
	}
	board, err := svc.TopN(ctx, top)
	if err != nil {
		return fmt.Errorf("read leaderboard: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(Report{
		TeamID:      season.TeamID,
		Season:      season.Season,
		Matches:     summaries,
		Leaderboard: board,
	})
}

func collect(ctx context.Context, cfg *Config, svc *app.Service) ([]input, error) {
	var inputs []input
	if cfg.Dir != "" {
		files, err := source.LoadDir(ctx, cfg.Dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			inputs = append(inputs, input{source: f.Path, match: f.Match, err: f.Err})
		}
	}
	for _, id := range cfg.FetchIDs {
		m, err := svc.FetchMatch(ctx, id)
		inputs = append(inputs, input{source: "upstream:" + id, match: m, err: err})
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cfg.Synthetic; i++ {
		id := "SYN-" + strconv.Itoa(i+1)
		opponent := "OPP-" + strconv.Itoa(i%3+1)
		inputs = append(inputs, input{source: "synthetic", match: testmatches.Generate(rng, id, cfg.TeamID, opponent)})
	}
	return inputs, nil
}

// submitAll submits inputs with at most parallel in flight and returns the
// summaries in input order.
func submitAll(ctx context.Context, svc *app.Service, sessionID string, inputs []input, parallel int) []MatchSummary {
	if parallel < 1 {
		parallel = 1
	}
	summaries := make([]MatchSummary, len(inputs))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for i, in := range inputs {
		summaries[i] = MatchSummary{Source: in.source}
		if in.err != nil {
			summaries[i].Error = in.err.Error()
			continue
		}
		summaries[i].MatchID = in.match.ID

		wg.Add(1)
		sem <- struct{}{}
		go func(sum *MatchSummary, m *model.Match) {
			defer wg.Done()
			defer func() { <-sem }()

			sub, err := svc.Submit(ctx, sessionID, m)
			if err != nil {
				sum.Error = err.Error()
				return
			}
			sum.Outcome = sub.Outcome
			if st := sub.Result.Stats; st != nil {
				sum.SetDurations = st.SetDurations
				sum.Warnings = len(st.Warnings)
				sum.Incomplete = st.Incomplete
			}
		}(&summaries[i], in.match)
	}
	wg.Wait()
	return summaries
}
