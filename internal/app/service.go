// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/libero/internal/adapters/mq/queue"
	"github.com/okian/libero/internal/adapters/mq/worker"
	"github.com/okian/libero/internal/adapters/repository"
	"github.com/okian/libero/internal/adapters/source"
	"github.com/okian/libero/internal/config"
	"github.com/okian/libero/internal/domain/aggregate"
	"github.com/okian/libero/internal/domain/analysis"
	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/dedupe"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/types"
	"github.com/okian/libero/pkg/logger"
	"github.com/okian/libero/pkg/metrics"
)

// Service analyzes matches through the worker pool, keeps the streak
// leaderboard and aggregates season sessions.
type Service struct {
	mu sync.RWMutex
	// aggMu serializes read-modify-write of season sessions.
	aggMu sync.Mutex

	// Core components
	leaderboard repository.Leaderboard
	seasons     repository.SeasonStore
	deduper     dedupe.Deduper
	matchQueue  *queue.InMemoryQueue
	pool        *worker.Pool
	analyzer    *analysis.Analyzer
	fetcher     *source.Fetcher

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	databasePath    string
	upstreamURL     string
	upstreamRate    float64
	upstreamBurst   int
	upstreamTimeout time.Duration
	policy          court.SubstitutionPolicy

	// State
	started bool

	logger logger.Logger
}

// Submission is the result of submitting a match to a season session.
// Result is empty for duplicates.
type Submission struct {
	Session repository.Session
	Outcome aggregate.Outcome
	Result  analysis.Result
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the match queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many session/match keys are remembered in memory.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDatabasePath keeps season sessions in SQLite at path.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		s.databasePath = strings.TrimSpace(path)
	}
}

// WithUpstream sets the upstream match endpoint.
func WithUpstream(matchURL string) Option {
	return func(s *Service) {
		s.upstreamURL = matchURL
	}
}

// WithUpstreamRate throttles upstream requests.
func WithUpstreamRate(perSec float64, burst int) Option {
	return func(s *Service) {
		s.upstreamRate = perSec
		s.upstreamBurst = burst
	}
}

// WithUpstreamTimeout bounds a single upstream request.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithSubstitutionPolicy selects how substitutions move players on court.
func WithSubstitutionPolicy(p court.SubstitutionPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// FromConfig translates the process configuration into options.
func FromConfig(cfg *config.Config) ([]Option, error) {
	policy, err := court.ParsePolicy(cfg.SubstitutionPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithDatabasePath(cfg.DatabasePath),
		WithUpstream(cfg.UpstreamBaseURL),
		WithUpstreamRate(cfg.UpstreamRatePerSec, cfg.UpstreamBurst),
		WithUpstreamTimeout(time.Duration(cfg.UpstreamTimeoutMS) * time.Millisecond),
		WithSubstitutionPolicy(policy),
	}, nil
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       1_000,
		dedupeSize:      10_000,
		upstreamRate:    2,
		upstreamBurst:   4,
		upstreamTimeout: 10 * time.Second,
		policy:          court.PolicyInherit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetOrNop().Named("service")
	}
	return s
}

// Start builds the components and starts the worker pool. Workers live until
// Stop or until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting libero service...")

	if s.databasePath != "" {
		store, err := repository.OpenSQLite(ctx, s.databasePath)
		if err != nil {
			return fmt.Errorf("open season store: %w", err)
		}
		s.seasons = store
		s.logger.Info(ctx, "using sqlite season store", logger.String("path", s.databasePath))
	} else {
		s.seasons = repository.NewMemorySeasonStore()
		s.logger.Info(ctx, "using in-memory season store")
	}

	s.leaderboard = repository.NewStreakBoard()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.matchQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.analyzer = analysis.New(
		analysis.WithSubstitutionPolicy(s.policy),
		analysis.WithLogger(s.logger.Named("analysis")),
	)
	s.fetcher = source.NewFetcher(s.upstreamURL,
		source.WithRateLimit(s.upstreamRate, s.upstreamBurst),
		source.WithTimeout(s.upstreamTimeout),
		source.WithLogger(s.logger.Named("source")),
	)

	s.pool = worker.NewPool(s.workerCount, s.matchQueue, s.analyzer, s.leaderboard)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "libero service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("policy", s.policy.String()),
	)
	return nil
}

// Stop drains queued matches and closes the season store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping libero service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}

	s.aggMu.Lock()
	if err := s.seasons.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close season store: %w", err)
	}
	s.aggMu.Unlock()

	s.started = false
	s.logger.Info(ctx, "libero service stopped")
	return firstErr
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Analyze runs one match through the queue and waits for its result.
func (s *Service) Analyze(ctx context.Context, m *model.Match) (analysis.Result, error) {
	if !s.isStarted() {
		return analysis.Result{}, ErrNotStarted
	}
	done := make(chan queue.Outcome, 1)
	if err := s.matchQueue.Enqueue(ctx, queue.Job{ID: uuid.NewString(), Match: m, Done: done}); err != nil {
		return analysis.Result{}, err
	}
	select {
	case out := <-done:
		return out.Result, out.Err
	case <-ctx.Done():
		return analysis.Result{}, ctx.Err()
	}
}

// CreateSeason opens a new season session for teamID.
func (s *Service) CreateSeason(ctx context.Context, teamID string) (repository.Session, error) {
	if !s.isStarted() {
		return repository.Session{}, ErrNotStarted
	}
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return repository.Session{}, fmt.Errorf("%w: empty team id", repository.ErrInvalidSession)
	}
	sess := repository.Session{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		CreatedAt: time.Now().UTC(),
		MatchIDs:  []string{},
		Season:    aggregate.NewSeason(teamID),
	}
	if err := s.seasons.Create(ctx, sess); err != nil {
		return repository.Session{}, err
	}
	s.logger.Info(ctx, "season session created",
		logger.String("session_id", sess.ID),
		logger.String("team_id", teamID),
	)
	return sess, nil
}

// Season returns a season session.
func (s *Service) Season(ctx context.Context, sessionID string) (repository.Session, error) {
	if !s.isStarted() {
		return repository.Session{}, ErrNotStarted
	}
	return s.seasons.Get(ctx, sessionID)
}

// SubmitMatch analyzes m and folds it into the session.
func (s *Service) SubmitMatch(ctx context.Context, sessionID string, m *model.Match) (repository.Session, aggregate.Outcome, error) {
	sub, err := s.Submit(ctx, sessionID, m)
	return sub.Session, sub.Outcome, err
}

// Submit analyzes m and folds it into the session. A match id already in
// the session is reported as a duplicate without being analyzed again;
// matches without an id are never deduplicated.
func (s *Service) Submit(ctx context.Context, sessionID string, m *model.Match) (Submission, error) {
	if !s.isStarted() {
		return Submission{}, ErrNotStarted
	}
	if m == nil {
		return Submission{}, ErrNilMatch
	}
	sess, err := s.seasons.Get(ctx, sessionID)
	if err != nil {
		return Submission{}, err
	}

	key := dedupe.Key(sessionID, m.ID)
	tracked := m.ID != ""
	if tracked && (sess.HasMatch(m.ID) || s.deduper.SeenAndRecord(ctx, key)) {
		return s.duplicate(ctx, sess, m.ID), nil
	}
	forget := func() {
		if tracked {
			s.deduper.Unrecord(ctx, key)
		}
	}

	res, err := s.Analyze(ctx, m)
	if err != nil {
		forget()
		metrics.RecordSeasonAggregation("rejected")
		return Submission{}, err
	}

	s.aggMu.Lock()
	defer s.aggMu.Unlock()

	// Reload under the lock so concurrent submissions do not overwrite each other.
	sess, err = s.seasons.Get(ctx, sessionID)
	if err != nil {
		forget()
		return Submission{}, err
	}
	if tracked && sess.HasMatch(m.ID) {
		return s.duplicate(ctx, sess, m.ID), nil
	}
	if !aggregate.Add(sess.Season, res.Stats, sess.TeamID) {
		forget()
		metrics.RecordSeasonAggregation(string(aggregate.OutcomeOtherTeam))
		s.logger.Warn(ctx, "match does not involve the season team",
			logger.String("session_id", sessionID),
			logger.String("match_id", m.ID),
			logger.String("team_id", sess.TeamID),
		)
		return Submission{Session: sess, Outcome: aggregate.OutcomeOtherTeam, Result: res}, nil
	}
	if tracked {
		sess.MatchIDs = append(sess.MatchIDs, m.ID)
	}
	if err := s.seasons.Save(ctx, sess); err != nil {
		forget()
		return Submission{}, err
	}
	metrics.RecordSeasonAggregation(string(aggregate.OutcomeApplied))
	s.logger.Debug(ctx, "match aggregated",
		logger.String("session_id", sessionID),
		logger.String("match_id", m.ID),
		logger.Int("games", sess.Season.Team.GamesProcessed),
	)
	return Submission{Session: sess, Outcome: aggregate.OutcomeApplied, Result: res}, nil
}

func (s *Service) duplicate(ctx context.Context, sess repository.Session, matchID string) Submission {
	metrics.RecordMatchDuplicate()
	metrics.RecordSeasonAggregation(string(aggregate.OutcomeDuplicate))
	s.logger.Debug(ctx, "duplicate match ignored",
		logger.String("session_id", sess.ID),
		logger.String("match_id", matchID),
	)
	return Submission{Session: sess, Outcome: aggregate.OutcomeDuplicate}
}

// FetchMatch downloads a match from the upstream by id.
func (s *Service) FetchMatch(ctx context.Context, matchID string) (*model.Match, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.fetcher.FetchMatch(ctx, matchID)
}

// Proxy fetches an arbitrary http(s) URL through the rate limited client.
func (s *Service) Proxy(ctx context.Context, rawURL string) (source.Response, error) {
	if !s.isStarted() {
		return source.Response{}, ErrNotStarted
	}
	return s.fetcher.Get(ctx, rawURL)
}

// TopN returns the top N serving streaks.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the best streak and rank of a player.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	if !s.isStarted() {
		return types.Entry{}, ErrNotStarted
	}
	return s.leaderboard.Rank(ctx, playerID)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"substitutionPolicy": s.policy.String(),
		"seasonStore":        "memory",
	}
	if s.databasePath != "" {
		stats["seasonStore"] = "sqlite"
	}
	if s.started {
		queueLen := s.matchQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["trackedPlayers"] = s.leaderboard.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	if snap, err := metrics.Snapshot(); err != nil {
		s.logger.Warn(ctx, "metrics snapshot failed", logger.Error(err))
	} else {
		stats["metrics"] = snap
	}
	return stats
}
