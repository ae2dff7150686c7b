// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/libero/internal/adapters/repository"
	"github.com/okian/libero/internal/adapters/source"
	"github.com/okian/libero/internal/domain/aggregate"
	"github.com/okian/libero/internal/domain/analysis"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/types"
	"github.com/okian/libero/pkg/logger"
	"github.com/okian/libero/pkg/metrics"
)

const (
	defaultMaxLimit     = 100
	defaultMaxBodyBytes = 8 << 20
	maxSmallBodyBytes   = 1 << 20
)

// AnalysisDependencies runs single matches.
type AnalysisDependencies interface {
	Analyze(ctx context.Context, m *model.Match) (analysis.Result, error)
}

// SeasonDependencies manages season sessions.
type SeasonDependencies interface {
	CreateSeason(ctx context.Context, teamID string) (repository.Session, error)
	Season(ctx context.Context, sessionID string) (repository.Session, error)
	SubmitMatch(ctx context.Context, sessionID string, m *model.Match) (repository.Session, aggregate.Outcome, error)
	FetchMatch(ctx context.Context, matchID string) (*model.Match, error)
}

// LeaderboardDependencies exposes the serving streak leaderboard.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	Rank(ctx context.Context, playerID string) (types.Entry, error)
}

// ProxyDependencies forwards GET requests to other origins.
type ProxyDependencies interface {
	Proxy(ctx context.Context, rawURL string) (source.Response, error)
}

// StatsProvider reports service statistics.
type StatsProvider interface {
	Stats(ctx context.Context) map[string]any
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	AnalysisDependencies
	SeasonDependencies
	LeaderboardDependencies
	ProxyDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	maxLimit     int
	maxBodyBytes int64
	origins      []string
	static       http.Handler
	log          logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		maxLimit:     defaultMaxLimit,
		maxBodyBytes: defaultMaxBodyBytes,
		origins:      []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.GetOrNop().Named("api")
	}
	return s
}

// Routes builds the router. Anything no route claims goes to the static
// handler when one is configured.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, NewKind("api.route", ErrNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Use(requestID, s.recoverPanic, recordMetrics, s.cors())

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/stats", s.handleStats)
		r.Get("/time/format", s.handleFormatTime)

		r.Route("/seasons", func(r chi.Router) {
			r.Post("/", s.handleCreateSeason)
			r.Get("/{sessionID}", s.handleGetSeason)
			r.Post("/{sessionID}/matches", s.handleSubmitMatch)
			r.Post("/{sessionID}/fetch/{matchID}", s.handleFetchMatch)
		})

		r.Get("/streaks", s.handleTopStreaks)
		r.Get("/streaks/{playerID}", s.handleStreakRank)
	})

	r.Get("/proxy/get", s.handleProxyGet)
	r.Get("/proxy/raw", s.handleProxyRaw)

	if s.static != nil {
		r.Handle("/*", s.static)
	}
	return r
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: w.Header().Get(requestIDHeader)})
}

// fail classifies err, logs server side failures and writes the response.
// Internal errors are not echoed to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
	}
	if status == http.StatusInternalServerError {
		err = nil
	}
	writeError(w, status, code, err)
}

// readJSON decodes a single small JSON object and rejects unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSmallBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return err
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// readMatch decodes an upstream shaped match document from the body.
func (s *Server) readMatch(w http.ResponseWriter, r *http.Request) (*model.Match, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	return model.DecodeMatch(r.Body)
}
