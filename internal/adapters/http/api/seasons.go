package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/libero/internal/adapters/repository"
	"github.com/okian/libero/internal/domain/aggregate"
)

type createSeasonRequest struct {
	TeamID string `json:"teamId"`
}

type submitResponse struct {
	MatchID string             `json:"matchId"`
	Outcome aggregate.Outcome  `json:"outcome"`
	Session repository.Session `json:"session"`
}

// handleCreateSeason handles POST /v1/seasons.
func (s *Server) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_season"
	var req createSeasonRequest
	if err := readJSON(w, r, &req); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.TeamID) == "" {
		s.fail(w, r, WrapKind(op, ErrBadRequest, errors.New("missing teamId")))
		return
	}
	sess, err := s.deps.CreateSeason(r.Context(), req.TeamID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/v1/seasons/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess)
}

// handleGetSeason handles GET /v1/seasons/{sessionID}.
func (s *Server) handleGetSeason(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_season"
	sess, err := s.deps.Season(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleSubmitMatch handles POST /v1/seasons/{sessionID}/matches.
func (s *Server) handleSubmitMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_match"
	m, err := s.readMatch(w, r)
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, outcome, err := s.deps.SubmitMatch(r.Context(), chi.URLParam(r, "sessionID"), m)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{MatchID: m.ID, Outcome: outcome, Session: sess})
}

// handleFetchMatch handles POST /v1/seasons/{sessionID}/fetch/{matchID}: the
// match is pulled from the upstream and then submitted.
func (s *Server) handleFetchMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.fetch_match"
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := s.deps.Season(r.Context(), sessionID); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	m, err := s.deps.FetchMatch(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	sess, outcome, err := s.deps.SubmitMatch(r.Context(), sessionID, m)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{MatchID: m.ID, Outcome: outcome, Session: sess})
}
