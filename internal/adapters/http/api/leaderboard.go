package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleTopStreaks handles GET /v1/streaks?limit=N.
func (s *Server) handleTopStreaks(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_streaks"
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > s.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := s.deps.TopN(r.Context(), n)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleStreakRank handles GET /v1/streaks/{playerID}.
func (s *Server) handleStreakRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.streak_rank"
	id := strings.TrimSpace(chi.URLParam(r, "playerID"))
	if id == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	entry, err := s.deps.Rank(r.Context(), id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
