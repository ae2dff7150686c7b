package api

import "net/http"

// handleAnalyze handles POST /v1/analyze. The body is a match document in the
// upstream shape; the response bundles stats, streaks and rotation.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	m, err := s.readMatch(w, r)
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := s.deps.Analyze(r.Context(), m)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
