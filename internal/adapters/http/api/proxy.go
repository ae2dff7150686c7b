package api

import (
	"errors"
	"net/http"
)

var errMissingURL = errors.New("missing url parameter")

type proxyContents struct {
	Contents string `json:"contents"`
}

// handleProxyGet handles GET /proxy/get?url=. The upstream body is returned
// as a string inside {"contents": ...}.
func (s *Server) handleProxyGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.proxy_get"
	target := r.URL.Query().Get("url")
	if target == "" {
		s.fail(w, r, WrapKind(op, ErrBadRequest, errMissingURL))
		return
	}
	resp, err := s.deps.Proxy(r.Context(), target)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, proxyContents{Contents: string(resp.Body)})
}

// handleProxyRaw handles GET /proxy/raw?url=. The upstream body is passed
// through with its content type.
func (s *Server) handleProxyRaw(w http.ResponseWriter, r *http.Request) {
	const op = "api.proxy_raw"
	target := r.URL.Query().Get("url")
	if target == "" {
		s.fail(w, r, WrapKind(op, ErrBadRequest, errMissingURL))
		return
	}
	resp, err := s.deps.Proxy(r.Context(), target)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	ct := resp.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Body)
}
