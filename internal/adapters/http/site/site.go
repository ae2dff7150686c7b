// Package site serves the replay front end from a directory on disk.
package site

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/okian/libero/pkg/logger"
)

// DefaultIndex is served for "/".
const DefaultIndex = "volleyball_replay_v1.html"

// Handler serves files below a root directory. Paths containing ".." are
// refused and directories are never listed.
type Handler struct {
	root  string
	index string
	log   logger.Logger
}

// NewHandler serves dir with index as the document for "/". An empty index
// falls back to DefaultIndex.
func NewHandler(dir, index string) *Handler {
	if strings.TrimSpace(index) == "" {
		index = DefaultIndex
	}
	return &Handler{root: dir, index: index, log: logger.GetOrNop().Named("site")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if strings.Contains(r.URL.Path, "..") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	rel := path.Clean("/" + r.URL.Path)
	if rel == "/" {
		rel = "/" + h.index
	}
	name := filepath.Join(h.root, filepath.FromSlash(rel))

	f, err := os.Open(name)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	h.log.Debug(r.Context(), "serving file", logger.String("path", rel))
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
