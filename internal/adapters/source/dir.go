package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/libero/internal/domain/model"
)

// File is one match loaded from disk. Err is set when the file could not be
// read or decoded; other files are still returned.
type File struct {
	Path  string
	Match *model.Match
	Err   error
}

// LoadDir decodes every *.json file directly inside dir, sorted by name.
func LoadDir(ctx context.Context, dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read match dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]File, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := filepath.Join(dir, name)
		out = append(out, loadFile(path))
	}
	return out, nil
}

func loadFile(path string) File {
	f, err := os.Open(path) //nolint:gosec // path comes from a directory listing
	if err != nil {
		return File{Path: path, Err: err}
	}
	defer f.Close()
	m, err := model.DecodeMatch(f)
	return File{Path: path, Match: m, Err: err}
}
