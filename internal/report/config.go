package report

import (
	"errors"
	"strings"
)

// Config holds the options of one report run.
type Config struct {
	Dir       string   // Directory of match JSON files
	TeamID    string   // Team the season is aggregated for
	FetchIDs  []string // Upstream match ids to fetch
	Synthetic int      // Number of generated matches to add
	Seed      int64    // Seed for generated matches
	Top       int      // Leaderboard entries to print
	Parallel  int      // Matches submitted concurrently
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.TeamID) == "":
		return errors.New("team is required")
	case c.Dir == "" && len(c.FetchIDs) == 0 && c.Synthetic <= 0:
		return errors.New("nothing to report: set -dir, -fetch or -synthetic")
	case c.Synthetic < 0:
		return errors.New("synthetic must not be negative")
	}
	return nil
}

// SplitIDs parses a comma separated id list, dropping blanks.
func SplitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
