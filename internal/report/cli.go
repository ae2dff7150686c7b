package report

import "os"

// ShowHelp prints usage information for the season report tool.
func ShowHelp() {
	os.Stdout.WriteString(`Libero Season Report
====================

Aggregates season statistics for one team and prints them as JSON.

Usage:
  go run ./cmd/season-report -team ID [options]

Options:
  -team string
        Team id the season is aggregated for (required)
  -dir string
        Directory of match JSON files
  -fetch string
        Comma separated upstream match ids
  -synthetic int
        Number of generated matches to add
  -seed int
        Seed for generated matches (default 1)
  -policy string
        Substitution policy: inherit or keep_slot (default from config)
  -top int
        Leaderboard entries to print (default 10)
  -out string
        Write the report to a file instead of stdout
  -help
        Show this help message

Configuration is read from LIBERO_CONFIG and LIBERO_* variables like the
server.

Examples:
  go run ./cmd/season-report -team 1234 -dir ./matches
  go run ./cmd/season-report -team 1234 -fetch 5501,5502 -policy keep_slot
  go run ./cmd/season-report -team H -synthetic 20 -seed 7
`)
}
