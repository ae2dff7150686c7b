package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	app "github.com/okian/libero/internal/app"
	"github.com/okian/libero/internal/config"
	"github.com/okian/libero/internal/report"
	"github.com/okian/libero/pkg/logger"
)

// Default configuration constants.
const (
	defaultTop  = 10
	defaultSeed = 1
	outFileMode = 0o600
)

func main() {
	var (
		teamID    = flag.String("team", "", "Team id the season is aggregated for")
		dir       = flag.String("dir", "", "Directory of match JSON files")
		fetch     = flag.String("fetch", "", "Comma separated upstream match ids")
		synthetic = flag.Int("synthetic", 0, "Number of generated matches to add")
		seed      = flag.Int64("seed", defaultSeed, "Seed for generated matches")
		policy    = flag.String("policy", "", "Substitution policy: inherit or keep_slot")
		top       = flag.Int("top", defaultTop, "Leaderboard entries to print")
		outFile   = flag.String("out", "", "Write the report to a file instead of stdout")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		report.ShowHelp()
		return
	}

	if err := logger.InitWithWriter(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rc := &report.Config{
		Dir:       *dir,
		TeamID:    *teamID,
		FetchIDs:  report.SplitIDs(*fetch),
		Synthetic: *synthetic,
		Seed:      *seed,
		Top:       *top,
		Parallel:  runtime.NumCPU(),
	}
	if err := run(ctx, rc, *policy, *outFile); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

// run loads the configuration, applies the policy override and writes the
// report to outFile or stdout.
func run(ctx context.Context, rc *report.Config, policy, outFile string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if policy != "" {
		cfg.SubstitutionPolicy = policy
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	svcOpts, err := app.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var out io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.OpenFile(outFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outFileMode)
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.Run(ctx, rc, out, svcOpts...); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	return nil
}
