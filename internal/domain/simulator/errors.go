package simulator

import (
	"errors"

	"github.com/okian/libero/internal/domain/scoring"
)

// Fatal errors reject the whole match.
var (
	ErrMissingEvents  = errors.New("match has no event log")
	ErrMissingLineups = errors.New("match has no lineups")
	ErrInvalidLineup  = errors.New("lineup entry without player id")
)

// Per-event errors are recorded as warnings and never returned.
var (
	ErrUnparseableScore = scoring.ErrUnparseableScore
	ErrEventPanic       = errors.New("event dispatch panicked")
)
