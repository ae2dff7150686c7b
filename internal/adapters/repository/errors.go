package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
	ErrInvalidEntry   = errors.New("invalid leaderboard entry")
	ErrInvalidSession = errors.New("invalid season session")
	ErrDuplicate      = errors.New("session already exists")
	ErrStorage        = errors.New("season storage failure")
)
