package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrInvalidURL     = errors.New("invalid upstream url")
	ErrUpstream       = errors.New("upstream request failed")
	ErrUpstreamStatus = errors.New("upstream returned an error status")
	ErrNotConfigured  = errors.New("upstream match endpoint not configured")
	ErrEmptyMatchID   = errors.New("empty match id")
	ErrBodyTooLarge   = errors.New("upstream body too large")
)
