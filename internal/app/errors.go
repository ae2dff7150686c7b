package service

import (
	"fmt"

	"github.com/okian/libero/internal/adapters/mq/queue"
	"github.com/okian/libero/internal/domain/simulator"
)

// Sentinel errors returned by the service.
var (
	// ErrNotStarted wraps queue.ErrClosed.
	ErrNotStarted = fmt.Errorf("service not started: %w", queue.ErrClosed)
	ErrNilMatch   = fmt.Errorf("nil match: %w", simulator.ErrMissingEvents)
)
