package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/libero/pkg/metrics"
)

// MemorySeasonStore keeps sessions in a map. It is used when no database
// path is configured.
type MemorySeasonStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySeasonStore returns an empty store.
func NewMemorySeasonStore() *MemorySeasonStore {
	return &MemorySeasonStore{sessions: make(map[string]Session)}
}

func (m *MemorySeasonStore) Create(ctx context.Context, s Session) error {
	defer observe("season_create", time.Now())
	if err := validateSession(ctx, s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrDuplicate
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *MemorySeasonStore) Get(ctx context.Context, id string) (Session, error) {
	defer observe("season_get", time.Now())
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *MemorySeasonStore) Save(ctx context.Context, s Session) error {
	defer observe("season_save", time.Now())
	if err := validateSession(ctx, s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

func (m *MemorySeasonStore) Close() error { return nil }

func validateSession(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.ID) == "" || s.Season == nil {
		return ErrInvalidSession
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Milliseconds()))
}
