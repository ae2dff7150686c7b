package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/libero/internal/domain/aggregate"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS season_sessions (
	id         TEXT PRIMARY KEY,
	team_id    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	match_ids  TEXT NOT NULL,
	season     TEXT NOT NULL
)`

// SQLiteSeasonStore persists sessions in a SQLite file. Season totals and
// the aggregated match ids are stored as JSON columns.
type SQLiteSeasonStore struct {
	db *sql.DB
}

// OpenSQLite opens path, creating the schema if needed. ":memory:" opens a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSeasonStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: database path is required", ErrStorage)
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrStorage, err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema: %w", ErrStorage, err)
	}
	return &SQLiteSeasonStore{db: db}, nil
}

func (s *SQLiteSeasonStore) Create(ctx context.Context, sess Session) error {
	defer observe("season_create", time.Now())
	if err := validateSession(ctx, sess); err != nil {
		return err
	}
	matchIDs, season, err := encodeSession(sess)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO season_sessions (id, team_id, created_at, match_ids, season)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`, sess.ID, sess.TeamID, sess.CreatedAt.UTC().UnixMilli(), matchIDs, season)
	if err != nil {
		return fmt.Errorf("%w: create session: %w", ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLiteSeasonStore) Get(ctx context.Context, id string) (Session, error) {
	defer observe("season_get", time.Now())
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	var (
		sess      Session
		createdAt int64
		matchIDs  string
		season    string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, team_id, created_at, match_ids, season
FROM season_sessions
WHERE id = ?
`, id).Scan(&sess.ID, &sess.TeamID, &createdAt, &matchIDs, &season)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: get session: %w", ErrStorage, err)
	}
	sess.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(matchIDs), &sess.MatchIDs); err != nil {
		return Session{}, fmt.Errorf("%w: decode match ids: %w", ErrStorage, err)
	}
	sess.Season = &aggregate.Season{}
	if err := json.Unmarshal([]byte(season), sess.Season); err != nil {
		return Session{}, fmt.Errorf("%w: decode season: %w", ErrStorage, err)
	}
	if sess.Season.Players == nil {
		sess.Season.Players = make(map[string]*aggregate.SeasonPlayer)
	}
	return sess, nil
}

func (s *SQLiteSeasonStore) Save(ctx context.Context, sess Session) error {
	defer observe("season_save", time.Now())
	if err := validateSession(ctx, sess); err != nil {
		return err
	}
	matchIDs, season, err := encodeSession(sess)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE season_sessions SET match_ids = ?, season = ? WHERE id = ?
`, matchIDs, season, sess.ID)
	if err != nil {
		return fmt.Errorf("%w: save session: %w", ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the database.
func (s *SQLiteSeasonStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func encodeSession(sess Session) (string, string, error) {
	ids := sess.MatchIDs
	if ids == nil {
		ids = []string{}
	}
	matchIDs, err := json.Marshal(ids)
	if err != nil {
		return "", "", fmt.Errorf("%w: encode match ids: %w", ErrStorage, err)
	}
	season, err := json.Marshal(sess.Season)
	if err != nil {
		return "", "", fmt.Errorf("%w: encode season: %w", ErrStorage, err)
	}
	return string(matchIDs), string(season), nil
}
