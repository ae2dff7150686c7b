package repository

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/libero/internal/domain/types"
	"github.com/okian/libero/pkg/metrics"
)

// Treap-based, in-memory Leaderboard implementation.
//
// Ordering: length DESC, then playerID ASC (types.Before). In-order
// traversal yields the leaderboard from best to worst. Node priorities are a
// hash of the player id so equal lengths do not degenerate into a list.

// snapshot is the lock-free read view rebuilt after every change.
type snapshot struct {
	top   []types.Entry
	total int
}

type node struct {
	entry types.Entry
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, e types.Entry) *node {
	if n == nil {
		return &node{entry: e, prio: priority(e.PlayerID), size: 1}
	}
	if types.Before(e, n.entry) {
		n.left = insert(n.left, e)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, e)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, e types.Entry) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.entry.PlayerID == e.PlayerID:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, e)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, e)
		}
	case types.Before(e, n.entry):
		n.left = deleteNode(n.left, e)
	default:
		n.right = deleteNode(n.right, e)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.entry)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// StreakBoard is the in-memory Leaderboard.
type StreakBoard struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]types.Entry
	topCacheSize int

	snap atomic.Pointer[snapshot]
}

// NewStreakBoard constructs an empty leaderboard.
func NewStreakBoard(opts ...Option) *StreakBoard {
	s := &StreakBoard{
		byID:         make(map[string]types.Entry),
		topCacheSize: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(&snapshot{})
	return s
}

// Offer implements Leaderboard.Offer with O(log n) expected time.
func (s *StreakBoard) Offer(ctx context.Context, e types.Entry) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("leaderboard_offer", float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	e.PlayerID = strings.TrimSpace(e.PlayerID)
	if e.PlayerID == "" || e.Length < 1 {
		return false, ErrInvalidEntry
	}
	e.Rank = 0

	s.mu.Lock()
	if old, ok := s.byID[e.PlayerID]; ok {
		if e.Length <= old.Length {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, old)
	}
	s.byID[e.PlayerID] = e
	s.root = insert(s.root, e)
	s.publishLocked()
	total := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateLeaderboardSize(total)
	return true, nil
}

// Rank returns the dense rank of a player: equal lengths share a rank.
func (s *StreakBoard) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("leaderboard_rank", float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return types.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[playerID]; !ok {
		return types.Entry{}, ErrNotFound
	}
	all := make([]types.Entry, 0, len(s.byID))
	collectTopN(s.root, len(s.byID), &all)
	assignRanks(all)
	for _, e := range all {
		if e.PlayerID == playerID {
			return e, nil
		}
	}
	return types.Entry{}, ErrNotFound
}

// TopN returns the top N entries. Requests within the cache size are served
// from the snapshot.
func (s *StreakBoard) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("leaderboard_top", float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n <= s.topCacheSize {
		snap := s.snap.Load()
		out := make([]types.Entry, min(n, len(snap.top)))
		copy(out, snap.top)
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	assignRanks(out)
	return out, nil
}

// Count returns the number of players tracked.
func (s *StreakBoard) Count(_ context.Context) int {
	return s.snap.Load().total
}

// publishLocked rebuilds the read snapshot; the write lock must be held.
func (s *StreakBoard) publishLocked() {
	top := make([]types.Entry, 0, min(s.topCacheSize, len(s.byID)))
	collectTopN(s.root, s.topCacheSize, &top)
	assignRanks(top)
	s.snap.Store(&snapshot{top: top, total: len(s.byID)})
}

// assignRanks assigns dense ranks to entries already in rank order.
func assignRanks(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Length != entries[i-1].Length {
			rank++
		}
		entries[i].Rank = rank
	}
}
