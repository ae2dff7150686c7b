// Package scoring reads rally outcomes from score descriptions such as "12-9".
package scoring

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/okian/libero/internal/domain/model"
)

// ErrUnparseableScore is returned when a description carries no "a-b" pair.
var ErrUnparseableScore = errors.New("unparseable score description")

var scorePattern = regexp.MustCompile(`(\d+)-(\d+)`) //nolint:gochecknoglobals // compiled once

// Score is a set score, team A first.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Parse extracts the first "a-b" pair of a description.
func Parse(desc string) (Score, error) {
	m := scorePattern.FindStringSubmatch(desc)
	if m == nil {
		return Score{}, fmt.Errorf("%w: %q", ErrUnparseableScore, desc)
	}
	a, errA := strconv.Atoi(m[1])
	b, errB := strconv.Atoi(m[2])
	if errA != nil || errB != nil {
		return Score{}, fmt.Errorf("%w: %q", ErrUnparseableScore, desc)
	}
	return Score{A: a, B: b}, nil
}

// Winner is team A when its score went up, team B otherwise.
func Winner(prev, next Score) model.TeamSide {
	if next.A > prev.A {
		return model.SideA
	}
	return model.SideB
}

// Board tracks the running score of the current set.
type Board struct {
	cur Score
}

// Reset zeroes the score for a new set.
func (b *Board) Reset() { b.cur = Score{} }

// Current returns the last recorded score.
func (b *Board) Current() Score { return b.cur }

// Record applies the description of a point event and reports the side that
// won the rally. The board is unchanged on error.
func (b *Board) Record(desc string) (model.TeamSide, error) {
	next, err := Parse(desc)
	if err != nil {
		return model.SideNone, err
	}
	w := Winner(b.cur, next)
	b.cur = next
	return w, nil
}

// RecordOr is Record falling back to the side of the event's team when the
// description cannot be parsed.
func (b *Board) RecordOr(desc string, fallback model.TeamSide) model.TeamSide {
	w, err := b.Record(desc)
	if err != nil {
		return fallback
	}
	return w
}
