package testmatches

import "github.com/okian/libero/internal/domain/model"

// RotationScenario is one set of six rallies without recorded scorers:
// A holds twice, B sides out and holds, A sides out, B sides out.
func RotationScenario() *model.Match {
	return NewBuilder("ROT1").
		Roster("A", 1).
		Roster("B", 1).
		SetStart(1).
		Serve(1, "A").
		Point(1, "A", "", "1-0").
		Point(1, "A", "", "2-0").
		Point(1, "B", "", "2-1").
		Point(1, "B", "", "2-2").
		Point(1, "A", "", "3-2").
		Point(1, "B", "", "3-3").
		Build()
}

// StreakScenario has A1 holding serve twice, then a side-out after which B2
// wins three rallies in a row.
func StreakScenario() *model.Match {
	return NewBuilder("STR1").
		Player("A1", "A", "Alice", "1", map[int]int{1: 1}).
		Player("A2", "A", "Alan", "2", map[int]int{1: 2}).
		Player("B1", "B", "Bob", "3", map[int]int{1: 1}).
		Player("B2", "B", "Bill", "4", map[int]int{1: 2}).
		SetStart(1).
		Serve(1, "A").
		Point(1, "A", "A1", "1-0").
		Point(1, "A", "A2", "2-0").
		Point(1, "B", "B1", "2-1").
		Point(1, "B", "B2", "2-2").
		Point(1, "B", "B1", "2-3").
		MatchEnd(1).
		Build()
}

// TwoSetBuilder is a two-set match covering holds, side-outs, missing and
// sentinel scorers, a timeout and a substitution. A1 is captain; A7 comes
// off the bench for A5 in set 2.
func TwoSetBuilder() *Builder {
	return NewBuilder("M2").
		Teams("A", "Alpha", "B", "Beta").
		Final(1, 1).
		Roster("A", 1, 2).
		Roster("B", 1, 2).
		Player("A7", "A", "Player A7", "7", nil).
		Captain("A1").
		SetStart(1).
		Serve(1, "A").
		Point(1, "A", "A1", "1-0").
		Point(1, "A", "A1", "2-0").
		Point(1, "B", "B3", "2-1").
		Point(1, "B", "", "2-2").
		Point(1, "A", "A4", "3-2").
		SegmentEnd(1).
		SetStart(2).
		Serve(2, "B").
		Point(2, "B", "1", "0-1").
		Point(2, "A", "A1", "1-1").
		Timeout(2, "B").
		Sub(2, "A", "A7", "A5").
		Point(2, "A", "A7", "2-1").
		MatchEnd(2)
}

// TwoSetScenario builds TwoSetBuilder.
func TwoSetScenario() *model.Match {
	return TwoSetBuilder().Build()
}
