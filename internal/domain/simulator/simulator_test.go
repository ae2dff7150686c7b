package simulator_test

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/simulator"
	"github.com/okian/libero/internal/testmatches"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculateGameStats_TwoSets(t *testing.T) {
	Convey("Given the two-set scenario", t, func() {
		stats, err := simulator.CalculateGameStats(context.Background(), testmatches.TwoSetScenario())
		So(err, ShouldBeNil)

		Convey("Then serves follow set starts, holds and side-outs", func() {
			So(stats.Players["A1"].Serves, ShouldEqual, 3)
			So(stats.Players["A2"].Serves, ShouldEqual, 3)
			So(stats.Players["B1"].Serves, ShouldEqual, 2)
			So(stats.Players["B2"].Serves, ShouldEqual, 2)
			So(stats.Players["B3"].Serves, ShouldEqual, 0)
		})

		Convey("Then recorded scorers get points", func() {
			So(stats.Players["A1"].Points, ShouldEqual, 3)
			So(stats.Players["A4"].Points, ShouldEqual, 1)
			So(stats.Players["A7"].Points, ShouldEqual, 1)
			So(stats.Players["B3"].Points, ShouldEqual, 1)
			So(stats.Players["B1"].Points, ShouldEqual, 0)
		})

		Convey("Then points without a scorer are errors of the conceding team", func() {
			So(stats.TeamB.ImpliedOpponentErrors, ShouldEqual, 2)
			So(stats.TeamA.ImpliedErrorsMade, ShouldEqual, 2)
			So(stats.TeamA.ImpliedOpponentErrors, ShouldEqual, 0)
			So(stats.TeamB.ImpliedErrorsMade, ShouldEqual, 0)
		})

		Convey("Then team counters and match data are filled in", func() {
			So(stats.MatchID, ShouldEqual, "M2")
			So(stats.TeamA.Name, ShouldEqual, "Alpha")
			So(stats.TeamA.Score, ShouldEqual, 1)
			So(stats.TeamA.Subs, ShouldEqual, 1)
			So(stats.TeamB.Subs, ShouldEqual, 0)
			So(stats.TeamB.Timeouts, ShouldEqual, 1)
			So(stats.Players["A1"].IsCaptain, ShouldBeTrue)
			So(stats.Players["B1"].Team, ShouldEqual, model.SideB)
		})

		Convey("Then full sets exclude the substituted player's second set", func() {
			So(stats.SetsInMatch, ShouldEqual, 2)
			So(stats.Players["A1"].SetsPlayedFully, ShouldEqual, 2)
			So(stats.Players["A5"].SetsPlayedFully, ShouldEqual, 1)
			So(stats.Players["A7"].SetsPlayedFully, ShouldEqual, 0)
		})

		Convey("Then set durations span the first and last timed event", func() {
			So(stats.SetDurations, ShouldResemble, []simulator.SetDuration{
				{Set: 1, Start: "10:00:00", End: "10:01:10", Duration: "01:10"},
				{Set: 2, Start: "10:01:20", End: "10:02:30", Duration: "01:10"},
			})
		})

		Convey("Then the run is complete", func() {
			So(stats.Incomplete, ShouldBeFalse)
			So(stats.Warnings, ShouldBeEmpty)
			So(stats.EventsProcessed, ShouldEqual, 16)
		})
	})
}

func TestCalculateGameStats_Fatal(t *testing.T) {
	ctx := context.Background()

	Convey("Given a lineup entry without player id", t, func() {
		m := testmatches.TwoSetBuilder().Player("", "A", "Nobody", "0", nil).Build()
		stats, err := simulator.CalculateGameStats(ctx, m)

		Convey("Then the match is rejected without statistics", func() {
			So(errors.Is(err, simulator.ErrInvalidLineup), ShouldBeTrue)
			So(stats, ShouldBeNil)
		})
	})

	Convey("Given a match without events or lineups", t, func() {
		m := testmatches.TwoSetScenario()
		m.Events = nil
		_, err := simulator.CalculateGameStats(ctx, m)
		So(errors.Is(err, simulator.ErrMissingEvents), ShouldBeTrue)

		m = testmatches.TwoSetScenario()
		m.Lineups = nil
		_, err = simulator.CalculateGameStats(ctx, m)
		So(errors.Is(err, simulator.ErrMissingLineups), ShouldBeTrue)

		_, err = simulator.CalculateGameStats(ctx, nil)
		So(errors.Is(err, simulator.ErrMissingEvents), ShouldBeTrue)
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := simulator.CalculateGameStats(cctx, testmatches.TwoSetScenario())
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestCalculateGameStats_DataQuality(t *testing.T) {
	ctx := context.Background()

	Convey("Given a point whose scorer is absent", t, func() {
		m := testmatches.NewBuilder("Q1").Roster("A", 1).Roster("B", 1).
			SetStart(1).Serve(1, "A").Point(1, "B", "", "0-1").Build()
		stats, err := simulator.CalculateGameStats(ctx, m)
		So(err, ShouldBeNil)

		Convey("Then the scoring team gets an opponent error and nobody a point", func() {
			So(stats.TeamB.ImpliedOpponentErrors, ShouldEqual, 1)
			So(stats.TeamA.ImpliedErrorsMade, ShouldEqual, 1)
			for _, p := range stats.Players {
				So(p.Points, ShouldEqual, 0)
			}
		})
	})

	Convey("Given a scorer missing from the lineup", t, func() {
		m := testmatches.NewBuilder("Q2").Roster("A", 1).Roster("B", 1).
			SetStart(1).Serve(1, "A").Point(1, "A", "Z9", "1-0").Build()
		stats, err := simulator.CalculateGameStats(ctx, m)
		So(err, ShouldBeNil)

		Convey("Then it counts as an implied error with a warning", func() {
			So(stats.TeamA.ImpliedOpponentErrors, ShouldEqual, 1)
			So(stats.TeamB.ImpliedErrorsMade, ShouldEqual, 1)
			So(stats.Warnings, ShouldHaveLength, 1)
			So(stats.Warnings[0].Kind, ShouldEqual, simulator.WarnUnknownScorer)
			So(stats.Incomplete, ShouldBeFalse)
		})
	})

	Convey("Given an unparseable score description", t, func() {
		m := testmatches.NewBuilder("Q3").Roster("A", 1).Roster("B", 1).
			SetStart(1).Serve(1, "A").
			Point(1, "A", "A2", "one to nil").
			Point(1, "A", "A2", "1-0").
			Build()
		stats, err := simulator.CalculateGameStats(ctx, m)
		So(err, ShouldBeNil)

		Convey("Then the event is skipped and the result marked incomplete", func() {
			So(stats.Incomplete, ShouldBeTrue)
			So(stats.Warnings[0].Kind, ShouldEqual, simulator.WarnUnparseableScore)
			So(stats.Warnings[0].EventID, ShouldEqual, "e3")
			So(stats.Players["A2"].Points, ShouldEqual, 1)
			So(stats.Players["A1"].Serves, ShouldEqual, 2)
		})
	})

	Convey("Given a lineup entry without shirt number", t, func() {
		m := testmatches.NewBuilder("Q4").Roster("A", 1).Roster("B", 1).
			Player("A8", "A", "No Shirt", "", nil).
			SetStart(1).Build()
		stats, err := simulator.CalculateGameStats(ctx, m)

		Convey("Then the entry is skipped with a warning", func() {
			So(err, ShouldBeNil)
			So(stats.Players, ShouldNotContainKey, "A8")
			So(stats.Warnings[0].Kind, ShouldEqual, simulator.WarnInvalidLineupEntry)
		})
	})

	Convey("Given a scorer sentinel override", t, func() {
		m := testmatches.NewBuilder("Q5").Roster("A", 1).Roster("B", 1).
			SetStart(1).Serve(1, "A").Point(1, "A", "1", "1-0").Point(1, "A", "0", "2-0").Build()
		stats, err := simulator.CalculateGameStats(ctx, m, simulator.WithScorerSentinel("0"))
		So(err, ShouldBeNil)

		Convey("Then only the configured ids count as absent", func() {
			So(stats.TeamA.ImpliedOpponentErrors, ShouldEqual, 2)
			So(stats.Warnings, ShouldHaveLength, 1)
			So(stats.Warnings[0].Kind, ShouldEqual, simulator.WarnUnknownScorer)
		})
	})
}

func TestCalculateGameStats_SetHandling(t *testing.T) {
	ctx := context.Background()

	Convey("Given events that start a set without a set-start event", t, func() {
		m := testmatches.NewBuilder("S1").Roster("A", 1, 2).Roster("B", 1, 2).
			Serve(1, "A").Point(1, "A", "A1", "1-0").
			SegmentEnd(1).
			Serve(2, "B").Point(2, "B", "B1", "0-1").
			Build()
		stats, err := simulator.CalculateGameStats(ctx, m)
		So(err, ShouldBeNil)

		Convey("Then the period change resets score and court", func() {
			So(stats.Players["A1"].Serves, ShouldEqual, 2)
			So(stats.Players["B1"].Serves, ShouldEqual, 2)
			So(stats.Incomplete, ShouldBeFalse)
		})
	})

	Convey("Given the first point of a set without a serving team", t, func() {
		m := testmatches.NewBuilder("S2").Roster("A", 1).Roster("B", 1).
			SetStart(1).Point(1, "B", "B2", "0-1").Point(1, "B", "B2", "0-2").Build()
		stats, err := simulator.CalculateGameStats(ctx, m)
		So(err, ShouldBeNil)

		Convey("Then the scorer's team serves next without an extra credit", func() {
			So(stats.Players["B1"].Serves, ShouldEqual, 1)
		})
	})
}

func TestCalculateGameStats_SubstitutionPolicy(t *testing.T) {
	ctx := context.Background()
	build := func() *testmatches.Builder {
		return testmatches.NewBuilder("P1").Roster("A", 1).Roster("B", 1).
			Player("A7", "A", "Bench", "7", nil).
			SetStart(1).Serve(1, "A")
	}

	Convey("Given a server substituted mid-rally sequence", t, func() {
		m := build().Sub(1, "A", "A7", "A1").Point(1, "A", "A2", "1-0").Build()

		Convey("When the incoming player inherits the slot", func() {
			stats, err := simulator.CalculateGameStats(ctx, m)
			So(err, ShouldBeNil)
			So(stats.Players["A7"].Serves, ShouldEqual, 1)
			So(stats.Players["A1"].Serves, ShouldEqual, 1)
		})

		Convey("When the tracker keeps the slot", func() {
			stats, err := simulator.CalculateGameStats(ctx, m, simulator.WithSubstitutionPolicy(court.PolicyKeepSlot))
			So(err, ShouldBeNil)
			So(stats.Players["A7"].Serves, ShouldEqual, 0)
			So(stats.Players["A1"].Serves, ShouldEqual, 2)
			So(stats.TeamA.Subs, ShouldEqual, 1)
		})
	})

	Convey("Given a dedicated substitution log", t, func() {
		m := build().LoggedSub(1, "A", "A7", "A1").Point(1, "A", "A2", "1-0").Build()
		stats, err := simulator.CalculateGameStats(ctx, m)

		Convey("Then its entries move players and are counted", func() {
			So(err, ShouldBeNil)
			So(stats.Players["A7"].Serves, ShouldEqual, 1)
			So(stats.TeamA.Subs, ShouldEqual, 1)
			So(stats.Players["A1"].SetsPlayedFully, ShouldEqual, 0)
		})
	})

	Convey("Given a substitution and a point in the same second", t, func() {
		logged := build().At("10:01:00").LoggedSub(1, "A", "A7", "A1").
			At("10:01:00").Point(1, "A", "A2", "1-0").Build()
		inline := build().At("10:01:00").Sub(1, "A", "A7", "A1").
			At("10:01:00").Point(1, "A", "A2", "1-0").Build()

		Convey("Then the substitution applies first whichever log carries it", func() {
			fromLog, err := simulator.CalculateGameStats(ctx, logged)
			So(err, ShouldBeNil)
			fromEvents, err := simulator.CalculateGameStats(ctx, inline)
			So(err, ShouldBeNil)

			So(fromLog.Players["A7"].Serves, ShouldEqual, 1)
			So(fromLog.Players["A1"].Serves, ShouldEqual, 1)
			So(fromEvents.Players["A7"].Serves, ShouldEqual, fromLog.Players["A7"].Serves)
			So(fromEvents.Players["A1"].Serves, ShouldEqual, fromLog.Players["A1"].Serves)
		})
	})
}

func TestCalculateGameStats_Invariants(t *testing.T) {
	Convey("Given generated matches", t, func() {
		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic fixtures

		for i := 0; i < 25; i++ {
			m := testmatches.Generate(rng, "G"+strconv.Itoa(i), "H", "V")
			stats, err := simulator.CalculateGameStats(context.Background(), m)
			So(err, ShouldBeNil)

			So(stats.TeamA.ImpliedErrorsMade, ShouldEqual, stats.TeamB.ImpliedOpponentErrors)
			So(stats.TeamB.ImpliedErrorsMade, ShouldEqual, stats.TeamA.ImpliedOpponentErrors)
			for _, p := range stats.Players {
				So(p.SetsPlayedFully, ShouldBeLessThanOrEqualTo, stats.SetsInMatch)
			}

			subs := map[string]int{}
			for _, s := range m.SubstitutionLog() {
				subs[s.TeamID]++
			}
			So(stats.TeamA.Subs, ShouldEqual, subs["H"])
			So(stats.TeamB.Subs, ShouldEqual, subs["V"])
			So(stats.Incomplete, ShouldBeFalse)
		}
	})
}
