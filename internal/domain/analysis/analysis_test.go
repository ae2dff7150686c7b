package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/libero/internal/domain/analysis"
	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/internal/domain/simulator"
	"github.com/okian/libero/internal/testmatches"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	Convey("Given the two-set match", t, func() {
		res, err := analysis.New().Analyze(ctx, testmatches.TwoSetScenario())

		Convey("Then every pass contributes", func() {
			So(err, ShouldBeNil)
			So(res.Stats.Players["A1"].Points, ShouldEqual, 3)
			So(res.Streaks, ShouldHaveLength, 3)
			So(res.Streaks[0].PlayerID, ShouldEqual, "A1")
			So(res.Rotation.TeamA["A1"].PointsFor, ShouldEqual, 4)
		})

		Convey("Then the starting courts of both sets are attached", func() {
			So(res.StartingCourts, ShouldHaveLength, 2)
			So(res.StartingCourts[2]["A"][1].PlayerID, ShouldEqual, "A1")
			So(res.StartingCourts[1]["B"][6].PlayerID, ShouldEqual, "B6")
			So(res.StartingCourts[2]["A"], ShouldNotContainKey, 7)
		})
	})

	Convey("Given a server substituted before serving", t, func() {
		m := testmatches.NewBuilder("P1").Roster("A", 1).Roster("B", 1).
			Player("A7", "A", "Bench", "7", nil).
			SetStart(1).Sub(1, "A", "A7", "A1").Serve(1, "A").
			Point(1, "A", "A2", "1-0").
			Point(1, "A", "A2", "2-0").
			Build()

		Convey("Then the policy applies to all passes", func() {
			res, err := analysis.New(analysis.WithSubstitutionPolicy(court.PolicyKeepSlot)).Analyze(ctx, m)
			So(err, ShouldBeNil)
			So(res.Stats.Players["A1"].Serves, ShouldEqual, 3)
			So(res.Streaks[0].PlayerID, ShouldEqual, "A1")
			So(res.Rotation.TeamA, ShouldContainKey, "A1")
			So(res.Rotation.TeamA, ShouldNotContainKey, "A7")
		})
	})

	Convey("Given a custom scorer sentinel", t, func() {
		m := testmatches.NewBuilder("S").Roster("A", 1).Roster("B", 1).
			SetStart(1).Serve(1, "A").Point(1, "A", "0", "1-0").Build()
		res, err := analysis.New(analysis.WithScorerSentinel("0")).Analyze(ctx, m)
		So(err, ShouldBeNil)
		So(res.Stats.Warnings, ShouldBeEmpty)
		So(res.Stats.TeamA.ImpliedOpponentErrors, ShouldEqual, 1)
	})

	Convey("Given a match without lineups", t, func() {
		m := testmatches.TwoSetScenario()
		m.Lineups = nil
		_, err := analysis.New().Analyze(ctx, m)
		So(errors.Is(err, simulator.ErrMissingLineups), ShouldBeTrue)
	})
}
