package timeline_test

import (
	"testing"

	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(entries []timeline.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Event.ID
	}
	return out
}

func TestBuild(t *testing.T) {
	Convey("Given events out of order with missing times", t, func() {
		events := []model.GameEvent{
			{ID: "c", WallTime: "10:00:30"},
			{ID: "a", WallTime: "10:00:10"},
			{ID: "a2", WallTime: ""},
			{ID: "b", WallTime: "10:00:20"},
			{ID: "b2", WallTime: "10:00:20"},
		}

		Convey("Then they are sorted stably and untimed events follow their predecessor", func() {
			So(ids(timeline.Build(events, nil)), ShouldResemble, []string{"a", "a2", "b", "b2", "c"})
		})
	})

	Convey("Given substitution events and no dedicated log", t, func() {
		events := []model.GameEvent{
			{ID: "s", Code: model.CodeSubstitution, Set: 1, TeamID: "A", PlayerID: "in", Player2ID: "out", WallTime: "10:00:00"},
		}
		entries := timeline.Build(events, nil)

		Convey("Then the event carries the substitution", func() {
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Sub, ShouldNotBeNil)
			So(entries[0].Sub.PlayerIn, ShouldEqual, "in")
			So(entries[0].Sub.PlayerOut, ShouldEqual, "out")
		})
	})

	Convey("Given a dedicated substitution log", t, func() {
		events := []model.GameEvent{
			{ID: "p1", Code: model.CodePoint, WallTime: "10:00:10"},
			{ID: "s", Code: model.CodeSubstitution, WallTime: "10:00:10"},
			{ID: "p2", Code: model.CodePoint, WallTime: "10:00:20"},
		}
		dedicated := []model.SubstitutionEvent{
			{Set: 1, TeamID: "A", PlayerIn: "x", PlayerOut: "y", WallTime: "10:00:10"},
		}
		entries := timeline.Build(events, dedicated)

		Convey("Then log entries precede events of the same second", func() {
			So(entries, ShouldHaveLength, 4)
			So(entries[0].Sub, ShouldNotBeNil)
			So(entries[0].Sub.PlayerIn, ShouldEqual, "x")
			So(entries[0].Event.Code, ShouldEqual, model.CodeSubstitution)
			So(entries[1].Event.ID, ShouldEqual, "p1")
			So(entries[2].Event.ID, ShouldEqual, "s")
			So(entries[2].Sub, ShouldBeNil)
			So(entries[3].Event.ID, ShouldEqual, "p2")
		})
	})
}
