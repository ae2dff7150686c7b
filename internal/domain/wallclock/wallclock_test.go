package wallclock_test

import (
	"math"
	"testing"

	"github.com/okian/libero/internal/domain/wallclock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given valid wall-clock strings", t, func() {
		cases := map[string]int{
			"00:00:00": 0,
			"00:00:30": 30,
			"00:01:00": 60,
			"01:00:00": 3600,
			"01:10:30": 4230,
			"23:59:59": 86399,
			"1:2:3":    3723,
		}
		for in, want := range cases {
			got, ok := wallclock.Parse(in)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, want)
		}
	})

	Convey("Given malformed or out of range strings", t, func() {
		for _, in := range []string{
			"", "10:30", "10:30:AA", "AA:30:00", "10:AA:00",
			"12:34:567", "12:345:67", "123:45:67", "24:00:00", "00:60:00", "00:00:60", "1:2:3:4", "::",
		} {
			_, ok := wallclock.Parse(in)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestFormatMMSS(t *testing.T) {
	Convey("Given second counts", t, func() {
		So(wallclock.FormatMMSS(0, true), ShouldEqual, "00:00")
		So(wallclock.FormatMMSS(59, true), ShouldEqual, "00:59")
		So(wallclock.FormatMMSS(125, true), ShouldEqual, "02:05")
		So(wallclock.FormatMMSS(3599, true), ShouldEqual, "59:59")
		So(wallclock.FormatMMSS(3600, true), ShouldEqual, "60:00")
		So(wallclock.FormatMMSS(3661, true), ShouldEqual, "61:01")
	})

	Convey("Given absent or negative input", t, func() {
		So(wallclock.FormatMMSS(10, false), ShouldEqual, wallclock.Placeholder)
		So(wallclock.FormatMMSS(-10, true), ShouldEqual, "--:--")
	})

	Convey("Given a parsed time formatted back", t, func() {
		sec, ok := wallclock.Parse("01:00:00")
		So(wallclock.FormatMMSS(sec, ok), ShouldEqual, "60:00")
		sec, ok = wallclock.Parse("bad")
		So(wallclock.FormatMMSS(sec, ok), ShouldEqual, "--:--")
	})
}

func TestFormatAny(t *testing.T) {
	Convey("Given loosely typed input", t, func() {
		So(wallclock.FormatAny(nil), ShouldEqual, "--:--")
		So(wallclock.FormatAny("abc"), ShouldEqual, "--:--")
		So(wallclock.FormatAny(math.NaN()), ShouldEqual, "--:--")
		So(wallclock.FormatAny(-1.0), ShouldEqual, "--:--")
		So(wallclock.FormatAny(90), ShouldEqual, "01:30")
		So(wallclock.FormatAny(90.7), ShouldEqual, "01:30")
		So(wallclock.FormatAny(" 3661 "), ShouldEqual, "61:01")
		So(wallclock.FormatAny(true), ShouldEqual, "--:--")
	})
}
