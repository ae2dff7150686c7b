package logger

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized on stdout", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				l := Get()
				So(l, ShouldNotBeNil)
				So(func() { l.Info(context.Background(), "test message", String("k", "v")) }, ShouldNotPanic)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When it is initialized with a nil writer", func() {
			So(InitWithWriter(nil), ShouldNotBeNil)
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields and a name", func() {
			Named("simulator").With(String("match_id", "M1")).Warn(ctx, "scorer not in lineup", Int("set", 2))

			Convey("Then the record carries the group, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "scorer not in lineup")
				So(out, ShouldContainSubstring, "match_id=M1")
				So(out, ShouldContainSubstring, "simulator.set=2")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			So(buf.String(), ShouldNotContainSubstring, "hidden")
			So(SetLevelString("info"), ShouldBeNil)
		})

		Convey("When an unknown level is set", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestNopLogger(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()

		Convey("Then every method is safe to call", func() {
			So(func() {
				l.Debug(context.Background(), "d")
				l.Warn(context.Background(), "w", Bool("ok", true))
				l.Named("x").With(Any("a", 1)).Error(context.TODO(), "e")
			}, ShouldNotPanic)
		})
	})
}
