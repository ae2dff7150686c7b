package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/libero/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When a match key is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, dedupe.Key("s1", "M1"))

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then recording it again reports a duplicate", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("s1", "M1")), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("Then the same match in another session is new", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("s2", "M1")), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "k")
			d.Unrecord(ctx, "k")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "k"), ShouldBeFalse)
			})
		})

		Convey("When the bounded deduper is at capacity", func() {
			b := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			b.SeenAndRecord(ctx, "a")
			b.SeenAndRecord(ctx, "b")
			b.SeenAndRecord(ctx, "c")

			Convey("Then the oldest key is evicted", func() {
				So(b.Size(), ShouldEqual, 2)
				So(b.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(b.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When eviction is disabled", func() {
			u := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 100; i++ {
				u.SeenAndRecord(ctx, fmt.Sprintf("m-%d", i))
			}

			Convey("Then every key is kept", func() {
				So(u.Size(), ShouldEqual, 100)
				So(u.SeenAndRecord(ctx, "m-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent recorders of the same keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("m-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is reported new exactly once", func() {
			So(fresh, ShouldEqual, 50)
			So(d.Size(), ShouldEqual, 50)
		})
	})
}
